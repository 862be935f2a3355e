package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"testexe/internal/domain"
	"testexe/internal/execution"
	"testexe/internal/tree"
)

func init() {
	color.NoColor = true
}

func buildTree() *tree.Tree {
	t := tree.New()
	t.Name = "unit_tests"
	a := t.Root().Add(domain.NewSuite(1, "SuiteA"))
	a.Add(domain.NewCase(2, "case1"))
	a.Add(domain.NewCase(3, "case2"))
	b := t.Root().Add(domain.NewSuite(4, "SuiteB"))
	b.Add(domain.NewCase(5, "case3"))
	t.Traverse(&tree.PathNamer{})
	return t
}

func TestFormatter_PrintTree(t *testing.T) {
	tr := buildTree()
	var buf bytes.Buffer
	NewFormatter(&buf, ".").PrintTree(tr, false)

	expected := []string{
		"unit_tests: 3 test case(s)",
		"├── SuiteA [1]",
		"│   ├── case1 [2]",
		"│   └── case2 [3]",
		"└── SuiteB [4]",
		"    └── case3 [5]",
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(expected), len(lines), buf.String())
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("line %d: expected %q, got %q", i, expected[i], lines[i])
		}
	}
}

func TestFormatter_PrintTreeOnlyEnabled(t *testing.T) {
	tr := buildTree()
	tr.Traverse(tree.NewSingleSelector(5))

	var buf bytes.Buffer
	NewFormatter(&buf, ".").PrintTree(tr, true)

	out := buf.String()
	if !strings.Contains(out, "unit_tests: 1 test case(s)") {
		t.Errorf("expected enabled case count, got:\n%s", out)
	}
	if strings.Contains(out, "SuiteA") {
		t.Errorf("disabled suite should be hidden, got:\n%s", out)
	}
}

func TestFormatter_PrintMetaStats(t *testing.T) {
	report := &domain.RunReport{
		Meta: domain.RunReportMeta{Executable: "/build/unit_tests", Dialect: "google", FailedTestCases: 1},
		Details: []domain.TestFailure{
			{TestName: "SuiteA.case2"},
			{TestName: "SuiteB.case3", Resolved: true},
		},
	}

	var buf bytes.Buffer
	NewFormatter(&buf, ".").PrintMetaStats(report)

	out := buf.String()
	for _, want := range []string{"unit_tests", "1 test case failure(s)", "├── SuiteA", "│   └── case2", "case3 (resolved)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestFormatter_PrintInventory(t *testing.T) {
	results := []execution.BatchResult{
		{Path: "/build/b_tests", Dialect: "boost", Cases: 7},
		{Path: "/build/a_tests", Dialect: "google", Cases: 3},
	}

	var buf bytes.Buffer
	NewFormatter(&buf, "/build").PrintInventory(results)

	out := buf.String()
	if strings.Index(out, "a_tests") > strings.Index(out, "b_tests") {
		t.Errorf("expected sorted output, got:\n%s", out)
	}
	if !strings.Contains(out, "└── b_tests [boost] 7 case(s)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestConsole_Counts(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, nil, false)
	c.CountCases = func(id int) (int, error) { return 2, nil }

	caseA := domain.NewCase(2, "case1")
	caseA.FullName = "SuiteA.case1"
	caseB := domain.NewCase(3, "case2")
	caseB.FullName = "SuiteA.case2"
	suite := domain.NewSuite(4, "SuiteB")
	suite.FullName = "SuiteB"

	c.TestStart(5)
	c.TestUnitStart(caseA)
	c.TestUnitFinish(caseA, time.Millisecond)
	c.TestUnitStart(caseB)
	c.AssertionResult(false)
	c.TestMessage(domain.Error, "unit_tests.cpp:12: Failure")
	c.TestMessage(domain.Info, "hidden")
	c.TestUnitFinish(caseB, time.Millisecond)
	c.TestUnitSkipped(suite)

	completed, passed, failed := c.Counts()
	if completed != 4 || passed != 1 || failed != 1 {
		t.Errorf("expected 4/1/1, got %d/%d/%d", completed, passed, failed)
	}

	out := buf.String()
	if !strings.Contains(out, "✗ SuiteA.case2") || !strings.Contains(out, "Failure") {
		t.Errorf("expected failure output, got:\n%s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("info messages should only print when verbose, got:\n%s", out)
	}
}

func TestConsole_Waiting(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, nil, true)

	var gotPID int
	c.OnWaiting = func(name string, pid int) { gotPID = pid }
	c.TestWaiting("unit_tests", 42)

	if gotPID != 42 {
		t.Errorf("expected pid 42, got %d", gotPID)
	}
	if !strings.Contains(buf.String(), "Process 42: unit_tests is waiting") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestFormatFailureDetails(t *testing.T) {
	out := formatFailureDetails(domain.TestFailure{TestName: "SuiteA.case2", Messages: []string{"a.cpp:1: Failure"}, Elapsed: 3})
	if !strings.Contains(out, "SuiteA.case2") || !strings.Contains(out, "a.cpp:1: Failure") || !strings.Contains(out, "3 ms") {
		t.Errorf("unexpected details %q", out)
	}

	empty := formatFailureDetails(domain.TestFailure{TestName: "x"})
	if !strings.Contains(empty, "No error output") {
		t.Errorf("unexpected details %q", empty)
	}
}
