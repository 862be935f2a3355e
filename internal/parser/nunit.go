package parser

import (
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"testexe/internal/domain"
	"testexe/internal/tree"
)

// NUnitAdapter drives NUnit assemblies through the nunit-runner console host.
// The runner prints one fully qualified test name per line when listing and
// reports progress with '#'-prefixed markers while running.
type NUnitAdapter struct {
	base
	dialect Dialect
}

// NewNUnit creates an NUnit adapter; cmd is the runner followed by the assembly
func NewNUnit(cmd Command, h Handler) *NUnitAdapter {
	return &NUnitAdapter{base: newBase(cmd, h), dialect: NUnit}
}

func (a *NUnitAdapter) Dialect() Dialect {
	return a.dialect
}

func (a *NUnitAdapter) ListArgs() []string {
	return []string{"--list"}
}

// splitNUnitName splits a fully qualified name at the dots that are not
// inside parameter lists, so "Ns.Fixture.Test(1.5)" has three parts.
func splitNUnitName(name string) []string {
	var parts []string
	depth, quoted, start := 0, false, 0
	for i := 0; i < len(name); i++ {
		switch c := name[i]; {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == '.' && depth == 0:
			parts = append(parts, name[start:i])
			start = i + 1
		}
	}
	return append(parts, name[start:])
}

// Load builds a suite for every namespace and fixture prefix and a case for
// the last segment of each listed name.
func (a *NUnitAdapter) Load(t *tree.Tree, r io.Reader, rootName string) error {
	a.reset(t, rootName)

	return ReadLines(r, func(line string) error {
		name := strings.TrimSpace(line)
		if name == "" || strings.HasPrefix(name, "#") {
			return nil
		}

		parts := splitNUnitName(name)
		node, path := t.Root(), ""
		for _, suite := range parts[:len(parts)-1] {
			if path != "" {
				path += "."
			}
			path += suite
			child := node.Child(suite)
			if child == nil {
				child = node.Add(domain.NewSuite(a.ids.ID(path), suite))
			} else if child.Unit.IsCase() {
				return nil
			}
			node = child
		}
		test := parts[len(parts)-1]
		if node.Child(test) == nil {
			node.Add(domain.NewCase(a.ids.ID(name), test))
		}
		return nil
	})
}

func (a *NUnitAdapter) EnabledOptions(options domain.RunOptions) domain.RunOptions {
	// The runner has no way to shuffle tests
	return options & domain.WaitForDebugger
}

func (a *NUnitAdapter) BuildArgs(t *tree.Tree, level domain.LogLevel, options domain.RunOptions) []string {
	var args []string
	if options.Has(domain.WaitForDebugger) {
		args = append(args, "--wait")
	}
	switch {
	case level >= domain.LogAll:
		args = append(args, "--labels=All")
	case level == domain.LogMessages:
		args = append(args, "--labels=On")
	}

	f := newNUnitFilter()
	t.Traverse(f)
	if root := f.frames[0]; !root.all {
		// An empty list runs nothing
		args = append(args, "--run="+nunitRunList(root.names))
	}
	return args
}

// nunitRunList joins names with commas. A name containing a comma or a double
// quote, as parameterized cases often do, is quoted with inner quotes doubled.
func nunitRunList(names []string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Write(names)
	w.Flush()
	return strings.TrimSuffix(b.String(), "\n")
}

type nunitFilterFrame struct {
	all   bool
	names []string
}

// nunitFilter builds the --run list; a fixture or namespace with every case
// enabled is named as a whole
type nunitFilter struct {
	frames []*nunitFilterFrame
}

func newNUnitFilter() *nunitFilter {
	return &nunitFilter{frames: []*nunitFilterFrame{{all: true}}}
}

func (f *nunitFilter) top() *nunitFilterFrame {
	return f.frames[len(f.frames)-1]
}

func (f *nunitFilter) VisitCase(tc *domain.TestUnit) {
	if tc.Enabled {
		f.top().names = append(f.top().names, tc.FullName)
	} else {
		f.top().all = false
	}
}

func (f *nunitFilter) EnterSuite(*domain.TestUnit) {
	f.frames = append(f.frames, &nunitFilterFrame{all: true})
}

func (f *nunitFilter) LeaveSuite(ts *domain.TestUnit) {
	frame := f.top()
	f.frames = f.frames[:len(f.frames)-1]
	parent := f.top()

	if frame.all {
		if len(frame.names) > 0 {
			parent.names = append(parent.names, ts.FullName)
		}
		return
	}
	parent.all = false
	parent.names = append(parent.names, frame.names...)
}

var (
	nunitWaiting     = regexp.MustCompile(`^#waiting`)
	nunitStart       = regexp.MustCompile(`^#start (\d+)`)
	nunitSuiteStart  = regexp.MustCompile(`^#suite-start (.+)$`)
	nunitSuiteFinish = regexp.MustCompile(`^#suite-finish (.+) (\d+)$`)
	nunitTestStart   = regexp.MustCompile(`^#test-start (.+)$`)
	nunitTestFinish  = regexp.MustCompile(`^#test-finish (.+) (\d+) (\w+)$`)
	nunitIgnored     = regexp.MustCompile(`^#ignored (.+)$`)
	nunitFailure     = regexp.MustCompile(`^#failure\b`)
	nunitException   = regexp.MustCompile(`^#exception (.*)$`)
	nunitFinish      = regexp.MustCompile(`^#finish`)
)

func (a *NUnitAdapter) FilterMessage(line string) error {
	severity := domain.Info

	if nunitWaiting.MatchString(line) {
		a.h.OnWaiting()
		return nil
	} else if sm := nunitStart.FindStringSubmatch(line); sm != nil {
		count, err := strconv.Atoi(sm[1])
		if err != nil {
			return err
		}
		a.h.OnTestIterationStart(count)
	} else if sm := nunitSuiteFinish.FindStringSubmatch(line); sm != nil {
		ms, err := strconv.Atoi(sm[2])
		if err != nil {
			return err
		}
		a.h.OnTestUnitFinish(a.ids.ID(sm[1]), sm[1], time.Duration(ms)*time.Millisecond)
	} else if sm := nunitSuiteStart.FindStringSubmatch(line); sm != nil {
		a.h.OnTestUnitStart(a.ids.ID(sm[1]), sm[1])
	} else if sm := nunitTestFinish.FindStringSubmatch(line); sm != nil {
		ms, err := strconv.Atoi(sm[2])
		if err != nil {
			return err
		}
		a.h.OnTestUnitFinish(a.ids.ID(sm[1]), sm[1], time.Duration(ms)*time.Millisecond)
		if sm[3] == "Failed" || sm[3] == "Error" {
			severity = domain.Error
		}
	} else if sm := nunitTestStart.FindStringSubmatch(line); sm != nil {
		a.h.OnTestUnitStart(a.ids.ID(sm[1]), sm[1])
	} else if sm := nunitIgnored.FindStringSubmatch(line); sm != nil {
		a.h.OnTestUnitSkipped(a.ids.ID(sm[1]), sm[1])
	} else if nunitFailure.MatchString(line) {
		severity = domain.Error
		a.h.OnTestAssertion(false)
	} else if sm := nunitException.FindStringSubmatch(line); sm != nil {
		severity = domain.Error
		a.h.OnTestExceptionCaught(sm[1])
	} else if nunitFinish.MatchString(line) {
		a.h.OnTestIterationFinish()
	}

	a.h.OnTestMessage(severity, line)
	return nil
}
