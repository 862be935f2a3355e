package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"testexe/internal/domain"
	"testexe/internal/execution"
	"testexe/internal/tree"
)

// Formatter formats and displays output
type Formatter struct {
	out         io.Writer
	projectPath string
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(out io.Writer, projectPath string) *Formatter {
	return &Formatter{out: out, projectPath: projectPath}
}

func (f *Formatter) printf(attr color.Attribute, format string, args ...any) {
	color.New(attr).Fprintf(f.out, format, args...)
}

// PrintTree prints the discovered test tree. When onlyEnabled is set,
// disabled units are left out.
func (f *Formatter) PrintTree(t *tree.Tree, onlyEnabled bool) {
	count := 0
	t.Traverse(tree.Funcs{Case: func(tc *domain.TestUnit) {
		if tc.Enabled || !onlyEnabled {
			count++
		}
	}})

	f.printf(color.FgGreen, "%s: %d test case(s)\n", t.Name, count)
	f.printNodes(t.Root().Children, "", onlyEnabled)
}

func (f *Formatter) printNodes(nodes []*tree.Node, prefix string, onlyEnabled bool) {
	var visible []*tree.Node
	for _, n := range nodes {
		if n.Unit.Enabled || !onlyEnabled {
			visible = append(visible, n)
		}
	}

	for i, n := range visible {
		isLast := i == len(visible)-1
		connector, childPrefix := "├── ", "│   "
		if isLast {
			connector, childPrefix = "└── ", "    "
		}

		id := color.New(color.FgHiBlack).Sprintf("[%d]", n.Unit.ID)
		switch {
		case !n.Unit.Enabled:
			fmt.Fprintf(f.out, "%s%s %s\n", prefix+connector, color.New(color.FgHiBlack).Sprint(n.Unit.Name), id)
		case n.Unit.IsCase():
			fmt.Fprintf(f.out, "%s%s %s\n", prefix+connector, color.YellowString(n.Unit.Name), id)
		default:
			fmt.Fprintf(f.out, "%s%s %s\n", prefix+connector, color.CyanString(n.Unit.Name), id)
		}
		f.printNodes(n.Children, prefix+childPrefix, onlyEnabled)
	}
}

// PrintMetaStats displays the statistics of a run report
func (f *Formatter) PrintMetaStats(report *domain.RunReport) {
	meta := report.Meta

	// Print header
	fmt.Fprint(f.out, "\n")
	f.printf(color.FgCyan, "╔═══════════════════════════════════════════════════════════════╗\n")
	f.printf(color.FgCyan, "║                    Test Execution Statistics                  ║\n")
	f.printf(color.FgCyan, "╚═══════════════════════════════════════════════════════════════╝\n\n")

	rows := []struct {
		label string
		value string
		attr  color.Attribute
	}{
		{"Executable", filepath.Base(meta.Executable), color.FgWhite},
		{"Framework", meta.Dialect, color.FgWhite},
		{"Options", meta.Options, color.FgWhite},
		{"Iterations", fmt.Sprint(meta.Iterations), color.FgWhite},
		{"Total Test Cases", fmt.Sprint(meta.TotalTestCases), color.FgWhite},
		{"Passed Test Cases", fmt.Sprint(meta.PassedTestCases), color.FgGreen},
		{"Failed Test Cases", fmt.Sprint(meta.FailedTestCases), color.FgRed},
		{"Skipped Units", fmt.Sprint(meta.SkippedUnits), color.FgYellow},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), color.FgWhite},
		{"Timestamp", meta.Timestamp, color.FgWhite},
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ ", row.label)
		f.printf(row.attr, "%-27s", row.value)
		fmt.Fprintln(f.out, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	// Print summary line
	fmt.Fprintln(f.out)
	switch {
	case meta.Crashed:
		f.printf(color.FgRed, "✗ The test process ended unexpectedly\n")
	case report.Success():
		f.printf(color.FgGreen, "✓ All tests passed!\n")
	default:
		f.printf(color.FgRed, "✗ %d test case failure(s)\n", meta.FailedTestCases)
	}
	if len(report.Details) > 0 {
		fmt.Fprintln(f.out)
		f.printFailedTestsTree(report.Details)
	}
}

// TreeNode represents a node in the failure tree, one per name segment
type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	Failure  *domain.TestFailure
}

// printFailedTestsTree prints failed cases grouped by their suites
func (f *Formatter) printFailedTestsTree(failures []domain.TestFailure) {
	root := &TreeNode{Children: make(map[string]*TreeNode)}

	for i := range failures {
		parts := strings.Split(failures[i].TestName, ".")
		current := root
		for _, part := range parts {
			if current.Children[part] == nil {
				current.Children[part] = &TreeNode{Name: part, Children: make(map[string]*TreeNode)}
			}
			current = current.Children[part]
		}
		current.Failure = &failures[i]
	}

	f.printTreeNode(root, "")
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string) {
	// Sort children for consistent output
	keys := make([]string, 0, len(node.Children))
	for key := range node.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		child := node.Children[key]
		connector, childPrefix := "├── ", "│   "
		if i == len(keys)-1 {
			connector, childPrefix = "└── ", "    "
		}

		if child.Failure != nil {
			mark := ""
			if child.Failure.Resolved {
				mark = " " + color.New(color.FgHiBlack).Sprint("(resolved)")
			}
			fmt.Fprintf(f.out, "%s%s%s\n", prefix+connector, color.RedString(child.Name), mark)
		} else {
			fmt.Fprintf(f.out, "%s%s\n", prefix+connector, color.CyanString(child.Name))
		}
		f.printTreeNode(child, prefix+childPrefix)
	}
}

// PrintInventory prints the executables found by a scan
func (f *Formatter) PrintInventory(results []execution.BatchResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	f.printf(color.FgGreen, "Found %d test executable(s):\n", len(results))
	for i, r := range results {
		connector := "├── "
		if i == len(results)-1 {
			connector = "└── "
		}

		relPath, err := filepath.Rel(f.projectPath, r.Path)
		if err != nil {
			relPath = r.Path
		}

		switch {
		case r.Err != nil:
			fmt.Fprintf(f.out, "%s%s %s\n", connector, color.CyanString(relPath), color.RedString("(%v)", r.Err))
		case r.Report != nil:
			status := color.GreenString("passed")
			if !r.Report.Success() {
				status = color.RedString("%d failed", r.Report.Meta.FailedTestCases)
			}
			fmt.Fprintf(f.out, "%s%s [%s] %d case(s), %s\n", connector, color.CyanString(relPath), r.Dialect, r.Cases, status)
		default:
			fmt.Fprintf(f.out, "%s%s [%s] %d case(s)\n", connector, color.CyanString(relPath), r.Dialect, r.Cases)
		}
	}
}
