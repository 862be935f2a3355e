package parser

import (
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"testexe/internal/domain"
	"testexe/internal/tree"
)

// BoostTestAdapter drives Boost.Test executables built with the unit_test_gui header
type BoostTestAdapter struct {
	base
	// units holds the names of the suites and case currently entered, outermost first
	units []string
}

// NewBoostTest creates a Boost.Test adapter
func NewBoostTest(cmd Command, h Handler) *BoostTestAdapter {
	return &BoostTestAdapter{base: newBase(cmd, h)}
}

func (a *BoostTestAdapter) Dialect() Dialect {
	return BoostTest
}

func (a *BoostTestAdapter) ListArgs() []string {
	return []string{"--list_content"}
}

var boostListLine = regexp.MustCompile(`^(\s*)([^\s*:]+)`)

type boostListEntry struct {
	indent int
	name   string
}

type boostListFrame struct {
	indent int
	node   *tree.Node
	path   string
}

// Load parses --list_content output, where nesting is given by indentation
// and a trailing * marks units enabled by default:
//
//	SuiteA*
//	    case1*
//	    case2
func (a *BoostTestAdapter) Load(t *tree.Tree, r io.Reader, rootName string) error {
	a.reset(t, rootName)
	a.units = nil

	var stack []boostListFrame
	add := func(e boostListEntry, suite bool) {
		for len(stack) > 0 && stack[len(stack)-1].indent >= e.indent {
			stack = stack[:len(stack)-1]
		}
		parent, path := t.Root(), e.name
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			parent, path = top.node, top.path+"."+e.name
		}
		if !suite {
			parent.Add(domain.NewCase(a.ids.ID(path), e.name))
			return
		}
		node := parent.Add(domain.NewSuite(a.ids.ID(path), e.name))
		stack = append(stack, boostListFrame{indent: e.indent, node: node, path: path})
	}

	// A unit is a suite when the line after it is indented deeper
	var pending *boostListEntry
	err := ReadLines(r, func(line string) error {
		sm := boostListLine.FindStringSubmatch(line)
		if sm == nil {
			return nil
		}
		e := boostListEntry{indent: len(sm[1]), name: sm[2]}
		if pending != nil {
			add(*pending, e.indent > pending.indent)
		}
		pending = &e
		return nil
	})
	if err != nil {
		return err
	}
	if pending != nil {
		add(*pending, false)
	}
	return nil
}

func (a *BoostTestAdapter) EnabledOptions(options domain.RunOptions) domain.RunOptions {
	return options & (domain.Randomize | domain.WaitForDebugger)
}

func boostLogLevel(level domain.LogLevel) string {
	if level >= domain.LogAll {
		return "all"
	}
	// Unit entry and exit are only reported from test_suite on
	return "test_suite"
}

func (a *BoostTestAdapter) BuildArgs(t *tree.Tree, level domain.LogLevel, options domain.RunOptions) []string {
	args := []string{"--log_level=" + boostLogLevel(level)}
	if options.Has(domain.Randomize) {
		args = append(args, "--random=1")
	}
	if options.Has(domain.WaitForDebugger) {
		args = append(args, "--gui_wait")
	}

	f := newBoostFilter()
	t.Traverse(f)
	if root := f.frames[0]; !root.all {
		if len(root.entries) == 0 {
			args = append(args, "--run_test=!*")
		} else {
			args = append(args, "--run_test="+strings.Join(root.entries, ":"))
		}
	}
	return args
}

type boostFilterFrame struct {
	all     bool
	entries []string
}

// boostFilter builds --run_test paths; a suite with every case enabled
// collapses to "suite/*"
type boostFilter struct {
	frames []*boostFilterFrame
}

func newBoostFilter() *boostFilter {
	return &boostFilter{frames: []*boostFilterFrame{{all: true}}}
}

func (f *boostFilter) top() *boostFilterFrame {
	return f.frames[len(f.frames)-1]
}

func (f *boostFilter) VisitCase(tc *domain.TestUnit) {
	if tc.Enabled {
		f.top().entries = append(f.top().entries, tc.Name)
	} else {
		f.top().all = false
	}
}

func (f *boostFilter) EnterSuite(*domain.TestUnit) {
	f.frames = append(f.frames, &boostFilterFrame{all: true})
}

func (f *boostFilter) LeaveSuite(ts *domain.TestUnit) {
	frame := f.top()
	f.frames = f.frames[:len(f.frames)-1]
	parent := f.top()

	if frame.all {
		if len(frame.entries) > 0 {
			parent.entries = append(parent.entries, ts.Name+"/*")
		}
		return
	}
	parent.all = false
	for _, e := range frame.entries {
		parent.entries = append(parent.entries, ts.Name+"/"+e)
	}
}

var (
	boostWaiting   = regexp.MustCompile(`^#waiting`)
	boostStart     = regexp.MustCompile(`^Running (\d+) test cases?\.\.\.`)
	boostEnter     = regexp.MustCompile(`^Entering test (module|suite|case) "([^"]*)"`)
	boostLeave     = regexp.MustCompile(`^Leaving test (module|suite|case) "([^"]*)"(?:; testing time: (\d+)(us|mks|ms|s)\b)?`)
	boostException = regexp.MustCompile(`^unknown location(?:\(\d+\)|:\d+): fatal error:? (.*)$`)
	boostError     = regexp.MustCompile(`(?:\(\d+\)|:\d+): (?:fatal )?error:? `)
	boostPassed    = regexp.MustCompile(`(?:\(\d+\)|:\d+): info: check .* has passed`)
	boostUnitState = regexp.MustCompile(`^Test (?:case|suite) "?([^"]+?)"? is (skipped|aborted)`)
	boostFinish    = regexp.MustCompile(`^\*\*\* .*detected`)
)

func boostElapsed(value, unit string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "us", "mks":
		return time.Duration(n) * time.Microsecond, nil
	case "s":
		return time.Duration(n) * time.Second, nil
	default:
		return time.Duration(n) * time.Millisecond, nil
	}
}

// unitName returns the dotted name of a unit reported inside the current one.
// Boost reports skipped units either by path ("SuiteA/case1") or by name.
func (a *BoostTestAdapter) unitName(name string) string {
	if strings.Contains(name, "/") {
		return strings.ReplaceAll(name, "/", ".")
	}
	return strings.Join(append(a.units[:len(a.units):len(a.units)], name), ".")
}

func (a *BoostTestAdapter) FilterMessage(line string) error {
	severity := domain.Info

	if boostWaiting.MatchString(line) {
		a.h.OnWaiting()
		return nil
	} else if sm := boostStart.FindStringSubmatch(line); sm != nil {
		count, err := strconv.Atoi(sm[1])
		if err != nil {
			return err
		}
		a.units = nil
		a.h.OnTestIterationStart(count)
	} else if sm := boostEnter.FindStringSubmatch(line); sm != nil {
		if sm[1] == "module" {
			a.h.OnTestUnitStart(tree.RootID, sm[2])
		} else {
			a.units = append(a.units, sm[2])
			name := strings.Join(a.units, ".")
			a.h.OnTestUnitStart(a.ids.ID(name), name)
		}
	} else if sm := boostLeave.FindStringSubmatch(line); sm != nil {
		elapsed, err := boostElapsed(sm[3], sm[4])
		if err != nil {
			return err
		}
		if sm[1] == "module" || len(a.units) == 0 {
			a.h.OnTestUnitFinish(tree.RootID, sm[2], elapsed)
		} else {
			name := strings.Join(a.units, ".")
			a.units = a.units[:len(a.units)-1]
			a.h.OnTestUnitFinish(a.ids.ID(name), name, elapsed)
		}
	} else if sm := boostException.FindStringSubmatch(line); sm != nil {
		severity = domain.Error
		a.h.OnTestExceptionCaught(sm[1])
	} else if boostError.MatchString(line) {
		severity = domain.Error
		a.h.OnTestAssertion(false)
	} else if boostPassed.MatchString(line) {
		a.h.OnTestAssertion(true)
	} else if sm := boostUnitState.FindStringSubmatch(line); sm != nil {
		name := a.unitName(sm[1])
		if sm[2] == "aborted" {
			severity = domain.Error
			a.h.OnTestUnitAborted(a.ids.ID(name), name)
		} else {
			a.h.OnTestUnitSkipped(a.ids.ID(name), name)
		}
	} else if boostFinish.MatchString(line) {
		if !strings.Contains(line, "No errors") {
			severity = domain.Error
		}
		a.h.OnTestIterationFinish()
	}

	a.h.OnTestMessage(severity, line)
	return nil
}
