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

// GoogleTestAdapter drives Google Test executables built with the gtest-gui header
type GoogleTestAdapter struct {
	base
}

// NewGoogleTest creates a Google Test adapter
func NewGoogleTest(cmd Command, h Handler) *GoogleTestAdapter {
	return &GoogleTestAdapter{base: newBase(cmd, h)}
}

func (a *GoogleTestAdapter) Dialect() Dialect {
	return GoogleTest
}

func (a *GoogleTestAdapter) ListArgs() []string {
	return []string{"--gtest_list_tests"}
}

func gtestFullName(suite, test string) string {
	return suite + "." + test
}

// Load parses --gtest_list_tests output:
//
//	SuiteA.
//	  case1
//	Inst/SuiteP.  # TypeParam = int
//	  case/0  # GetParam() = 1
func (a *GoogleTestAdapter) Load(t *tree.Tree, r io.Reader, rootName string) error {
	a.reset(t, rootName)

	var suite *tree.Node
	return ReadLines(r, func(line string) error {
		if i := strings.Index(line, "  #"); i >= 0 {
			line = line[:i]
		}
		name := strings.TrimSpace(line)
		if name == "" {
			return nil
		}

		indented := line[0] == ' ' || line[0] == '\t'
		switch {
		case !indented && strings.HasSuffix(name, "."):
			name = strings.TrimSuffix(name, ".")
			suite = t.Root().Add(domain.NewSuite(a.ids.ID(name), name))
		case indented && suite != nil:
			suite.Add(domain.NewCase(a.ids.ID(gtestFullName(suite.Unit.Name, name)), name))
		}
		return nil
	})
}

func (a *GoogleTestAdapter) EnabledOptions(options domain.RunOptions) domain.RunOptions {
	return options & (domain.Randomize | domain.WaitForDebugger)
}

func (a *GoogleTestAdapter) BuildArgs(t *tree.Tree, level domain.LogLevel, options domain.RunOptions) []string {
	var args []string
	if options.Has(domain.Randomize) {
		args = append(args, "--gtest_shuffle")
	}
	if options.Has(domain.WaitForDebugger) {
		args = append(args, "--gui_wait")
	}

	f := newGTestFilter()
	t.Traverse(f)
	if !f.allCases {
		if len(f.patterns) == 0 {
			// Nothing selected: exclude everything
			args = append(args, "--gtest_filter=-*")
		} else {
			args = append(args, "--gtest_filter="+strings.Join(f.patterns, ":"))
		}
	}
	return args
}

// gtestFilter collects --gtest_filter patterns for the enabled cases
type gtestFilter struct {
	allCases        bool
	allCasesInSuite bool
	cases           []string
	patterns        []string
}

func newGTestFilter() *gtestFilter {
	return &gtestFilter{allCases: true}
}

func (f *gtestFilter) VisitCase(tc *domain.TestUnit) {
	if tc.Enabled {
		f.cases = append(f.cases, tc.Name)
	} else {
		f.allCases = false
		f.allCasesInSuite = false
	}
}

func (f *gtestFilter) EnterSuite(ts *domain.TestUnit) {
	f.allCasesInSuite = true
	f.cases = f.cases[:0]
}

func (f *gtestFilter) LeaveSuite(ts *domain.TestUnit) {
	if f.allCasesInSuite {
		if len(f.cases) > 0 {
			f.patterns = append(f.patterns, gtestFullName(ts.Name, "*"))
		}
	} else {
		for _, c := range f.cases {
			f.patterns = append(f.patterns, gtestFullName(ts.Name, c))
		}
	}
	f.cases = f.cases[:0]
}

var (
	gtestWaiting = regexp.MustCompile(`^#waiting`)
	gtestStart   = regexp.MustCompile(`^\[==========\] Running (\d+) tests? `)
	gtestSuite   = regexp.MustCompile(`^\[----------\] \d+ tests? from ([\w/]+)( \((\d+) ms total\))?`)
	gtestBegin   = regexp.MustCompile(`^\[ RUN      \] ([\w./]+)`)
	gtestError   = regexp.MustCompile(`\(\d+\): error: |:\d+: Failure$`)
	gtestEnd     = regexp.MustCompile(`^\[(       OK |  FAILED  )\] ([\w./]+) \((\d+) ms\)`)
	gtestSkipped = regexp.MustCompile(`^\[  SKIPPED \] ([\w./]+) \((\d+) ms\)`)
	gtestFinish  = regexp.MustCompile(`^\[==========\] \d+ tests? from `)
)

func (a *GoogleTestAdapter) FilterMessage(line string) error {
	severity := domain.Info

	if gtestWaiting.MatchString(line) {
		a.h.OnWaiting()
		return nil
	} else if sm := gtestStart.FindStringSubmatch(line); sm != nil {
		count, err := strconv.Atoi(sm[1])
		if err != nil {
			return err
		}
		a.h.OnTestIterationStart(count)
	} else if sm := gtestSuite.FindStringSubmatch(line); sm != nil {
		if sm[2] != "" {
			ms, err := strconv.Atoi(sm[3])
			if err != nil {
				return err
			}
			a.h.OnTestUnitFinish(a.ids.ID(sm[1]), sm[1], time.Duration(ms)*time.Millisecond)
		} else {
			a.h.OnTestUnitStart(a.ids.ID(sm[1]), sm[1])
		}
	} else if sm := gtestBegin.FindStringSubmatch(line); sm != nil {
		a.h.OnTestUnitStart(a.ids.ID(sm[1]), sm[1])
	} else if gtestError.MatchString(line) {
		severity = domain.Error
		a.h.OnTestAssertion(false)
	} else if sm := gtestEnd.FindStringSubmatch(line); sm != nil {
		ms, err := strconv.Atoi(sm[3])
		if err != nil {
			return err
		}
		a.h.OnTestUnitFinish(a.ids.ID(sm[2]), sm[2], time.Duration(ms)*time.Millisecond)
		if sm[1] == "  FAILED  " {
			severity = domain.Error
		}
	} else if sm := gtestSkipped.FindStringSubmatch(line); sm != nil {
		a.h.OnTestUnitSkipped(a.ids.ID(sm[1]), sm[1])
	} else if gtestFinish.MatchString(line) {
		a.h.OnTestIterationFinish()
	}

	a.h.OnTestMessage(severity, line)
	return nil
}
