package tree

import "testexe/internal/domain"

// Funcs adapts plain functions to the Visitor interface; nil funcs are skipped
type Funcs struct {
	Case  func(tc *domain.TestUnit)
	Enter func(ts *domain.TestUnit)
	Leave func(ts *domain.TestUnit)
}

func (f Funcs) VisitCase(tc *domain.TestUnit) {
	if f.Case != nil {
		f.Case(tc)
	}
}

func (f Funcs) EnterSuite(ts *domain.TestUnit) {
	if f.Enter != nil {
		f.Enter(ts)
	}
}

func (f Funcs) LeaveSuite(ts *domain.TestUnit) {
	if f.Leave != nil {
		f.Leave(ts)
	}
}

// PathNamer fills in the dotted full name of every unit it visits
type PathNamer struct {
	suites []*domain.TestUnit
}

func (p *PathNamer) fullName(name string) string {
	if len(p.suites) == 0 || p.suites[len(p.suites)-1].FullName == "" {
		return name
	}
	return p.suites[len(p.suites)-1].FullName + "." + name
}

func (p *PathNamer) VisitCase(tc *domain.TestUnit) {
	tc.FullName = p.fullName(tc.Name)
}

func (p *PathNamer) EnterSuite(ts *domain.TestUnit) {
	if ts.ID == RootID {
		ts.FullName = ""
	} else {
		ts.FullName = p.fullName(ts.Name)
	}
	p.suites = append(p.suites, ts)
}

func (p *PathNamer) LeaveSuite(*domain.TestUnit) {
	p.suites = p.suites[:len(p.suites)-1]
}

// CaseCounter counts the test cases it visits
type CaseCounter struct {
	Count int
}

func (c *CaseCounter) VisitCase(*domain.TestUnit)  { c.Count++ }
func (c *CaseCounter) EnterSuite(*domain.TestUnit) {}
func (c *CaseCounter) LeaveSuite(*domain.TestUnit) {}

// SingleSelector enables exactly one unit: its subtree and its ancestor
// suites are enabled, everything else is disabled.
type SingleSelector struct {
	ID     int
	enable bool
	suites []*domain.TestUnit
}

// NewSingleSelector creates a selector for the unit with the given id
func NewSingleSelector(id int) *SingleSelector {
	return &SingleSelector{ID: id}
}

func (s *SingleSelector) enableSuites() {
	for _, ts := range s.suites {
		ts.Enabled = true
	}
}

func (s *SingleSelector) VisitCase(tc *domain.TestUnit) {
	if tc.ID == s.ID {
		s.enableSuites()
	}
	tc.Enabled = s.enable || tc.ID == s.ID
}

func (s *SingleSelector) EnterSuite(ts *domain.TestUnit) {
	if ts.ID == s.ID {
		s.enableSuites()
		s.enable = true
	}
	ts.Enabled = s.enable
	s.suites = append(s.suites, ts)
}

func (s *SingleSelector) LeaveSuite(ts *domain.TestUnit) {
	if ts.ID == s.ID {
		s.enable = false
	}
	s.suites = s.suites[:len(s.suites)-1]
}

// CheckedSelector sets every unit's enabled flag from a predicate
type CheckedSelector struct {
	Checked func(id int) bool
}

func (s CheckedSelector) VisitCase(tc *domain.TestUnit)  { tc.Enabled = s.Checked(tc.ID) }
func (s CheckedSelector) EnterSuite(ts *domain.TestUnit) { ts.Enabled = s.Checked(ts.ID) }
func (s CheckedSelector) LeaveSuite(*domain.TestUnit)    {}

// AllSelector enables every unit
type AllSelector struct{}

func (AllSelector) VisitCase(tc *domain.TestUnit)  { tc.Enabled = true }
func (AllSelector) EnterSuite(ts *domain.TestUnit) { ts.Enabled = true }
func (AllSelector) LeaveSuite(*domain.TestUnit)    {}

// MatchSelector enables the cases whose full name satisfies Match and the
// suites that contain at least one of them
type MatchSelector struct {
	Match  func(fullName string) bool
	suites []*domain.TestUnit
}

func (s *MatchSelector) VisitCase(tc *domain.TestUnit) {
	tc.Enabled = s.Match(tc.FullName)
	if tc.Enabled {
		for _, ts := range s.suites {
			ts.Enabled = true
		}
	}
}

func (s *MatchSelector) EnterSuite(ts *domain.TestUnit) {
	ts.Enabled = false
	s.suites = append(s.suites, ts)
}

func (s *MatchSelector) LeaveSuite(*domain.TestUnit) {
	s.suites = s.suites[:len(s.suites)-1]
}
