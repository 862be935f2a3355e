package domain

// Kind tells suites and cases apart
type Kind int

const (
	// Suite is a grouping node; it may contain suites and cases
	Suite Kind = iota
	// Case is a leaf test unit
	Case
)

func (k Kind) String() string {
	if k == Case {
		return "case"
	}
	return "suite"
}

// TestUnit is a node of the test tree as reported by the test framework
type TestUnit struct {
	ID       int    // Unique within one loaded tree, assigned during discovery
	Kind     Kind   // Suite or Case
	Name     string // Short name as reported by the framework
	FullName string // Dotted path of ancestor names, empty for the root
	Enabled  bool   // Selected for the next run
}

// NewSuite creates an enabled suite unit
func NewSuite(id int, name string) TestUnit {
	return TestUnit{ID: id, Kind: Suite, Name: name, Enabled: true}
}

// NewCase creates an enabled case unit
func NewCase(id int, name string) TestUnit {
	return TestUnit{ID: id, Kind: Case, Name: name, Enabled: true}
}

// IsCase reports whether the unit is a leaf test case
func (u TestUnit) IsCase() bool {
	return u.Kind == Case
}
