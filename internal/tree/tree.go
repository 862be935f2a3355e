// Package tree holds the hierarchy of test suites and cases discovered in a
// test executable, and the visitor protocol used to walk it.
package tree

import (
	"errors"
	"fmt"

	"testexe/internal/domain"
)

// ErrInvalidID is returned when no unit with the requested id exists
var ErrInvalidID = errors.New("invalid test unit id")

// RootID is the id of the synthetic root suite
const RootID = 0

// Visitor receives the units of a tree in depth-first insertion order.
// Suites are bracketed by EnterSuite and LeaveSuite around their children.
type Visitor interface {
	VisitCase(tc *domain.TestUnit)
	EnterSuite(ts *domain.TestUnit)
	LeaveSuite(ts *domain.TestUnit)
}

// Node is a unit together with its ordered children
type Node struct {
	Unit     domain.TestUnit
	Children []*Node
}

// Add appends a child unit and returns its node
func (n *Node) Add(unit domain.TestUnit) *Node {
	if n.Unit.IsCase() {
		panic(fmt.Sprintf("tree: cannot add %q to test case %q", unit.Name, n.Unit.Name))
	}
	child := &Node{Unit: unit}
	n.Children = append(n.Children, child)
	return child
}

// Last returns the most recently added child, or nil
func (n *Node) Last() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

// Child returns the direct child with the given name, or nil
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Unit.Name == name {
			return c
		}
	}
	return nil
}

// Tree is a rooted, ordered tree of test units
type Tree struct {
	root *Node
	// Name is the module name the units were discovered in (usually the executable name)
	Name string
}

// New creates an empty tree holding only the synthetic root suite
func New() *Tree {
	return &Tree{root: &Node{Unit: domain.NewSuite(RootID, "root")}}
}

// Root returns the synthetic root node
func (t *Tree) Root() *Node {
	return t.root
}

// Empty reports whether the tree holds no discovered units
func (t *Tree) Empty() bool {
	return len(t.root.Children) == 0
}

// Reset drops every discovered unit
func (t *Tree) Reset() {
	t.root.Children = nil
	t.Name = ""
}

// Find returns the node with the given id
func (t *Tree) Find(id int) (*Node, error) {
	if n := find(t.root, id); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidID, id)
}

func find(n *Node, id int) *Node {
	if n.Unit.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := find(c, id); found != nil {
			return found
		}
	}
	return nil
}

// Unit returns a copy of the unit with the given id
func (t *Tree) Unit(id int) (domain.TestUnit, error) {
	n, err := t.Find(id)
	if err != nil {
		return domain.TestUnit{}, err
	}
	return n.Unit, nil
}

// Enable sets the enabled flag of a single unit
func (t *Tree) Enable(id int, enable bool) error {
	n, err := t.Find(id)
	if err != nil {
		return err
	}
	n.Unit.Enabled = enable
	return nil
}

// Traverse visits the children of the root
func (t *Tree) Traverse(v Visitor) {
	for _, c := range t.root.Children {
		traverse(c, v)
	}
}

// TraverseID visits the subtree rooted at the unit with the given id
func (t *Tree) TraverseID(id int, v Visitor) error {
	n, err := t.Find(id)
	if err != nil {
		return err
	}
	traverse(n, v)
	return nil
}

func traverse(n *Node, v Visitor) {
	if n.Unit.IsCase() {
		v.VisitCase(&n.Unit)
		return
	}
	v.EnterSuite(&n.Unit)
	for _, c := range n.Children {
		traverse(c, v)
	}
	v.LeaveSuite(&n.Unit)
}

// CaseCount returns the number of test cases in the whole tree
func (t *Tree) CaseCount() int {
	var c CaseCounter
	t.Traverse(&c)
	return c.Count
}
