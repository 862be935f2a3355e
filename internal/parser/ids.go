package parser

// IDMap assigns ids to fully qualified unit names in first-seen order.
// The same name always maps to the same id until Reset.
type IDMap struct {
	ids map[string]int
}

// NewIDMap creates an empty IDMap
func NewIDMap() *IDMap {
	return &IDMap{ids: make(map[string]int)}
}

// ID returns the id of name, assigning the next free one on first sight
func (m *IDMap) ID(name string) int {
	if id, ok := m.ids[name]; ok {
		return id
	}
	id := len(m.ids)
	m.ids[name] = id
	return id
}

// Lookup returns the id of name if it has been seen
func (m *IDMap) Lookup(name string) (int, bool) {
	id, ok := m.ids[name]
	return id, ok
}

// Len returns the number of names seen
func (m *IDMap) Len() int {
	return len(m.ids)
}

// Reset forgets every name
func (m *IDMap) Reset() {
	m.ids = make(map[string]int)
}
