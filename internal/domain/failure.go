package domain

// TestFailure represents a failed test case of the last run
type TestFailure struct {
	TestID   int      `json:"test_id" yaml:"test_id"`
	TestName string   `json:"test_name" yaml:"test_name"` // Full dotted name of the case
	Messages []string `json:"messages" yaml:"messages"`   // Error lines reported while the case ran
	Elapsed  int64    `json:"elapsed_ms" yaml:"elapsed_ms"`
	Resolved bool     `json:"resolved,omitempty" yaml:"resolved,omitempty"` // Track if test case is marked as resolved
}
