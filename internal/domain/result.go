package domain

import "time"

// RunReportMeta contains metadata about a test run
type RunReportMeta struct {
	Executable      string  `json:"executable" yaml:"executable"`
	Dialect         string  `json:"dialect" yaml:"dialect"`
	Options         string  `json:"options" yaml:"options"`
	Iterations      int     `json:"iterations" yaml:"iterations"`
	TotalTestCases  int     `json:"total_test_cases" yaml:"total_test_cases"`
	PassedTestCases int     `json:"passed_test_cases" yaml:"passed_test_cases"`
	FailedTestCases int     `json:"failed_test_cases" yaml:"failed_test_cases"`
	SkippedUnits    int     `json:"skipped_units" yaml:"skipped_units"`
	Crashed         bool    `json:"crashed" yaml:"crashed"` // The process ended without its finish marker
	Duration        string  `json:"duration" yaml:"duration"`
	DurationSeconds float64 `json:"duration_seconds" yaml:"duration_seconds"`
	Timestamp       string  `json:"timestamp" yaml:"timestamp"`
}

// RunReport is the complete output structure for a test run
type RunReport struct {
	Meta    RunReportMeta `json:"meta" yaml:"meta"`
	Details []TestFailure `json:"details" yaml:"details"`
}

// Success reports whether the run finished without failures
func (r *RunReport) Success() bool {
	return r.Meta.FailedTestCases == 0 && !r.Meta.Crashed
}

// SetDuration fills the duration fields of the report
func (r *RunReport) SetDuration(d time.Duration) {
	r.Meta.Duration = d.Round(time.Millisecond).String()
	r.Meta.DurationSeconds = d.Seconds()
}
