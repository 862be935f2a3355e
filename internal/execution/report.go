package execution

import (
	"sync"
	"time"

	"testexe/internal/domain"
)

// Collector is an Observer that builds the report of a run
type Collector struct {
	NopObserver

	mu      sync.Mutex
	report  domain.RunReport
	started time.Time

	current  *domain.TestUnit
	failed   bool
	messages []string
}

// NewCollector creates a Collector for a run of executable
func NewCollector(executable, dialect string, options domain.RunOptions) *Collector {
	return &Collector{
		report: domain.RunReport{
			Meta: domain.RunReportMeta{
				Executable: executable,
				Dialect:    dialect,
				Options:    options.String(),
			},
			Details: []domain.TestFailure{},
		},
	}
}

// Report returns a copy of the report collected so far
func (c *Collector) Report() domain.RunReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := c.report
	report.Details = append([]domain.TestFailure{}, c.report.Details...)
	return report
}

func (c *Collector) TestStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = time.Now()
	c.report.Meta.Timestamp = c.started.Format(time.RFC3339)
}

func (c *Collector) TestFinished() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.SetDuration(time.Since(c.started))
}

// TestStart begins a new iteration. Case counts and failures describe the
// latest iteration; Iterations counts all of them.
func (c *Collector) TestStart(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := &c.report.Meta
	m.Iterations++
	m.TotalTestCases = count
	m.PassedTestCases, m.FailedTestCases, m.SkippedUnits = 0, 0, 0
	c.report.Details = []domain.TestFailure{}
}

// TestFinish closes a case the process died in
func (c *Collector) TestFinish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.failed {
		c.finishCase(*c.current, 0)
	}
	c.current = nil
}

func (c *Collector) TestUnitStart(unit domain.TestUnit) {
	if !unit.IsCase() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = &unit
	c.failed = false
	c.messages = nil
}

func (c *Collector) TestUnitFinish(unit domain.TestUnit, elapsed time.Duration) {
	if !unit.IsCase() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finishCase(unit, elapsed)
}

func (c *Collector) TestUnitSkipped(domain.TestUnit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Meta.SkippedUnits++
}

func (c *Collector) TestUnitAborted(domain.TestUnit) {
	c.fail()
}

func (c *Collector) AssertionResult(passed bool) {
	if !passed {
		c.fail()
	}
}

func (c *Collector) ExceptionCaught(what string) {
	c.mu.Lock()
	c.messages = append(c.messages, what)
	c.mu.Unlock()
	c.fail()
}

func (c *Collector) TestMessage(severity domain.Severity, text string) {
	if severity == domain.Info {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if severity == domain.Fatal {
		c.report.Meta.Crashed = true
	}
	c.messages = append(c.messages, text)
}

// fail marks the running case as failed. Failures outside any case are
// reported against the executable.
func (c *Collector) fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		c.current = &domain.TestUnit{Name: c.report.Meta.Executable, FullName: c.report.Meta.Executable}
	}
	c.failed = true
}

// finishCase must be called with c.mu held
func (c *Collector) finishCase(unit domain.TestUnit, elapsed time.Duration) {
	if c.failed {
		c.report.Meta.FailedTestCases++
		c.report.Details = append(c.report.Details, domain.TestFailure{
			TestID:   unit.ID,
			TestName: unit.FullName,
			Messages: c.messages,
			Elapsed:  elapsed.Milliseconds(),
		})
	} else if unit.IsCase() {
		c.report.Meta.PassedTestCases++
	}
	c.current = nil
	c.failed = false
	c.messages = nil
}
