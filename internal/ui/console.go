package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"testexe/internal/domain"
	"testexe/internal/execution"
)

// Console prints the events of a run and keeps a progress bar current.
// It is driven from the runner's worker goroutine.
type Console struct {
	execution.NopObserver

	out      io.Writer
	progress *ProgressBar
	verbose  bool

	// CountCases returns the number of cases below a skipped suite
	CountCases func(id int) (int, error)
	// OnWaiting is called when the test process waits for a debugger
	OnWaiting func(processName string, pid int)

	completed, passed, failed int
	caseFailed                bool
}

// NewConsole creates a Console writing to out. progress may be nil.
func NewConsole(out io.Writer, progress *ProgressBar, verbose bool) *Console {
	return &Console{out: out, progress: progress, verbose: verbose}
}

// SetProgress replaces the progress bar; call it before the run starts
func (c *Console) SetProgress(progress *ProgressBar) {
	c.progress = progress
}

// Counts returns the completed, passed and failed case counts of the current iteration
func (c *Console) Counts() (completed, passed, failed int) {
	return c.completed, c.passed, c.failed
}

func (c *Console) println(attr color.Attribute, format string, args ...any) {
	if c.progress != nil {
		c.progress.Clear()
	}
	color.New(attr).Fprintf(c.out, format+"\n", args...)
}

func (c *Console) update() {
	if c.progress != nil {
		c.progress.Update(c.completed, c.passed, c.failed)
	}
}

func (c *Console) TestStart(count int) {
	c.completed, c.passed, c.failed = 0, 0, 0
	if c.progress != nil {
		c.progress.Restart(count)
	}
}

func (c *Console) TestFinished() {
	if c.progress != nil {
		c.progress.Finish()
	}
}

func (c *Console) TestWaiting(processName string, pid int) {
	c.println(color.FgYellow, "Process %d: %s is waiting, attach a debugger and press Enter to continue", pid, processName)
	if c.OnWaiting != nil {
		c.OnWaiting(processName, pid)
	}
}

func (c *Console) TestUnitStart(unit domain.TestUnit) {
	if unit.IsCase() {
		c.caseFailed = false
	}
}

func (c *Console) TestUnitFinish(unit domain.TestUnit, elapsed time.Duration) {
	if !unit.IsCase() {
		return
	}
	c.completed++
	if c.caseFailed {
		c.failed++
		c.println(color.FgRed, "✗ %s (%s)", unit.FullName, elapsed)
	} else {
		c.passed++
		if c.verbose {
			c.println(color.FgGreen, "✓ %s (%s)", unit.FullName, elapsed)
		}
	}
	c.caseFailed = false
	c.update()
}

func (c *Console) TestUnitSkipped(unit domain.TestUnit) {
	n := 1
	if !unit.IsCase() && c.CountCases != nil {
		if count, err := c.CountCases(unit.ID); err == nil {
			n = count
		}
	}
	c.completed += n
	c.println(color.FgYellow, "- %s skipped", unit.FullName)
	c.update()
}

func (c *Console) TestUnitAborted(unit domain.TestUnit) {
	c.caseFailed = true
	c.println(color.FgRed, "! %s aborted", unit.FullName)
}

func (c *Console) AssertionResult(passed bool) {
	if !passed {
		c.caseFailed = true
	}
}

func (c *Console) ExceptionCaught(what string) {
	c.caseFailed = true
	c.println(color.FgRed, "Exception: %s", what)
}

func (c *Console) TestMessage(severity domain.Severity, text string) {
	switch severity {
	case domain.Fatal:
		c.println(color.BgRed, "%s", text)
	case domain.Error:
		c.println(color.FgRed, "%s", text)
	default:
		if c.verbose {
			if c.progress != nil {
				c.progress.Clear()
			}
			fmt.Fprintln(c.out, text)
		}
	}
}
