package execution

import (
	"time"

	"testexe/internal/domain"
)

// Observer receives the lifecycle events of a test run.
//
// All callbacks of one Runner are made from its worker goroutine, one at a
// time, in the order the events appeared in the output of the test process.
// An Observer that is not safe for use from that goroutine must marshal the
// calls itself, for example with AsyncObserver. Callbacks must not call
// Runner.Wait.
type Observer interface {
	// TestStarted and TestFinished bracket a whole run including all repeats
	TestStarted()
	TestFinished()

	// TestStart reports the number of test cases of one iteration
	TestStart(count int)
	// TestFinish is called after every iteration once the process has exited
	TestFinish()
	// TestWaiting reports a process paused until Runner.Continue is called
	TestWaiting(processName string, pid int)

	TestUnitStart(unit domain.TestUnit)
	TestUnitFinish(unit domain.TestUnit, elapsed time.Duration)
	TestUnitSkipped(unit domain.TestUnit)
	TestUnitAborted(unit domain.TestUnit)

	AssertionResult(passed bool)
	ExceptionCaught(what string)
	TestMessage(severity domain.Severity, text string)
}

// NopObserver ignores every event; embed it to implement only some callbacks
type NopObserver struct{}

func (NopObserver) TestStarted()                                   {}
func (NopObserver) TestFinished()                                  {}
func (NopObserver) TestStart(int)                                  {}
func (NopObserver) TestFinish()                                    {}
func (NopObserver) TestWaiting(string, int)                        {}
func (NopObserver) TestUnitStart(domain.TestUnit)                  {}
func (NopObserver) TestUnitFinish(domain.TestUnit, time.Duration)  {}
func (NopObserver) TestUnitSkipped(domain.TestUnit)                {}
func (NopObserver) TestUnitAborted(domain.TestUnit)                {}
func (NopObserver) AssertionResult(bool)                           {}
func (NopObserver) ExceptionCaught(string)                         {}
func (NopObserver) TestMessage(domain.Severity, string)            {}

// MultiObserver forwards every event to each of its observers in order
type MultiObserver []Observer

func (m MultiObserver) TestStarted() {
	for _, o := range m {
		o.TestStarted()
	}
}

func (m MultiObserver) TestFinished() {
	for _, o := range m {
		o.TestFinished()
	}
}

func (m MultiObserver) TestStart(count int) {
	for _, o := range m {
		o.TestStart(count)
	}
}

func (m MultiObserver) TestFinish() {
	for _, o := range m {
		o.TestFinish()
	}
}

func (m MultiObserver) TestWaiting(processName string, pid int) {
	for _, o := range m {
		o.TestWaiting(processName, pid)
	}
}

func (m MultiObserver) TestUnitStart(unit domain.TestUnit) {
	for _, o := range m {
		o.TestUnitStart(unit)
	}
}

func (m MultiObserver) TestUnitFinish(unit domain.TestUnit, elapsed time.Duration) {
	for _, o := range m {
		o.TestUnitFinish(unit, elapsed)
	}
}

func (m MultiObserver) TestUnitSkipped(unit domain.TestUnit) {
	for _, o := range m {
		o.TestUnitSkipped(unit)
	}
}

func (m MultiObserver) TestUnitAborted(unit domain.TestUnit) {
	for _, o := range m {
		o.TestUnitAborted(unit)
	}
}

func (m MultiObserver) AssertionResult(passed bool) {
	for _, o := range m {
		o.AssertionResult(passed)
	}
}

func (m MultiObserver) ExceptionCaught(what string) {
	for _, o := range m {
		o.ExceptionCaught(what)
	}
}

func (m MultiObserver) TestMessage(severity domain.Severity, text string) {
	for _, o := range m {
		o.TestMessage(severity, text)
	}
}
