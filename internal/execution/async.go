package execution

import (
	"sync"
	"time"

	"testexe/internal/domain"
)

// AsyncObserver hands events to another goroutine through a bounded channel.
// The runner's worker blocks when the buffer is full, so no event is dropped
// or reordered. Events are delivered to the target by Run.
type AsyncObserver struct {
	target    Observer
	events    chan func()
	closeOnce sync.Once
}

// NewAsyncObserver creates an AsyncObserver delivering to target
func NewAsyncObserver(target Observer, buffer int) *AsyncObserver {
	return &AsyncObserver{target: target, events: make(chan func(), buffer)}
}

// Run delivers queued events to the target on the calling goroutine until
// Close is called and the queue is drained
func (a *AsyncObserver) Run() {
	for fn := range a.events {
		fn()
	}
}

// Events exposes the queue for consumers with their own event loop; each
// received func must be called in order
func (a *AsyncObserver) Events() <-chan func() {
	return a.events
}

// Close ends Run once pending events are delivered. It must only be called
// after the Runner has been waited for.
func (a *AsyncObserver) Close() {
	a.closeOnce.Do(func() { close(a.events) })
}

func (a *AsyncObserver) post(fn func()) {
	a.events <- fn
}

func (a *AsyncObserver) TestStarted()  { a.post(a.target.TestStarted) }
func (a *AsyncObserver) TestFinished() { a.post(a.target.TestFinished) }
func (a *AsyncObserver) TestFinish()   { a.post(a.target.TestFinish) }

func (a *AsyncObserver) TestStart(count int) {
	a.post(func() { a.target.TestStart(count) })
}

func (a *AsyncObserver) TestWaiting(processName string, pid int) {
	a.post(func() { a.target.TestWaiting(processName, pid) })
}

func (a *AsyncObserver) TestUnitStart(unit domain.TestUnit) {
	a.post(func() { a.target.TestUnitStart(unit) })
}

func (a *AsyncObserver) TestUnitFinish(unit domain.TestUnit, elapsed time.Duration) {
	a.post(func() { a.target.TestUnitFinish(unit, elapsed) })
}

func (a *AsyncObserver) TestUnitSkipped(unit domain.TestUnit) {
	a.post(func() { a.target.TestUnitSkipped(unit) })
}

func (a *AsyncObserver) TestUnitAborted(unit domain.TestUnit) {
	a.post(func() { a.target.TestUnitAborted(unit) })
}

func (a *AsyncObserver) AssertionResult(passed bool) {
	a.post(func() { a.target.AssertionResult(passed) })
}

func (a *AsyncObserver) ExceptionCaught(what string) {
	a.post(func() { a.target.ExceptionCaught(what) })
}

func (a *AsyncObserver) TestMessage(severity domain.Severity, text string) {
	a.post(func() { a.target.TestMessage(severity, text) })
}
