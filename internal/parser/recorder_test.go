package parser

import (
	"fmt"
	"time"

	"testexe/internal/domain"
)

// recorder is a Handler that records structural events as strings
type recorder struct {
	events   []string
	messages []string
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) OnWaiting()                     { r.add("waiting") }
func (r *recorder) OnTestIterationStart(count int) { r.add("iteration-start:%d", count) }
func (r *recorder) OnTestIterationFinish()         { r.add("iteration-finish") }
func (r *recorder) OnTestUnitStart(id int, name string) {
	r.add("start:%d:%s", id, name)
}
func (r *recorder) OnTestUnitFinish(id int, name string, elapsed time.Duration) {
	r.add("finish:%d:%s:%s", id, name, elapsed)
}
func (r *recorder) OnTestUnitSkipped(id int, name string) { r.add("skipped:%d:%s", id, name) }
func (r *recorder) OnTestUnitAborted(id int, name string) { r.add("aborted:%d:%s", id, name) }
func (r *recorder) OnTestAssertion(passed bool)           { r.add("assertion:%v", passed) }
func (r *recorder) OnTestExceptionCaught(what string)     { r.add("exception:%s", what) }
func (r *recorder) OnTestMessage(severity domain.Severity, text string) {
	r.messages = append(r.messages, severity.String()+":"+text)
}

func (r *recorder) count(prefix string) int {
	n := 0
	for _, e := range r.events {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func feed(a Adapter, lines ...string) error {
	for _, l := range lines {
		if err := a.FilterMessage(l); err != nil {
			return err
		}
	}
	return nil
}
