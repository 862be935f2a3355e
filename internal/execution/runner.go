package execution

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"testexe/internal/domain"
	"testexe/internal/parser"
	"testexe/internal/process"
	"testexe/internal/tree"
)

var (
	// ErrNotLoaded is returned when a run is requested without a discovered test tree
	ErrNotLoaded = errors.New("no test tree loaded")
	// ErrRunning is returned for operations that are not allowed during a run
	ErrRunning = errors.New("test run in progress")
)

// AdapterFactory creates the protocol adapter for an executable
type AdapterFactory func(path string, h parser.Handler) (parser.Adapter, error)

// Option configures a Runner
type Option func(*Runner)

// WithParserOptions sets the options used to build the default adapter
func WithParserOptions(opts parser.Options) Option {
	return func(r *Runner) {
		r.newAdapter = func(path string, h parser.Handler) (parser.Adapter, error) {
			return parser.New(path, h, opts)
		}
	}
}

// WithAdapterFactory replaces executable classification with factory
func WithAdapterFactory(factory AdapterFactory) Option {
	return func(r *Runner) {
		r.newAdapter = factory
	}
}

// Runner discovers the tests of one executable and runs them on a worker
// goroutine, reporting progress to an Observer.
type Runner struct {
	path       string
	observer   Observer
	newAdapter AdapterFactory

	tree    *tree.Tree
	adapter parser.Adapter

	mu         sync.Mutex
	proc       *process.Process
	done       chan struct{}
	repeat     bool
	repeatArgs []string

	// owned by the worker goroutine
	iterationFinished bool
}

// NewRunner creates a Runner for the executable at path and loads its tests
func NewRunner(path string, observer Observer, opts ...Option) (*Runner, error) {
	if observer == nil {
		observer = NopObserver{}
	}
	r := &Runner{
		path:     path,
		observer: observer,
		tree:     tree.New(),
	}
	WithParserOptions(parser.Options{})(r)
	for _, opt := range opts {
		opt(r)
	}

	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the executable path
func (r *Runner) Path() string {
	return r.path
}

// Dialect returns the framework of the loaded executable
func (r *Runner) Dialect() parser.Dialect {
	if r.adapter == nil {
		return parser.Unsupported
	}
	return r.adapter.Dialect()
}

// Load (re)discovers the tests of the executable, replacing the tree.
// On failure the Runner is left without a usable tree.
func (r *Runner) Load() error {
	if r.IsRunning() {
		return ErrRunning
	}

	r.adapter = nil
	r.tree.Reset()

	adapter, err := r.newAdapter(r.path, r)
	if err != nil {
		return err
	}

	cmd := adapter.Command()
	args := append(append([]string{}, cmd.Args...), adapter.ListArgs()...)
	proc, err := process.Start(cmd.Path, args...)
	if err != nil {
		return fmt.Errorf("list tests: %w", err)
	}

	rootName := filepath.Base(r.path)
	if err := adapter.Load(r.tree, proc.Stdout(), rootName); err != nil {
		proc.Kill()
		proc.Wait()
		r.tree.Reset()
		return fmt.Errorf("list tests of %s: %w", rootName, err)
	}
	proc.Wait()

	if r.tree.Empty() {
		return fmt.Errorf("%s: %w", rootName, parser.ErrNoTestCases)
	}
	r.tree.Traverse(&tree.PathNamer{})

	r.adapter = adapter
	return nil
}

// Tree returns the discovered tree. It must not be modified during a run.
func (r *Runner) Tree() *tree.Tree {
	return r.tree
}

// TestUnit returns a copy of the unit with the given id
func (r *Runner) TestUnit(id int) (domain.TestUnit, error) {
	return r.tree.Unit(id)
}

// TraverseTestTree visits every discovered unit
func (r *Runner) TraverseTestTree(v tree.Visitor) {
	r.tree.Traverse(v)
}

// TraverseTestTreeID visits the subtree of the unit with the given id
func (r *Runner) TraverseTestTreeID(id int, v tree.Visitor) error {
	return r.tree.TraverseID(id, v)
}

// CountTestCases returns the number of cases in the subtree of id
func (r *Runner) CountTestCases(id int) (int, error) {
	var c tree.CaseCounter
	if err := r.tree.TraverseID(id, &c); err != nil {
		return 0, err
	}
	return c.Count, nil
}

// EnableTestUnit sets the enabled flag of a single unit
func (r *Runner) EnableTestUnit(id int, enable bool) error {
	if r.IsRunning() {
		return ErrRunning
	}
	return r.tree.Enable(id, enable)
}

// SelectSingle enables only the unit with the given id, its subtree and its ancestors
func (r *Runner) SelectSingle(id int) error {
	return r.selectUnits(func() error {
		if _, err := r.tree.Find(id); err != nil {
			return err
		}
		r.tree.Traverse(tree.NewSingleSelector(id))
		return nil
	})
}

// SelectAll enables every unit
func (r *Runner) SelectAll() error {
	return r.selectUnits(func() error {
		r.tree.Traverse(tree.AllSelector{})
		return nil
	})
}

// SelectChecked sets every unit's enabled flag from checked
func (r *Runner) SelectChecked(checked func(id int) bool) error {
	return r.selectUnits(func() error {
		r.tree.Traverse(tree.CheckedSelector{Checked: checked})
		return nil
	})
}

// SelectMatching enables the cases whose full name satisfies match
func (r *Runner) SelectMatching(match func(fullName string) bool) error {
	return r.selectUnits(func() error {
		r.tree.Traverse(&tree.MatchSelector{Match: match})
		return nil
	})
}

func (r *Runner) selectUnits(fn func() error) error {
	if r.IsRunning() {
		return ErrRunning
	}
	return fn()
}

// EnabledOptions returns the options the loaded dialect understands.
// Repeat is always available and turns WaitForDebugger off.
func (r *Runner) EnabledOptions(options domain.RunOptions) domain.RunOptions {
	enabled := options & domain.Repeat
	if r.adapter != nil {
		enabled |= r.adapter.EnabledOptions(options)
	}
	if enabled.Has(domain.Repeat) {
		enabled &^= domain.WaitForDebugger
	}
	return enabled
}

// IsRunning reports whether a run has been started and not yet waited for
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done != nil
}

// Run starts the enabled tests on a worker goroutine. It does nothing while
// a run is active.
func (r *Runner) Run(level domain.LogLevel, options domain.RunOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		return nil
	}
	if r.adapter == nil || r.tree.Empty() {
		return ErrNotLoaded
	}

	options = r.EnabledOptions(options)
	args := r.adapter.BuildArgs(r.tree, level, options)

	proc, err := r.startProcess(args)
	if err != nil {
		return err
	}

	r.proc = proc
	r.repeat = options.Has(domain.Repeat)
	r.repeatArgs = args
	r.done = make(chan struct{})
	go r.runTest(r.done)
	return nil
}

// startProcess must be called with r.mu held
func (r *Runner) startProcess(args []string) (*process.Process, error) {
	cmd := r.adapter.Command()
	return process.Start(cmd.Path, append(append([]string{}, cmd.Args...), args...)...)
}

// Abort stops the run: repeating ends and the live process is killed.
// It does not wait for the worker.
func (r *Runner) Abort() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.repeat = false
	if r.proc != nil {
		r.proc.Kill()
	}
}

// Wait blocks until the worker goroutine has finished
func (r *Runner) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	if done == nil {
		return
	}
	<-done

	r.mu.Lock()
	if r.done == done {
		r.done = nil
		r.proc = nil
	}
	r.mu.Unlock()
}

// Continue releases a process paused at the debugger prompt
func (r *Runner) Continue() error {
	r.mu.Lock()
	proc := r.proc
	r.mu.Unlock()

	if proc == nil {
		return nil
	}
	return proc.WriteStdin([]byte("\n"))
}

// Close aborts any active run and waits for it
func (r *Runner) Close() {
	r.Abort()
	r.Wait()
}

func (r *Runner) currentProcess() *process.Process {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.proc
}

func (r *Runner) clearRepeat() {
	r.mu.Lock()
	r.repeat = false
	r.mu.Unlock()
}

// respawn starts the next iteration if repeating is still requested
func (r *Runner) respawn() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.repeat {
		return false, nil
	}
	proc, err := r.startProcess(r.repeatArgs)
	if err != nil {
		r.repeat = false
		return false, err
	}
	r.proc = proc
	return true, nil
}

func (r *Runner) runTest(done chan struct{}) {
	defer close(done)

	r.observer.TestStarted()
	defer r.observer.TestFinished()

	var proc *process.Process
	defer func() {
		if v := recover(); v != nil {
			r.clearRepeat()
			if proc != nil {
				proc.Kill()
				proc.Wait()
			}
			r.observer.ExceptionCaught(fmt.Sprint(v))
			r.observer.TestFinish()
		}
	}()

	for {
		proc = r.currentProcess()
		if err := r.runIteration(proc); err != nil {
			r.clearRepeat()
			proc.Kill()
			proc.Wait()
			r.observer.ExceptionCaught(err.Error())
			r.observer.TestFinish()
			return
		}

		again, err := r.respawn()
		if err != nil {
			r.observer.ExceptionCaught(err.Error())
			return
		}
		if !again {
			return
		}
	}
}

func (r *Runner) runIteration(proc *process.Process) error {
	r.iterationFinished = false
	r.observer.TestMessage(domain.Info, fmt.Sprintf("Process %d: %s, started", proc.PID(), proc.Name()))

	var filterErr error
	err := parser.ReadLines(proc.Stdout(), func(line string) error {
		filterErr = r.adapter.FilterMessage(line)
		return filterErr
	})
	if filterErr != nil {
		return filterErr
	}
	if err != nil {
		return fmt.Errorf("read output of %s: %w", proc.Name(), err)
	}

	r.waitForProcess(proc)
	return nil
}

func (r *Runner) waitForProcess(proc *process.Process) {
	proc.Wait()
	r.observer.TestMessage(domain.Info, fmt.Sprintf("Process %d: %s, finished", proc.PID(), proc.Name()))

	if !r.iterationFinished {
		r.OnTestAssertion(false)
		r.observer.TestMessage(domain.Fatal, "Unexpected end of test process")
	}
	r.observer.TestFinish()
}

// unit returns the tree unit for id, or a case built from name for units
// that only appeared while running
func (r *Runner) unit(id int, name string) domain.TestUnit {
	if u, err := r.tree.Unit(id); err == nil {
		return u
	}
	u := domain.NewCase(id, name)
	u.FullName = name
	return u
}

// OnWaiting implements parser.Handler
func (r *Runner) OnWaiting() {
	proc := r.currentProcess()
	if proc == nil {
		return
	}
	r.observer.TestWaiting(proc.Name(), proc.PID())
}

// OnTestIterationStart implements parser.Handler
func (r *Runner) OnTestIterationStart(count int) {
	r.observer.TestStart(count)
}

// OnTestIterationFinish implements parser.Handler
func (r *Runner) OnTestIterationFinish() {
	r.iterationFinished = true
}

// OnTestUnitStart implements parser.Handler
func (r *Runner) OnTestUnitStart(id int, name string) {
	r.observer.TestUnitStart(r.unit(id, name))
}

// OnTestUnitFinish implements parser.Handler
func (r *Runner) OnTestUnitFinish(id int, name string, elapsed time.Duration) {
	r.observer.TestUnitFinish(r.unit(id, name), elapsed)
}

// OnTestUnitSkipped implements parser.Handler
func (r *Runner) OnTestUnitSkipped(id int, name string) {
	r.observer.TestUnitSkipped(r.unit(id, name))
}

// OnTestUnitAborted implements parser.Handler
func (r *Runner) OnTestUnitAborted(id int, name string) {
	r.clearRepeat()
	r.observer.TestUnitAborted(r.unit(id, name))
}

// OnTestAssertion implements parser.Handler
func (r *Runner) OnTestAssertion(passed bool) {
	if !passed {
		r.clearRepeat()
	}
	r.observer.AssertionResult(passed)
}

// OnTestExceptionCaught implements parser.Handler
func (r *Runner) OnTestExceptionCaught(what string) {
	r.clearRepeat()
	r.observer.ExceptionCaught(what)
}

// OnTestMessage implements parser.Handler
func (r *Runner) OnTestMessage(severity domain.Severity, text string) {
	r.observer.TestMessage(severity, text)
}
