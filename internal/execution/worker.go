package execution

import (
	"context"
	"sync"
	"time"

	"testexe/internal/domain"
)

// Progress receives the progress of a batch
type Progress interface {
	Update(completed, passed, failed int)
	Finish()
}

// BatchResult is the outcome of one executable processed by a WorkerPool
type BatchResult struct {
	Path    string
	Dialect string
	Cases   int
	Report  *domain.RunReport // Set when the executable was run
	Err     error
}

// Success reports whether the executable was loaded and, if run, passed
func (r BatchResult) Success() bool {
	return r.Err == nil && (r.Report == nil || r.Report.Success())
}

func (r BatchResult) counts() (passed, failed int) {
	switch {
	case r.Err != nil:
		return 0, 1
	case r.Report != nil:
		return r.Report.Meta.PassedTestCases, r.Report.Meta.FailedTestCases
	default:
		return r.Cases, 0
	}
}

// Task processes one executable
type Task func(path string, workerID int) BatchResult

// InventoryTask loads each executable and counts its test cases
func InventoryTask(opts ...Option) Task {
	return func(path string, _ int) BatchResult {
		result := BatchResult{Path: path}
		r, err := NewRunner(path, nil, opts...)
		if err != nil {
			result.Err = err
			return result
		}
		result.Dialect = r.Dialect().String()
		result.Cases = r.Tree().CaseCount()
		return result
	}
}

// RunTask loads each executable and runs all of its tests
func RunTask(level domain.LogLevel, options domain.RunOptions, opts ...Option) Task {
	return func(path string, _ int) BatchResult {
		result := BatchResult{Path: path}
		collector := NewCollector(path, "", options)
		r, err := NewRunner(path, collector, opts...)
		if err != nil {
			result.Err = err
			return result
		}
		result.Dialect = r.Dialect().String()
		result.Cases = r.Tree().CaseCount()

		// A batch has nobody to answer the debugger prompt
		options &^= domain.WaitForDebugger
		if err := r.Run(level, options); err != nil {
			result.Err = err
			return result
		}
		r.Wait()

		report := collector.Report()
		report.Meta.Dialect = result.Dialect
		result.Report = &report
		return result
	}
}

// WorkerPool processes executables in parallel
type WorkerPool struct {
	processors int
	task       Task
	progress   Progress
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(processors int, task Task) *WorkerPool {
	return &WorkerPool{processors: processors, task: task}
}

// SetProgress sets the progress reporter for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Execute processes all executables (no fail-fast).
func (wp *WorkerPool) Execute(paths []string) ([]BatchResult, time.Duration, error) {
	return wp.ExecuteWithOptions(paths, false)
}

// ExecuteWithOptions processes executables with optional fail-fast (stop on first failure).
func (wp *WorkerPool) ExecuteWithOptions(paths []string, failFast bool) ([]BatchResult, time.Duration, error) {
	if len(paths) == 0 {
		return nil, 0, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := make(chan string)
	results := make(chan BatchResult, len(paths))

	go func() {
		defer close(queue)
		for _, path := range paths {
			select {
			case <-ctx.Done():
				return
			case queue <- path:
			}
		}
	}()

	var mu sync.Mutex
	var completed, passedCases, failedCases int
	startTime := time.Now()
	workerCount := wp.processors
	if workerCount <= 0 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for i := 1; i <= workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for path := range queue {
				result := wp.task(path, workerID)
				results <- result

				mu.Lock()
				completed++
				p, f := result.counts()
				passedCases += p
				failedCases += f
				if wp.progress != nil {
					wp.progress.Update(completed, passedCases, failedCases)
				}
				if failFast && !result.Success() {
					cancel()
				}
				mu.Unlock()
			}
		}(i)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var allResults []BatchResult
	for result := range results {
		allResults = append(allResults, result)
	}
	if wp.progress != nil {
		wp.progress.Finish()
	}
	return allResults, time.Since(startTime), nil
}
