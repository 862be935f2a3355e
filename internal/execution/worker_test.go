package execution

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testexe/internal/domain"
)

type progressLog struct {
	mu       sync.Mutex
	updates  int
	last     [3]int
	finished bool
}

func (p *progressLog) Update(completed, passed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates++
	p.last = [3]int{completed, passed, failed}
}

func (p *progressLog) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = true
}

func TestWorkerPool_Execute(t *testing.T) {
	task := func(path string, _ int) BatchResult {
		if path == "broken" {
			return BatchResult{Path: path, Err: errors.New("unsupported")}
		}
		return BatchResult{Path: path, Cases: 2}
	}
	progress := &progressLog{}
	pool := NewWorkerPool(2, task)
	pool.SetProgress(progress)

	results, _, err := pool.Execute([]string{"a", "broken", "b"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	var paths []string
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{"a", "b", "broken"}, paths)

	assert.Equal(t, 3, progress.updates)
	assert.Equal(t, [3]int{3, 4, 1}, progress.last)
	assert.True(t, progress.finished)
}

func TestWorkerPool_FailFast(t *testing.T) {
	task := func(path string, _ int) BatchResult {
		return BatchResult{Path: path, Err: errors.New("failed")}
	}
	pool := NewWorkerPool(1, task)

	paths := make([]string, 20)
	for i := range paths {
		paths[i] = string(rune('a' + i))
	}
	results, _, err := pool.ExecuteWithOptions(paths, true)
	require.NoError(t, err)
	assert.Less(t, len(results), len(paths))
}

func TestWorkerPool_Empty(t *testing.T) {
	results, _, err := NewWorkerPool(4, nil).Execute(nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBatchResult_Success(t *testing.T) {
	passed := &domain.RunReport{Meta: domain.RunReportMeta{PassedTestCases: 3}}
	failed := &domain.RunReport{Meta: domain.RunReportMeta{FailedTestCases: 1}}

	assert.True(t, BatchResult{Cases: 3}.Success())
	assert.True(t, BatchResult{Report: passed}.Success())
	assert.False(t, BatchResult{Report: failed}.Success())
	assert.False(t, BatchResult{Err: errors.New("x")}.Success())
}
