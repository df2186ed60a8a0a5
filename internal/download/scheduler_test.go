package download

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/scan-downloader/internal/model"
)

type mockFetcher struct {
	fetchFunc func(ctx context.Context, task model.DownloadTask) model.TaskResult
	calls     atomic.Int32
}

func (m *mockFetcher) Fetch(ctx context.Context, task model.DownloadTask) model.TaskResult {
	m.calls.Add(1)
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, task)
	}
	return model.TaskResult{Task: task}
}

type batchEvent struct {
	index, done, size int
}

type mockObserver struct {
	mu       sync.Mutex
	started  []batchEvent
	progress []batchEvent
	finished []int
}

func (o *mockObserver) FileStarted(string, int64) {}
func (o *mockObserver) FileProgress(string, int64, int64) {}
func (o *mockObserver) FileFinished(string, error) {}

func (o *mockObserver) BatchStarted(_ string, index, count, size int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, batchEvent{index: index, done: count, size: size})
}

func (o *mockObserver) BatchProgress(index, done, size int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress = append(o.progress, batchEvent{index: index, done: done, size: size})
}

func (o *mockObserver) BatchFinished(index int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, index)
}

func makeTasks(n int) []model.DownloadTask {
	tasks := make([]model.DownloadTask, n)
	for i := range tasks {
		tasks[i] = model.DownloadTask{
			Source:      fmt.Sprintf("https://cdn.example.com/%d.jpg", i),
			Destination: fmt.Sprintf("/tmp/ch/%d.jpg", i),
		}
	}
	return tasks
}

func taskIndex(task model.DownloadTask) int {
	var i int
	_, _ = fmt.Sscanf(task.Destination, "/tmp/ch/%d.jpg", &i)
	return i
}

func TestScheduler_BatchesAreSequentialAndBounded(t *testing.T) {
	tests := []struct {
		tasks, batchSize, wantBatches int
	}{
		{tasks: 7, batchSize: 3, wantBatches: 3},
		{tasks: 6, batchSize: 3, wantBatches: 2},
		{tasks: 1, batchSize: 5, wantBatches: 1},
		{tasks: 5, batchSize: 1, wantBatches: 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d tasks by %d", tt.tasks, tt.batchSize), func(t *testing.T) {
			var active, peak, completed atomic.Int32
			var violations atomic.Int32

			fetcher := &mockFetcher{fetchFunc: func(_ context.Context, task model.DownloadTask) model.TaskResult {
				// every task of the previous batches must be terminal already
				batch := taskIndex(task) / tt.batchSize
				if int(completed.Load()) < batch*tt.batchSize {
					violations.Add(1)
				}

				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				active.Add(-1)
				completed.Add(1)
				return model.TaskResult{Task: task, Bytes: 10}
			}}
			observer := &mockObserver{}

			report, err := NewScheduler(fetcher, observer, zerolog.Nop()).Run(context.Background(), "Chapter 1", makeTasks(tt.tasks), tt.batchSize)

			require.NoError(t, err)
			assert.Equal(t, tt.wantBatches, report.Batches)
			assert.Len(t, report.Succeeded, tt.tasks)
			assert.Empty(t, report.Failed)
			assert.Equal(t, int64(10*tt.tasks), report.Bytes)
			assert.Equal(t, int32(tt.tasks), fetcher.calls.Load())
			assert.Zero(t, violations.Load())
			assert.LessOrEqual(t, int(peak.Load()), tt.batchSize)

			require.Len(t, observer.started, tt.wantBatches)
			assert.Len(t, observer.finished, tt.wantBatches)
			assert.Len(t, observer.progress, tt.tasks)
			for i, ev := range observer.started {
				assert.Equal(t, i, ev.index)
				assert.Equal(t, tt.wantBatches, ev.done)
			}
		})
	}
}

func TestScheduler_FailuresAreIsolated(t *testing.T) {
	fetcher := &mockFetcher{fetchFunc: func(_ context.Context, task model.DownloadTask) model.TaskResult {
		if i := taskIndex(task); i == 1 || i == 4 {
			return model.TaskResult{Task: task, Err: &FetchError{Source: task.Source, Destination: task.Destination, Err: errors.New("HTTP 404")}}
		}
		return model.TaskResult{Task: task, Bytes: 1}
	}}

	report, err := NewScheduler(fetcher, nil, zerolog.Nop()).Run(context.Background(), "", makeTasks(6), 2)

	require.NoError(t, err)
	assert.Equal(t, int32(6), fetcher.calls.Load())
	assert.Equal(t, 3, report.Batches)
	assert.Len(t, report.Succeeded, 4)
	require.Len(t, report.Failed, 2)

	var failed []int
	for _, res := range report.Failed {
		var ferr *FetchError
		require.True(t, errors.As(res.Err, &ferr))
		failed = append(failed, taskIndex(res.Task))
	}
	assert.ElementsMatch(t, []int{1, 4}, failed)
}

func TestScheduler_PanicBecomesFailure(t *testing.T) {
	fetcher := &mockFetcher{fetchFunc: func(_ context.Context, task model.DownloadTask) model.TaskResult {
		if taskIndex(task) == 0 {
			panic("nil page")
		}
		return model.TaskResult{Task: task}
	}}

	report, err := NewScheduler(fetcher, nil, zerolog.Nop()).Run(context.Background(), "", makeTasks(3), 3)

	require.NoError(t, err)
	assert.Len(t, report.Succeeded, 2)
	require.Len(t, report.Failed, 1)
	assert.True(t, strings.Contains(report.Failed[0].Err.Error(), "panic: nil page"))
}

func TestScheduler_EmptyTaskList(t *testing.T) {
	fetcher := &mockFetcher{}
	observer := &mockObserver{}

	report, err := NewScheduler(fetcher, observer, zerolog.Nop()).Run(context.Background(), "", nil, 4)

	require.NoError(t, err)
	assert.Equal(t, BatchReport{}, report)
	assert.Zero(t, fetcher.calls.Load())
	assert.Empty(t, observer.started)
}

func TestScheduler_InvalidBatchSize(t *testing.T) {
	for _, size := range []int{0, -3} {
		_, err := NewScheduler(&mockFetcher{}, nil, zerolog.Nop()).Run(context.Background(), "", makeTasks(2), size)
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
	}
}

func TestScheduler_CancelStopsBetweenBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &mockFetcher{fetchFunc: func(_ context.Context, task model.DownloadTask) model.TaskResult {
		cancel()
		return model.TaskResult{Task: task}
	}}

	report, err := NewScheduler(fetcher, nil, zerolog.Nop()).Run(ctx, "", makeTasks(6), 2)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, report.Batches)
	assert.Len(t, report.Succeeded, 2)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}
