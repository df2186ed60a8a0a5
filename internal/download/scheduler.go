package download

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/scan-downloader/internal/model"
	"github.com/handiism/scan-downloader/internal/progress"
)

// TaskFetcher performs one download task. Fetcher is the production implementation.
type TaskFetcher interface {
	Fetch(ctx context.Context, task model.DownloadTask) model.TaskResult
}

// BatchReport summarizes one Scheduler.Run.
type BatchReport struct {
	Batches   int
	Succeeded []model.DownloadTask
	Failed    []model.TaskResult
	Bytes     int64
}

// Scheduler runs download tasks in sequential batches of concurrent workers.
type Scheduler struct {
	fetcher  TaskFetcher
	observer progress.Observer
	logger   zerolog.Logger
}

// NewScheduler creates a Scheduler. A nil observer discards progress.
func NewScheduler(fetcher TaskFetcher, observer progress.Observer, logger zerolog.Logger) *Scheduler {
	if observer == nil {
		observer = progress.Nop{}
	}
	return &Scheduler{fetcher: fetcher, observer: observer, logger: logger}
}

// Run downloads tasks in contiguous batches of at most batchSize tasks.
//
// Batches run one after another: batch k+1 starts only after every task of
// batch k reached a terminal state. The tasks of a batch run concurrently.
// A failed task is logged and recorded in the report; it never stops its
// siblings or the following batches.
//
// The context is checked between batches. When it is done, Run returns the
// report so far together with ctx.Err().
func (s *Scheduler) Run(ctx context.Context, label string, tasks []model.DownloadTask, batchSize int) (BatchReport, error) {
	if batchSize < 1 {
		return BatchReport{}, fmt.Errorf("%w, got %d", ErrInvalidBatchSize, batchSize)
	}

	var report BatchReport
	batches := model.SplitBatches(tasks, batchSize)
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		s.runBatch(ctx, label, i, len(batches), batch, batchSize, &report)
	}

	return report, nil
}

func (s *Scheduler) runBatch(ctx context.Context, label string, index, count int, batch []model.DownloadTask, batchSize int, report *BatchReport) {
	s.observer.BatchStarted(label, index, count, len(batch))

	results := make(chan model.TaskResult, len(batch))

	var g errgroup.Group
	g.SetLimit(min(batchSize, len(batch)))
	for _, task := range batch {
		g.Go(func() error {
			results <- s.fetch(ctx, task)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	done := 0
	for res := range results {
		done++
		report.Bytes += res.Bytes
		if res.OK() {
			report.Succeeded = append(report.Succeeded, res.Task)
		} else {
			report.Failed = append(report.Failed, res)
			s.logger.Error().
				Err(res.Err).
				Str("destination", res.Task.Destination).
				Msg("download failed")
		}
		s.observer.BatchProgress(index, done, len(batch))
	}

	report.Batches++
	s.observer.BatchFinished(index)
}

// fetch turns a panicking fetcher into a failed result.
func (s *Scheduler) fetch(ctx context.Context, task model.DownloadTask) (res model.TaskResult) {
	defer func() {
		if r := recover(); r != nil {
			res = model.TaskResult{
				Task: task,
				Err: &FetchError{
					Source:      task.Source,
					Destination: task.Destination,
					Err:         fmt.Errorf("panic: %v", r),
				},
			}
		}
	}()
	return s.fetcher.Fetch(ctx, task)
}
