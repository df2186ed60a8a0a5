package download

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/handiism/scan-downloader/internal/model"
	"github.com/handiism/scan-downloader/internal/progress"
)

// Transport is the part of http.Client the Fetcher needs.
type Transport interface {
	GetFileSize(ctx context.Context, url string) (int64, error)
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (int64, error)
}

// Fetcher downloads a single page.
type Fetcher struct {
	client   Transport
	observer progress.Observer
	logger   zerolog.Logger
}

// NewFetcher creates a Fetcher. A nil observer discards progress.
func NewFetcher(client Transport, observer progress.Observer, logger zerolog.Logger) *Fetcher {
	if observer == nil {
		observer = progress.Nop{}
	}
	return &Fetcher{client: client, observer: observer, logger: logger}
}

// Fetch downloads task.Source to task.Destination.
//
// The expected size is looked up first with a HEAD request; it is only used
// for progress and for a size check that logs a warning on mismatch. Any
// failure of the transfer itself is returned as a *FetchError in the result.
// A partially written destination is left in place.
func (f *Fetcher) Fetch(ctx context.Context, task model.DownloadTask) model.TaskResult {
	expected, err := f.client.GetFileSize(ctx, task.Source)
	if err != nil {
		f.logger.Debug().Err(err).Str("url", task.Source).Msg("size unknown")
		expected = -1
	}
	f.observer.FileStarted(task.Destination, expected)

	n, err := f.client.DownloadFile(ctx, task.Source, task.Destination, func(written, total int64) {
		if total < 0 {
			total = expected
		}
		f.observer.FileProgress(task.Destination, written, total)
	})
	if err != nil {
		ferr := &FetchError{Source: task.Source, Destination: task.Destination, Err: err}
		f.observer.FileFinished(task.Destination, ferr)
		return model.TaskResult{Task: task, Bytes: n, Err: ferr}
	}

	if expected >= 0 && n != expected {
		f.logger.Warn().
			Str("destination", task.Destination).
			Int64("expected", expected).
			Int64("received", n).
			Msg("size mismatch")
	}

	f.observer.FileFinished(task.Destination, nil)
	return model.TaskResult{Task: task, Bytes: n}
}
