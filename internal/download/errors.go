package download

import (
	"errors"
	"fmt"
)

// ErrInvalidBatchSize is returned by Scheduler.Run for a batch size below 1.
var ErrInvalidBatchSize = errors.New("batch size must be at least 1")

// ManifestFetchError reports that the manifest script could not be retrieved.
// The run continues with an empty catalog.
type ManifestFetchError struct {
	URL string
	Err error
}

func (e *ManifestFetchError) Error() string {
	return fmt.Sprintf("fetch manifest %s: %v", e.URL, e.Err)
}

func (e *ManifestFetchError) Unwrap() error {
	return e.Err
}

// FetchError reports a page that could not be downloaded. It only affects
// its own task.
type FetchError struct {
	Source      string
	Destination string
	Err         error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("download %s to %s: %v", e.Source, e.Destination, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
