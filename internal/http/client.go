package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	// DefaultUserAgent is sent with every request. The image hosts answer
	// 403 to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0"

	// DefaultChunkSize is the copy buffer size used by DownloadFile.
	DefaultChunkSize = 8192
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	// UserAgent overrides DefaultUserAgent.
	UserAgent string

	// Timeout bounds each request, including reading the body. Zero means no timeout.
	Timeout time.Duration

	// MaxRetries is the number of retries after a transport error or a 429 response.
	MaxRetries int

	// RetryWait is the initial wait between retries.
	RetryWait time.Duration

	// RequestsPerSecond limits the request rate across all goroutines. Zero disables the limit.
	RequestsPerSecond float64

	// ChunkSize is the copy buffer size used by DownloadFile.
	ChunkSize int
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Status, e.URL)
}

// Client wraps HTTP operations with the catalogue site configuration.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout and retry handling
//   - Optional rate limiting shared by every request
//   - File download with progress tracking
//   - File size retrieval via HEAD requests
//
// A Client is safe for concurrent use.
type Client struct {
	rest      *resty.Client
	limiter   *rate.Limiter
	chunkSize int
}

// NewClient creates a new HTTP client.
func NewClient(opts Options) *Client {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	rc := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.MaxRetries).
		SetHeader("User-Agent", userAgent).
		SetLogger(disableLogger{}).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || (r != nil && r.StatusCode() == http.StatusTooManyRequests)
		})
	if opts.RetryWait > 0 {
		rc.SetRetryWaitTime(opts.RetryWait)
	}

	c := &Client{rest: rc, chunkSize: chunkSize}

	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return c.limiter.Wait(r.Context())
		})
	}

	return c
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes, -1 when unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails after retries
//   - The response status is not 2xx (*StatusError)
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.rest.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode(), Status: resp.Status()}
	}
	return resp.Body(), nil
}

// GetString performs a GET request and returns the response body as a string.
//
// This is a convenience wrapper around Get for fetching text content like
// the episodes.js manifest.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetFileSize returns the size of a file at the given URL via HEAD request.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 2xx
//   - The server doesn't return a Content-Length header
func (c *Client) GetFileSize(ctx context.Context, url string) (int64, error) {
	resp, err := c.rest.R().SetContext(ctx).Head(url)
	if err != nil {
		return 0, err
	}
	if !resp.IsSuccess() {
		return 0, &StatusError{URL: url, StatusCode: resp.StatusCode(), Status: resp.Status()}
	}

	if resp.RawResponse.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", url)
	}

	return resp.RawResponse.ContentLength, nil
}

// DownloadFile streams a file to destPath and returns the number of bytes written.
//
// The file is created (or truncated if it exists) once the server answered
// with a 2xx status. The body is copied in chunks of Options.ChunkSize bytes;
// onProgress, when not nil, is called after every chunk with the cumulative
// bytes written and the Content-Length (-1 when unknown).
//
// On a failure after the file was created the partial file is left in place.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (int64, error) {
	resp, err := c.rest.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return 0, err
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		return 0, &StatusError{URL: url, StatusCode: resp.StatusCode(), Status: resp.Status()}
	}

	file, err := os.Create(destPath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	pw := &ProgressWriter{
		Writer:   file,
		Total:    resp.RawResponse.ContentLength,
		OnUpdate: onProgress,
	}

	// The anonymous structs hide ReaderFrom/WriterTo so the copy goes
	// through buf, one chunk at a time.
	buf := make([]byte, c.chunkSize)
	written, err := io.CopyBuffer(struct{ io.Writer }{pw}, struct{ io.Reader }{body}, buf)
	if err != nil {
		return written, err
	}

	return written, file.Close()
}

type disableLogger struct{}

func (d disableLogger) Errorf(string, ...interface{}) {}
func (d disableLogger) Warnf(string, ...interface{}) {}
func (d disableLogger) Debugf(string, ...interface{}) {}
