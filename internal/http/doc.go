// Package http provides the HTTP client used to reach the catalogue site
// and its image hosts.
//
// The Client in this package handles:
//   - User-Agent headers (the image hosts reject Go's default agent)
//   - Retries on transport errors and 429 responses
//   - An optional global request rate limit
//   - Streaming file downloads in bounded chunks with progress tracking
//   - File size retrieval via HEAD requests
//
// # Basic Usage
//
//	client := http.NewClient(http.Options{Timeout: time.Minute})
//
//	// Fetch the manifest script
//	script, err := client.GetString(ctx, work.ManifestURL)
//
//	// Download a page with progress callback
//	n, err := client.DownloadFile(ctx, pageURL, "/path/to/0.jpg", func(written, total int64) {
//	    fmt.Printf("%d/%d\n", written, total)
//	})
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
