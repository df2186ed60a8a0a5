// Package config holds the user settings of scan-downloader.
//
// Settings are stored as a JSON object. A missing file yields
// DefaultSettings, and keys absent from the file keep their default value,
// so a config file only needs the options it changes:
//
//	{"downloads_path": "/srv/scans", "batch_size": 8, "convert_to_jpeg": true}
//
// Validate reports every invalid field at once. ToClientOptions derives the
// HTTP client configuration (timeouts, retries, rate limit, chunk size).
package config
