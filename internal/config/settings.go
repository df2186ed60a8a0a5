package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/scan-downloader/internal/http"
)

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath string `json:"downloads_path"`
	BatchSize     int    `json:"batch_size"`
	ChunkSize     int    `json:"chunk_size"`

	// HTTP settings
	MaxRetries        int     `json:"max_retries"`
	RetryCooldown     float64 `json:"retry_cooldown"`  // seconds
	RequestTimeout    float64 `json:"request_timeout"` // seconds, 0 disables
	RequestsPerSecond float64 `json:"requests_per_second"`
	UserAgent         string  `json:"user_agent"`

	// Page settings
	ConvertToJPEG bool `json:"convert_to_jpeg"`
	MaxPageHeight int  `json:"max_page_height"` // 0 keeps the original height
	JPEGQuality   int  `json:"jpeg_quality"`

	// Archive settings
	CreateArchive    bool   `json:"create_archive"`
	ArchiveExtension string `json:"archive_extension"`

	// Log settings
	LogFile string `json:"log_file"`
	Verbose bool   `json:"verbose"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		DownloadsPath: ".",
		BatchSize:     5,
		ChunkSize:     http.DefaultChunkSize,

		MaxRetries:        3,
		RetryCooldown:     0.5,
		RequestTimeout:    60,
		RequestsPerSecond: 0,
		UserAgent:         http.DefaultUserAgent,

		ConvertToJPEG: false,
		MaxPageHeight: 0,
		JPEGQuality:   90,

		CreateArchive:    true,
		ArchiveExtension: "cbz",

		LogFile: "download.log",
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports every setting that would make a run impossible.
func (s *Settings) Validate() error {
	var errs []error
	if s.DownloadsPath == "" {
		errs = append(errs, errors.New("downloads_path must not be empty"))
	}
	if s.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("batch_size must be at least 1, got %d", s.BatchSize))
	}
	if s.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("chunk_size must be at least 1, got %d", s.ChunkSize))
	}
	if s.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max_retries must not be negative, got %d", s.MaxRetries))
	}
	if s.RequestTimeout < 0 || s.RetryCooldown < 0 || s.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("request_timeout, retry_cooldown and requests_per_second must not be negative"))
	}
	if s.MaxPageHeight < 0 {
		errs = append(errs, fmt.Errorf("max_page_height must not be negative, got %d", s.MaxPageHeight))
	}
	if s.JPEGQuality < 1 || s.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("jpeg_quality must be within 1..100, got %d", s.JPEGQuality))
	}
	if s.CreateArchive && s.ArchiveExtension == "" {
		errs = append(errs, errors.New("archive_extension must not be empty when create_archive is set"))
	}
	return errors.Join(errs...)
}

// ToClientOptions converts settings to http.Options.
func (s *Settings) ToClientOptions() http.Options {
	return http.Options{
		UserAgent:         s.UserAgent,
		Timeout:           seconds(s.RequestTimeout),
		MaxRetries:        s.MaxRetries,
		RetryWait:         seconds(s.RetryCooldown),
		RequestsPerSecond: s.RequestsPerSecond,
		ChunkSize:         s.ChunkSize,
	}
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
