package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/scan-downloader/internal/archive"
	"github.com/handiism/scan-downloader/internal/config"
	"github.com/handiism/scan-downloader/internal/http"
	ioutils "github.com/handiism/scan-downloader/internal/io"
	"github.com/handiism/scan-downloader/internal/manifest"
	"github.com/handiism/scan-downloader/internal/model"
	"github.com/handiism/scan-downloader/internal/progress"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// RunSummary is the outcome of StartDownloads.
type RunSummary struct {
	Chapters  int
	Batches   int
	Succeeded int
	Failed    []model.TaskResult
	Bytes     int64

	// Normalized counts pages rewritten as JPEG.
	Normalized int

	Archives        []string
	PackagingErrors []*archive.PackagingError
}

// ErrNotInitialized is returned by StartDownloads before a successful Initialize.
var ErrNotInitialized = errors.New("manager not initialized")

// Manager coordinates the download of one work.
type Manager struct {
	settings     *config.Settings
	logger       zerolog.Logger
	httpClient   *http.Client
	parser       *manifest.Parser
	scheduler    *Scheduler
	imageService *ioutils.ImageService
	packager     *archive.Packager
	stats        *progress.Stats

	work    *model.Work
	catalog model.Catalog

	totalFiles int32

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager.
//
// logger receives the structured log of the run, observer (may be nil)
// receives byte and batch progress and onProgress (may be nil) receives
// human-readable messages.
func NewManager(settings *config.Settings, logger zerolog.Logger, observer progress.Observer, onProgress func(ProgressEvent)) *Manager {
	stats := progress.NewStats()
	var obs progress.Observer = stats
	if observer != nil {
		obs = progress.Multi{stats, observer}
	}

	client := http.NewClient(settings.ToClientOptions())
	fetcher := NewFetcher(client, obs, logger)

	return &Manager{
		settings:     settings,
		logger:       logger,
		httpClient:   client,
		parser:       manifest.NewParser(),
		scheduler:    NewScheduler(fetcher, obs, logger),
		imageService: ioutils.NewImageService(settings.JPEGQuality),
		packager:     archive.NewPackager(settings.ArchiveExtension, logger),
		stats:        stats,
		onProgress:   onProgress,
	}
}

// Initialize resolves the work from its catalogue URL and loads its chapter catalog.
//
// Only an invalid URL is returned as an error. A manifest that cannot be
// fetched, or that holds no chapter, is logged and leaves an empty catalog.
func (m *Manager) Initialize(ctx context.Context, rootURL string) error {
	work, err := model.NewWork(rootURL, m.settings.DownloadsPath)
	if err != nil {
		return err
	}
	m.work = work
	m.catalog = nil
	logger := m.logger.With().Str("work", work.Name).Logger()

	logger.Info().Str("url", work.ManifestURL).Msg("fetching manifest")
	m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching manifest: %s", work.ManifestURL), Level: LevelVerbose})

	script, err := m.httpClient.GetString(ctx, work.ManifestURL)
	if err != nil {
		ferr := &ManifestFetchError{URL: work.ManifestURL, Err: err}
		logger.Error().Err(ferr).Msg("manifest unavailable")
		m.progress(ProgressEvent{Message: ferr.Error(), Level: LevelError})
		return nil
	}

	catalog, errs := m.parser.Parse(script)
	for _, perr := range errs {
		if errors.Is(perr, manifest.ErrNoBlocks) {
			logger.Warn().Str("url", work.ManifestURL).Msg("no chapters in manifest")
			m.progress(ProgressEvent{Message: fmt.Sprintf("No chapters found in %s", work.ManifestURL), Level: LevelWarning})
			continue
		}
		logger.Warn().Err(perr).Msg("skipped manifest declaration")
		m.progress(ProgressEvent{Message: perr.Error(), Level: LevelWarning})
	}

	catalog.AssignDirs()
	m.catalog = catalog
	m.totalFiles = int32(catalog.PageCount())

	logger.Info().Int("chapters", len(catalog)).Int("pages", catalog.PageCount()).Msg("manifest parsed")
	m.progress(ProgressEvent{Message: fmt.Sprintf("Found %s: %d chapters, %d pages", work.Name, len(catalog), catalog.PageCount()), Level: LevelInfo})

	return nil
}

// StartDownloads downloads every chapter of the catalog in order, then
// optionally packs each chapter into an archive.
//
// Page failures are isolated and listed in the summary. Errors are returned
// only when the output directories cannot be created, the settings are
// unusable, or ctx is done.
func (m *Manager) StartDownloads(ctx context.Context) (RunSummary, error) {
	var summary RunSummary
	if m.work == nil {
		return summary, ErrNotInitialized
	}

	if err := ioutils.EnsureDir(m.work.Path); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory: %v", err), Level: LevelError})
		return summary, fmt.Errorf("create work directory: %w", err)
	}

	for _, entry := range m.catalog {
		if err := m.downloadChapter(ctx, entry, &summary); err != nil {
			return summary, err
		}
	}

	if m.settings.CreateArchive {
		if err := m.packArchives(&summary); err != nil {
			return summary, err
		}
	}

	if len(summary.Failed) == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Successfully downloaded %s", m.work.Name), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s, %d pages failed", m.work.Name, len(summary.Failed)), Level: LevelWarning})
	}

	return summary, nil
}

func (m *Manager) downloadChapter(ctx context.Context, entry model.CatalogEntry, summary *RunSummary) error {
	dir := m.work.ChapterPath(entry.Dir)
	if err := ioutils.EnsureDir(dir); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory: %v", err), Level: LevelError})
		return fmt.Errorf("create chapter directory: %w", err)
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloading chapter %s (%d pages)", entry.Dir, len(entry.URLs)), Level: LevelVerbose})

	report, err := m.scheduler.Run(ctx, "Chapter "+entry.Dir, entry.Tasks(dir), m.settings.BatchSize)

	summary.Chapters++
	summary.Batches += report.Batches
	summary.Succeeded += len(report.Succeeded)
	summary.Failed = append(summary.Failed, report.Failed...)
	summary.Bytes += report.Bytes

	for _, res := range report.Failed {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", filepath.Base(res.Task.Destination), res.Err), Level: LevelError})
	}

	if m.settings.ConvertToJPEG && len(report.Succeeded) > 0 {
		summary.Normalized += m.normalizePages(ctx, report.Succeeded)
	}

	if err != nil {
		return err
	}

	if len(report.Failed) == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded chapter %s", entry.Dir), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished chapter %s, %d pages failed", entry.Dir, len(report.Failed)), Level: LevelWarning})
	}
	return nil
}

// normalizePages converts pages to JPEG with the batch size as worker limit.
// Failures only log a warning.
func (m *Manager) normalizePages(ctx context.Context, tasks []model.DownloadTask) int {
	var converted atomic.Int32

	var g errgroup.Group
	g.SetLimit(max(m.settings.BatchSize, 1))
	for _, task := range tasks {
		g.Go(func() error {
			changed, err := m.imageService.NormalizePage(ctx, task.Destination, m.settings.MaxPageHeight)
			if err != nil {
				m.logger.Warn().Err(err).Str("destination", task.Destination).Msg("page normalisation failed")
				return nil
			}
			if changed {
				converted.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(converted.Load())
}

func (m *Manager) packArchives(summary *RunSummary) error {
	report, err := m.packager.Pack(m.work.Path, m.work.Name)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error packaging archives: %v", err), Level: LevelError})
		return fmt.Errorf("package archives: %w", err)
	}

	summary.Archives = report.Archives
	summary.PackagingErrors = report.Failed

	for _, perr := range report.Failed {
		m.progress(ProgressEvent{Message: perr.Error(), Level: LevelError})
	}
	for _, path := range report.Archives {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Created %s", filepath.Base(path)), Level: LevelVerbose})
	}
	return nil
}

// Work returns the work resolved by Initialize, nil before.
func (m *Manager) Work() *model.Work {
	return m.work
}

// Catalog returns the chapters loaded by Initialize.
func (m *Manager) Catalog() model.Catalog {
	return m.catalog
}

// GetProgress returns current download progress. total only counts the
// pages whose size is already known.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	snap := m.stats.Snapshot()
	return snap.BytesReceived, snap.BytesExpected, int32(snap.FilesDone + snap.FilesFailed), m.totalFiles
}

// Snapshot returns the raw progress counters, including the batch in flight.
func (m *Manager) Snapshot() progress.Snapshot {
	return m.stats.Snapshot()
}

// TotalPages is the number of pages listed in the catalog.
func (m *Manager) TotalPages() int {
	return int(m.totalFiles)
}

// GetChapterNames returns a description of every chapter of the catalog.
func (m *Manager) GetChapterNames() []string {
	names := make([]string, len(m.catalog))
	for i, entry := range m.catalog {
		names[i] = fmt.Sprintf("Chapter %s (%d pages)", entry.Dir, len(entry.URLs))
	}
	return names
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
