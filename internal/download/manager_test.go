package download

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/scan-downloader/internal/config"
)

const workPath = "/catalogue/test-work/scan/vf/"

// newCatalogueServer serves manifest at workPath+"episodes.js" and every
// /img/ page except those whose path contains "missing".
func newCatalogueServer(t *testing.T, manifest func(base string) string, page []byte) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc(workPath+"episodes.js", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(manifest(srv.URL)))
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		if bytes.Contains([]byte(r.URL.Path), []byte("missing")) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(page)))
		_, _ = w.Write(page)
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testSettings(t *testing.T) *config.Settings {
	s := config.DefaultSettings()
	s.DownloadsPath = t.TempDir()
	s.BatchSize = 2
	s.MaxRetries = 0
	s.RequestTimeout = 5
	return s
}

type eventLog struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (l *eventLog) add(e ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) has(level ProgressLevel) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.events {
		if e.Level == level {
			return true
		}
	}
	return false
}

func archiveNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

func TestManager_EndToEnd(t *testing.T) {
	srv := newCatalogueServer(t, func(base string) string {
		return fmt.Sprintf(`
var eps2 = ['%[1]s/img/2/0.jpg', '%[1]s/img/2/missing.jpg'];
var eps1 = [
  '%[1]s/img/1/0.jpg',
  '%[1]s/img/1/1.jpg',
  '%[1]s/img/1/2.jpg',
];`, base)
	}, []byte("page-bytes"))

	settings := testSettings(t)
	events := &eventLog{}
	m := NewManager(settings, zerolog.Nop(), nil, events.add)

	require.NoError(t, m.Initialize(context.Background(), srv.URL+workPath))
	require.Len(t, m.Catalog(), 2)
	assert.Equal(t, "1", m.Catalog()[0].ID)
	assert.Equal(t, "test-work", m.Work().Name)
	assert.Equal(t, []string{"Chapter 1 (3 pages)", "Chapter 2 (2 pages)"}, m.GetChapterNames())

	summary, err := m.StartDownloads(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Chapters)
	assert.Equal(t, 3, summary.Batches)
	assert.Equal(t, 4, summary.Succeeded)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, filepath.Join(settings.DownloadsPath, "test-work", "2", "1.jpg"), summary.Failed[0].Task.Destination)
	assert.Equal(t, int64(4*len("page-bytes")), summary.Bytes)

	workDir := filepath.Join(settings.DownloadsPath, "test-work")
	require.Equal(t, []string{
		filepath.Join(workDir, "test-work - 1.cbz"),
		filepath.Join(workDir, "test-work - 2.cbz"),
	}, summary.Archives)
	assert.ElementsMatch(t, []string{"0.jpg", "1.jpg", "2.jpg"}, archiveNames(t, summary.Archives[0]))
	assert.ElementsMatch(t, []string{"0.jpg"}, archiveNames(t, summary.Archives[1]))
	assert.NoDirExists(t, filepath.Join(workDir, "1"))
	assert.NoDirExists(t, filepath.Join(workDir, "2"))

	received, _, filesDone, filesTotal := m.GetProgress()
	assert.Equal(t, int64(4*len("page-bytes")), received)
	assert.Equal(t, int32(5), filesDone)
	assert.Equal(t, int32(5), filesTotal)

	assert.True(t, events.has(LevelError))
	assert.True(t, events.has(LevelInfo))
}

func TestManager_DuplicateChapters(t *testing.T) {
	srv := newCatalogueServer(t, func(base string) string {
		return fmt.Sprintf(`var eps1 = ['%[1]s/img/a.jpg']; var eps1 = ['%[1]s/img/b.jpg', '%[1]s/img/c.jpg'];`, base)
	}, []byte("p"))

	settings := testSettings(t)
	settings.CreateArchive = false
	m := NewManager(settings, zerolog.Nop(), nil, nil)

	require.NoError(t, m.Initialize(context.Background(), srv.URL+workPath))
	summary, err := m.StartDownloads(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Succeeded)
	assert.Empty(t, summary.Archives)
	workDir := filepath.Join(settings.DownloadsPath, "test-work")
	assert.FileExists(t, filepath.Join(workDir, "1", "0.jpg"))
	assert.FileExists(t, filepath.Join(workDir, "1-2", "0.jpg"))
	assert.FileExists(t, filepath.Join(workDir, "1-2", "1.jpg"))
}

func TestManager_ManifestUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	settings := testSettings(t)
	events := &eventLog{}
	m := NewManager(settings, zerolog.Nop(), nil, events.add)

	require.NoError(t, m.Initialize(context.Background(), srv.URL+workPath))
	assert.Empty(t, m.Catalog())
	assert.True(t, events.has(LevelError))

	summary, err := m.StartDownloads(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Chapters)
	assert.DirExists(t, filepath.Join(settings.DownloadsPath, "test-work"))
}

func TestManager_MalformedManifestIsNotFatal(t *testing.T) {
	srv := newCatalogueServer(t, func(base string) string {
		return fmt.Sprintf("var eps1 = ['%[1]s/img/a.jpg'\nvar epsSP = ['%[1]s/img/sp.jpg'];\nvar eps3 = ['%[1]s/img/c.jpg'];", base)
	}, []byte("p"))

	events := &eventLog{}
	m := NewManager(testSettings(t), zerolog.Nop(), nil, events.add)

	require.NoError(t, m.Initialize(context.Background(), srv.URL+workPath))
	require.Len(t, m.Catalog(), 1)
	assert.Equal(t, "3", m.Catalog()[0].ID)
	assert.True(t, events.has(LevelWarning))
}

func TestManager_InvalidURL(t *testing.T) {
	m := NewManager(testSettings(t), zerolog.Nop(), nil, nil)
	assert.Error(t, m.Initialize(context.Background(), "not a url"))
}

func TestManager_StartBeforeInitialize(t *testing.T) {
	m := NewManager(testSettings(t), zerolog.Nop(), nil, nil)
	_, err := m.StartDownloads(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestManager_UnwritableOutput(t *testing.T) {
	srv := newCatalogueServer(t, func(base string) string {
		return fmt.Sprintf(`var eps1 = ['%s/img/a.jpg'];`, base)
	}, []byte("p"))

	settings := testSettings(t)
	blocker := filepath.Join(settings.DownloadsPath, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	settings.DownloadsPath = blocker

	m := NewManager(settings, zerolog.Nop(), nil, nil)
	require.NoError(t, m.Initialize(context.Background(), srv.URL+workPath))

	_, err := m.StartDownloads(context.Background())
	assert.Error(t, err)
}

func TestManager_InvalidBatchSize(t *testing.T) {
	srv := newCatalogueServer(t, func(base string) string {
		return fmt.Sprintf(`var eps1 = ['%s/img/a.jpg'];`, base)
	}, []byte("p"))

	settings := testSettings(t)
	settings.BatchSize = 0
	m := NewManager(settings, zerolog.Nop(), nil, nil)
	require.NoError(t, m.Initialize(context.Background(), srv.URL+workPath))

	_, err := m.StartDownloads(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidBatchSize))
}

func TestManager_ConvertToJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < 8; i++ {
		img.Set(i, i, color.White)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	srv := newCatalogueServer(t, func(base string) string {
		return fmt.Sprintf(`var eps1 = ['%[1]s/img/a.png', '%[1]s/img/b.png'];`, base)
	}, buf.Bytes())

	settings := testSettings(t)
	settings.CreateArchive = false
	settings.ConvertToJPEG = true
	m := NewManager(settings, zerolog.Nop(), nil, nil)

	require.NoError(t, m.Initialize(context.Background(), srv.URL+workPath))
	summary, err := m.StartDownloads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Normalized)

	data, err := os.ReadFile(filepath.Join(settings.DownloadsPath, "test-work", "1", "0.jpg"))
	require.NoError(t, err)
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}
