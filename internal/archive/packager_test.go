package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeChapter(t *testing.T, root, name string, pages int) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for i := 0; i < pages; i++ {
		page := filepath.Join(dir, fmt.Sprintf("%d.jpg", i))
		require.NoError(t, os.WriteFile(page, []byte(fmt.Sprintf("%s-page-%d", name, i)), 0644))
	}
}

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	contents := make(map[string]string, len(r.File))
	for _, f := range r.File {
		assert.Equal(t, zip.Store, f.Method, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		contents[f.Name] = string(data)
	}
	return contents
}

func TestPack_TwoChapters(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "1", 3)
	writeChapter(t, root, "2", 3)

	report, err := NewPackager("cbz", zerolog.Nop()).Pack(root, "one-piece")

	require.NoError(t, err)
	assert.Empty(t, report.Failed)
	assert.Equal(t, []string{
		filepath.Join(root, "one-piece - 1.cbz"),
		filepath.Join(root, "one-piece - 2.cbz"),
	}, report.Archives)

	for _, ch := range []string{"1", "2"} {
		assert.NoDirExists(t, filepath.Join(root, ch))
		contents := readArchive(t, filepath.Join(root, "one-piece - "+ch+".cbz"))
		assert.Equal(t, map[string]string{
			"0.jpg": ch + "-page-0",
			"1.jpg": ch + "-page-1",
			"2.jpg": ch + "-page-2",
		}, contents)
	}
}

func TestPack_SkipsNestedDirsAndFiles(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "1", 1)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "1", "extra"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "1", "extra", "x.jpg"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("n"), 0644))

	report, err := NewPackager("cbz", zerolog.Nop()).Pack(root, "w")

	require.NoError(t, err)
	require.Len(t, report.Archives, 1)
	assert.Equal(t, map[string]string{"0.jpg": "1-page-0"}, readArchive(t, report.Archives[0]))
	assert.FileExists(t, filepath.Join(root, "notes.txt"))
}

type failingWriter struct {
	*os.File
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestPack_WriteFailurePreservesDirectory(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "1", 3)
	writeChapter(t, root, "2", 3)

	p := NewPackager("cbz", zerolog.Nop())
	p.create = func(path string) (io.WriteCloser, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		if strings.HasSuffix(path, " - 2.cbz") {
			return failingWriter{f}, nil
		}
		return f, nil
	}

	report, err := p.Pack(root, "w")

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "w - 1.cbz")}, report.Archives)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, filepath.Join(root, "2"), report.Failed[0].Dir)
	assert.ErrorContains(t, report.Failed[0], "disk full")

	assert.NoDirExists(t, filepath.Join(root, "1"))
	assert.NoFileExists(t, filepath.Join(root, "w - 2.cbz"))
	for _, page := range []string{"0.jpg", "1.jpg", "2.jpg"} {
		assert.FileExists(t, filepath.Join(root, "2", page))
	}
}

func TestPack_CreateFailure(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "5", 2)

	p := NewPackager("cbz", zerolog.Nop())
	p.create = func(string) (io.WriteCloser, error) {
		return nil, errors.New("read-only file system")
	}

	report, err := p.Pack(root, "w")

	require.NoError(t, err)
	assert.Empty(t, report.Archives)
	require.Len(t, report.Failed, 1)

	var perr *PackagingError
	require.True(t, errors.As(report.Failed[0], &perr))
	assert.Equal(t, filepath.Join(root, "w - 5.cbz"), perr.Archive)
	assert.DirExists(t, filepath.Join(root, "5"))
}

func TestPack_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeChapter(t, root, "1", 2)
	p := NewPackager("", zerolog.Nop())

	first, err := p.Pack(root, "w")
	require.NoError(t, err)
	require.Len(t, first.Archives, 1)
	assert.Equal(t, filepath.Join(root, "w - 1.cbz"), first.Archives[0])

	second, err := p.Pack(root, "w")
	require.NoError(t, err)
	assert.Empty(t, second.Archives)
	assert.Empty(t, second.Failed)
	assert.FileExists(t, first.Archives[0])
}

func TestPack_MissingRoot(t *testing.T) {
	_, err := NewPackager("cbz", zerolog.Nop()).Pack(filepath.Join(t.TempDir(), "missing"), "w")
	assert.Error(t, err)
}
