package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DefaultExtension is the archive extension used when none is configured.
const DefaultExtension = "cbz"

// PackagingError reports a chapter directory that could not be packed.
// The directory is left in place.
type PackagingError struct {
	Dir     string
	Archive string
	Err     error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("package %s into %s: %v", e.Dir, e.Archive, e.Err)
}

func (e *PackagingError) Unwrap() error {
	return e.Err
}

// Report lists the outcome of Pack.
type Report struct {
	// Archives are the archive paths written, in directory listing order.
	Archives []string

	// Failed are the directories that were not packed.
	Failed []*PackagingError
}

// Packager writes one archive per chapter directory.
type Packager struct {
	ext    string
	logger zerolog.Logger
	create func(path string) (io.WriteCloser, error)
}

// NewPackager creates a Packager writing archives with the given extension
// (without the dot).
func NewPackager(ext string, logger zerolog.Logger) *Packager {
	if ext == "" {
		ext = DefaultExtension
	}
	return &Packager{
		ext:    ext,
		logger: logger,
		create: func(path string) (io.WriteCloser, error) {
			return os.Create(path)
		},
	}
}

// ArchivePath returns the archive path of the chapter directory name.
func (p *Packager) ArchivePath(root, prefix, name string) string {
	return filepath.Join(root, fmt.Sprintf("%s - %s.%s", prefix, name, p.ext))
}

// Pack archives every immediate subdirectory of root, in listing order.
//
// Regular files directly inside a subdirectory are stored under their base
// name; nested directories are ignored. A failing subdirectory does not stop
// the others. Only a failure to list root is returned as an error.
func (p *Packager) Pack(root, prefix string) (Report, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return Report{}, fmt.Errorf("list %s: %w", root, err)
	}

	var report Report
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		archivePath := p.ArchivePath(root, prefix, entry.Name())

		if err := p.packDir(dir, archivePath); err != nil {
			_ = os.Remove(archivePath)
			report.Failed = append(report.Failed, p.fail(dir, archivePath, err))
			continue
		}

		report.Archives = append(report.Archives, archivePath)

		if err := os.RemoveAll(dir); err != nil {
			report.Failed = append(report.Failed, p.fail(dir, archivePath, fmt.Errorf("remove source directory: %w", err)))
			continue
		}

		p.logger.Info().Str("archive", archivePath).Msg("archive written")
	}

	return report, nil
}

func (p *Packager) fail(dir, archivePath string, err error) *PackagingError {
	perr := &PackagingError{Dir: dir, Archive: archivePath, Err: err}
	p.logger.Error().Err(err).Str("dir", dir).Str("archive", archivePath).Msg("packaging failed")
	return perr
}

// packDir returns nil only once the archive is fully flushed and closed.
func (p *Packager) packDir(dir, archivePath string) (err error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	out, err := p.create(archivePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(out)
	for _, f := range files {
		if !f.Type().IsRegular() {
			continue
		}
		if err := addFile(zw, filepath.Join(dir, f.Name())); err != nil {
			return err
		}
	}

	return zw.Close()
}

func addFile(zw *zip.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(path)
	header.Method = zip.Store

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(writer, file)
	return err
}
