package model

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/scan-downloader/internal/io"
)

// ManifestFile is the script, relative to the work URL, holding the chapter manifest.
const ManifestFile = "episodes.js"

// Work represents one title on the catalogue site.
type Work struct {
	// Name is the sanitized work name, used as directory name and archive prefix.
	Name string

	// RootURL is the catalogue URL as given by the user, with a trailing slash.
	RootURL string

	// ManifestURL is RootURL resolved against ManifestFile.
	ManifestURL string

	// Path is the local directory receiving the chapter directories.
	Path string
}

// NewWork creates a Work from a catalogue URL and the downloads directory.
//
// The name is the path segment following "catalogue/" when present
// (https://host/catalogue/<name>/scan/vf/), otherwise the first non-empty
// path segment.
func NewWork(rootURL, downloadsPath string) (*Work, error) {
	rootURL = strings.TrimSpace(rootURL)
	u, err := url.Parse(rootURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rootURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid url %q: scheme must be http or https", rootURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid url %q: missing host", rootURL)
	}

	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	name := workName(u.Path)
	if name == "" {
		return nil, fmt.Errorf("invalid url %q: cannot derive work name", rootURL)
	}

	manifest := u.ResolveReference(&url.URL{Path: ManifestFile})

	return &Work{
		Name:        name,
		RootURL:     u.String(),
		ManifestURL: manifest.String(),
		Path:        filepath.Join(downloadsPath, name),
	}, nil
}

// ChapterPath returns the directory of a chapter inside the work directory.
func (w *Work) ChapterPath(dir string) string {
	return filepath.Join(w.Path, dir)
}

func workName(path string) string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return ""
	}

	name := segments[0]
	for i, s := range segments {
		if s == "catalogue" && i+1 < len(segments) {
			name = segments[i+1]
			break
		}
	}

	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return ioutils.SanitizeFileName(name)
}
