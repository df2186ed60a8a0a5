package model

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
)

// CatalogEntry is one chapter of a work: its identifier and its page URLs.
type CatalogEntry struct {
	// ID is the chapter identifier as written in the manifest ("12" for eps12).
	ID string

	// URLs are the page image URLs in manifest order.
	URLs []string

	// Dir is the chapter directory name, assigned by Catalog.AssignDirs.
	Dir string
}

// Number returns the numeric value of the chapter ID.
func (e CatalogEntry) Number() (int, error) {
	n, err := strconv.Atoi(e.ID)
	if err != nil {
		return 0, fmt.Errorf("chapter id %q is not numeric", e.ID)
	}
	if n < 0 {
		return 0, fmt.Errorf("chapter id %q is negative", e.ID)
	}
	return n, nil
}

// Tasks builds the download tasks of the chapter, writing page i to {dir}/{i}.jpg.
func (e CatalogEntry) Tasks(dir string) []DownloadTask {
	tasks := make([]DownloadTask, 0, len(e.URLs))
	for i, u := range e.URLs {
		tasks = append(tasks, DownloadTask{
			Source:      u,
			Destination: filepath.Join(dir, fmt.Sprintf("%d.jpg", i)),
		})
	}
	return tasks
}

// Catalog is the ordered list of chapters of a work.
type Catalog []CatalogEntry

// Sort orders the catalog by numeric chapter id. The sort is stable so
// entries sharing an id keep their manifest order. All ids must be numeric;
// callers filter with CatalogEntry.Number first.
func (c Catalog) Sort() {
	sort.SliceStable(c, func(i, j int) bool {
		a, _ := c[i].Number()
		b, _ := c[j].Number()
		return a < b
	})
}

// AssignDirs sets the directory name of every entry. The first entry with a
// given id gets the id itself, later duplicates get "-2", "-3", ... so that
// no two chapters share a directory.
func (c Catalog) AssignDirs() {
	seen := make(map[string]int, len(c))
	for i := range c {
		seen[c[i].ID]++
		if n := seen[c[i].ID]; n > 1 {
			c[i].Dir = fmt.Sprintf("%s-%d", c[i].ID, n)
		} else {
			c[i].Dir = c[i].ID
		}
	}
}

// PageCount returns the total number of pages across all chapters.
func (c Catalog) PageCount() int {
	total := 0
	for _, e := range c {
		total += len(e.URLs)
	}
	return total
}
