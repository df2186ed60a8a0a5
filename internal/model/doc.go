// Package model defines the core data structures used throughout
// the scan-downloader application.
//
// # Work
//
// Work is the title being downloaded. Its name and on-disk path are derived
// from the catalogue URL the user supplies:
//
//	work, err := model.NewWork("https://anime-sama.fr/catalogue/one-piece/scan/vf/", "/downloads")
//	fmt.Println(work.Name)        // "one-piece"
//	fmt.Println(work.ManifestURL) // ".../scan/vf/episodes.js"
//	fmt.Println(work.Path)        // "/downloads/one-piece"
//
// # Catalog
//
// A Catalog is the ordered list of chapters found in the manifest. Each
// CatalogEntry keeps its page URLs in manifest order, which determines the
// final page numbering.
//
// # Download tasks
//
// Tasks are created per chapter and split into batches:
//
//	tasks := entry.Tasks(chapterDir)        // {dir}/0.jpg, {dir}/1.jpg, ...
//	batches := model.SplitBatches(tasks, 5) // at most 5 tasks each
package model
