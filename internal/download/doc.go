// Package download turns a catalogue URL into chapter directories and
// archives.
//
// The work is split across three types:
//
//   - Fetcher downloads one page: a HEAD request for the expected size, then
//     a streamed GET into the destination file.
//   - Scheduler runs a chapter's pages in consecutive batches of at most
//     BatchSize pages. The pages of a batch are fetched concurrently and the
//     next batch starts once every page of the current one has finished.
//   - Manager drives a run: manifest, catalog, one scheduler run per chapter,
//     optional JPEG conversion, then packaging into .cbz files.
//
// A typical run:
//
//	manager := download.NewManager(settings, logger, progress.NewConsole(os.Stderr), printEvent)
//	if err := manager.Initialize(ctx, "https://anime-sama.fr/catalogue/one-piece/scan/vf/"); err != nil {
//	    return err
//	}
//	summary, err := manager.StartDownloads(ctx)
//
// Page failures never stop a run. They are logged where the scheduler
// collects them and listed in RunSummary.Failed as *FetchError values. An
// unreachable manifest is logged as a *ManifestFetchError and leaves the
// catalog empty. StartDownloads returns an error only for directories it
// cannot create, an invalid batch size or a cancelled context; cancellation
// is noticed between batches.
//
// Console messages go to the ProgressEvent callback; byte and batch counters
// go to the progress.Observer.
package download
