// Package progress decouples progress rendering from the download engine.
//
// The fetcher and the scheduler report to an Observer: per-file byte
// progress and per-batch completion counts. Implementations in this package:
//
//   - Nop discards everything
//   - Stats accumulates counters that a UI can poll (see Stats.Snapshot)
//   - Console draws one cheggaaa/pb bar per batch
//   - Multi fans events out to several observers
//
// Every method may be called from concurrent workers.
package progress
