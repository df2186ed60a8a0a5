package progress

import (
	"sync"
	"sync/atomic"
)

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	FilesStarted  int64
	FilesDone     int64
	FilesFailed   int64
	BytesReceived int64
	BytesExpected int64 // sum of the known sizes of started files

	Label      string
	BatchIndex int
	BatchCount int
	BatchDone  int
	BatchSize  int
}

// Stats accumulates progress counters. It is safe for concurrent use and
// meant to be polled, e.g. by the TUI on every tick.
type Stats struct {
	filesStarted  atomic.Int64
	filesDone     atomic.Int64
	filesFailed   atomic.Int64
	bytesReceived atomic.Int64
	bytesExpected atomic.Int64

	mu    sync.Mutex
	files byteTracker
	batch Snapshot
}

// NewStats returns empty counters.
func NewStats() *Stats {
	return &Stats{files: byteTracker{}}
}

func (s *Stats) FileStarted(_ string, total int64) {
	s.filesStarted.Add(1)
	if total > 0 {
		s.bytesExpected.Add(total)
	}
}

func (s *Stats) FileProgress(dest string, written, _ int64) {
	s.mu.Lock()
	d := s.files.delta(dest, written)
	s.mu.Unlock()
	s.bytesReceived.Add(d)
}

func (s *Stats) FileFinished(dest string, err error) {
	if err != nil {
		s.filesFailed.Add(1)
	} else {
		s.filesDone.Add(1)
	}
	s.mu.Lock()
	delete(s.files, dest)
	s.mu.Unlock()
}

func (s *Stats) BatchStarted(label string, index, count, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch.Label = label
	s.batch.BatchIndex = index
	s.batch.BatchCount = count
	s.batch.BatchSize = size
	s.batch.BatchDone = 0
}

func (s *Stats) BatchProgress(index, done, _ int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch.BatchIndex == index {
		s.batch.BatchDone = done
	}
}

func (s *Stats) BatchFinished(int) {}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	snap := s.batch
	s.mu.Unlock()

	snap.FilesStarted = s.filesStarted.Load()
	snap.FilesDone = s.filesDone.Load()
	snap.FilesFailed = s.filesFailed.Load()
	snap.BytesReceived = s.bytesReceived.Load()
	snap.BytesExpected = s.bytesExpected.Load()
	return snap
}
