package progress

// Observer receives progress events from the download engine.
type Observer interface {
	// FileStarted is called once the expected size of dest is known, -1 if unknown.
	FileStarted(dest string, total int64)
	// FileProgress reports the cumulative bytes written to dest.
	FileProgress(dest string, written, total int64)
	// FileFinished is called exactly once per file, err is nil on success.
	FileFinished(dest string, err error)

	// BatchStarted is called before the tasks of a batch are started.
	// index is zero-based, count is the number of batches of the run.
	BatchStarted(label string, index, count, size int)
	// BatchProgress reports how many tasks of the batch reached a terminal state.
	BatchProgress(index, done, size int)
	// BatchFinished is called after every task of the batch finished.
	BatchFinished(index int)
}

// Nop is an Observer that ignores every event.
type Nop struct{}

func (Nop) FileStarted(string, int64) {}
func (Nop) FileProgress(string, int64, int64) {}
func (Nop) FileFinished(string, error) {}
func (Nop) BatchStarted(string, int, int, int) {}
func (Nop) BatchProgress(int, int, int) {}
func (Nop) BatchFinished(int) {}

// Multi forwards every event to each observer in order.
type Multi []Observer

func (m Multi) FileStarted(dest string, total int64) {
	for _, o := range m {
		o.FileStarted(dest, total)
	}
}

func (m Multi) FileProgress(dest string, written, total int64) {
	for _, o := range m {
		o.FileProgress(dest, written, total)
	}
}

func (m Multi) FileFinished(dest string, err error) {
	for _, o := range m {
		o.FileFinished(dest, err)
	}
}

func (m Multi) BatchStarted(label string, index, count, size int) {
	for _, o := range m {
		o.BatchStarted(label, index, count, size)
	}
}

func (m Multi) BatchProgress(index, done, size int) {
	for _, o := range m {
		o.BatchProgress(index, done, size)
	}
}

func (m Multi) BatchFinished(index int) {
	for _, o := range m {
		o.BatchFinished(index)
	}
}

// byteTracker turns cumulative per-file byte counts into deltas.
// Callers hold their own lock.
type byteTracker map[string]int64

func (b byteTracker) delta(dest string, written int64) int64 {
	d := written - b[dest]
	b[dest] = written
	return d
}
