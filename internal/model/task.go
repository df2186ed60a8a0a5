package model

// DownloadTask is one resource to fetch to one destination path.
type DownloadTask struct {
	Source      string
	Destination string
}

// TaskResult is the terminal state of a DownloadTask. Err is nil on success.
type TaskResult struct {
	Task  DownloadTask
	Bytes int64
	Err   error
}

// OK reports whether the task succeeded.
func (r TaskResult) OK() bool {
	return r.Err == nil
}

// SplitBatches partitions tasks into contiguous batches of at most size
// elements, preserving order. The batches share the backing array of tasks.
func SplitBatches(tasks []DownloadTask, size int) [][]DownloadTask {
	if size < 1 || len(tasks) == 0 {
		return nil
	}

	batches := make([][]DownloadTask, 0, (len(tasks)+size-1)/size)
	for i := 0; i < len(tasks); i += size {
		end := i + size
		if end > len(tasks) {
			end = len(tasks)
		}
		batches = append(batches, tasks[i:end:end])
	}
	return batches
}
