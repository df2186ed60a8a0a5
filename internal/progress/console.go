package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
)

const consoleTemplate = `{{ string . "prefix" }} {{ counters . }} {{ bar . }} {{ percent . }} {{ string . "received" }}`

// Console renders one progress bar per batch.
type Console struct {
	out io.Writer

	mu       sync.Mutex
	bar      *pb.ProgressBar
	files    byteTracker
	received int64
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out, files: byteTracker{}}
}

func (c *Console) FileStarted(string, int64) {}

func (c *Console) FileProgress(dest string, written, _ int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received += c.files.delta(dest, written)
	if c.bar != nil {
		c.bar.Set("received", FormatBytes(c.received))
	}
}

func (c *Console) FileFinished(string, error) {}

func (c *Console) BatchStarted(label string, index, count, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bar != nil {
		c.bar.Finish()
	}
	c.files = byteTracker{}
	c.received = 0

	bar := pb.New(size)
	bar.SetTemplateString(consoleTemplate)
	bar.SetWriter(c.out)
	bar.SetMaxWidth(100)
	bar.SetRefreshRate(200 * time.Millisecond)
	bar.Set("prefix", fmt.Sprintf("%s [%d/%d]", label, index+1, count))
	bar.Set("received", FormatBytes(0))
	c.bar = bar.Start()
}

func (c *Console) BatchProgress(_, done, _ int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bar != nil {
		c.bar.SetCurrent(int64(done))
	}
}

func (c *Console) BatchFinished(int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
	}
}

// FormatBytes renders n with a binary unit, e.g. "1.5 MiB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
