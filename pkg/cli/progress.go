package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ProgressReporter reports progress for long export runs. It prints one
// line per file so output stays useful in a pipe or a CI log.
type ProgressReporter interface {
	Start(total int)
	File(path string)
	Finish()
}

// lineProgress prints a counter-prefixed line per file.
type lineProgress struct {
	mu      sync.Mutex
	total   int
	current int
	started time.Time
	writer  io.Writer
}

// NewProgressReporter creates a progress reporter that writes to w. If w is
// nil, it defaults to os.Stderr so progress never corrupts --json output on
// stdout.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &lineProgress{writer: w}
}

// Start records the number of files in the run.
func (p *lineProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()
}

// File reports that an export of path is starting.
func (p *lineProgress) File(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current++
	fmt.Fprintf(p.writer, "[%d/%d] %s\n", p.current, p.total, path)
}

// Finish reports the total elapsed time.
func (p *lineProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "done in %s\n", time.Since(p.started).Round(time.Millisecond))
}

// NopProgress discards all progress events. Used when --quiet is set or
// output is JSON.
type NopProgress struct{}

func (NopProgress) Start(int)   {}
func (NopProgress) File(string) {}
func (NopProgress) Finish()     {}
