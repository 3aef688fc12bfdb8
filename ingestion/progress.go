package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// buildProgress writes a single carriage-return line while catalog rows
// are embedded. Rows taken from the catalog's embedding column are counted
// up front and shown next to the embedded count.
type buildProgress struct {
	mu       sync.Mutex
	w        io.Writer
	rows     int
	reused   int
	pending  int
	embedded int
	every    int
	printed  int
	began    time.Time
}

func newBuildProgress(w io.Writer, rows, pending, reused, every int) *buildProgress {
	return &buildProgress{
		w:       w,
		rows:    rows,
		reused:  reused,
		pending: pending,
		every:   max(every, 1),
		began:   time.Now(),
	}
}

// done records n freshly embedded rows. Called from pool workers.
func (p *buildProgress) done(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.embedded = min(p.embedded+n, p.pending)
	if p.embedded-p.printed >= p.every {
		p.line()
		p.printed = p.embedded
	}
}

// finish prints the closing line.
func (p *buildProgress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.line()
	fmt.Fprintln(p.w)
}

func (p *buildProgress) line() {
	rate := 0.0
	if secs := time.Since(p.began).Seconds(); secs > 0 {
		rate = float64(p.embedded) / secs
	}
	fmt.Fprintf(p.w, "\rcatalog %d rows: embedded %d/%d, reused %d (%.1f rows/s)",
		p.rows, p.embedded, p.pending, p.reused, rate)
}
