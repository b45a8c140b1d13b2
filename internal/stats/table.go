package stats

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Table prints one row per request to a writer, with a header printed
// before the first row. It is safe for concurrent use.
type Table struct {
	mu     sync.Mutex
	w      io.Writer
	header bool
}

// NewTable returns a Table writing to w.
func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

func (t *Table) Observe(method, path string, status int, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.header {
		fmt.Fprintf(t.w, "%-8s %-40s %-6s %s\n", "METHOD", "PATH", "STATUS", "ELAPSED")
		t.header = true
	}
	fmt.Fprintf(t.w, "%-8s %-40s %-6d %s\n", method, truncate(path, 40), status, elapsed.Round(time.Microsecond))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
