// Package stats records per-request accounting. A Recorder observes
// every handled request; implementations print a console table, export
// Prometheus metrics, or both.
package stats

import "time"

// Recorder receives one observation per handled request.
type Recorder interface {
	// Observe records a request for path handled with method, the
	// status code written and how long handling took.
	Observe(method, path string, status int, elapsed time.Duration)
}

// Nop discards all observations.
type Nop struct{}

func (Nop) Observe(string, string, int, time.Duration) {}

// Multi fans out each observation to every recorder.
type Multi []Recorder

func (m Multi) Observe(method, path string, status int, elapsed time.Duration) {
	for _, r := range m {
		r.Observe(method, path, status, elapsed)
	}
}
