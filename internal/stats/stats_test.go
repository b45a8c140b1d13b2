package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	tab := NewTable(&buf)

	tab.Observe("GET", "/index.html", 200, 1500*time.Microsecond)
	tab.Observe("GET", "/missing", 404, 90*time.Microsecond)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "METHOD")
	assert.Contains(t, lines[0], "STATUS")
	assert.Contains(t, lines[1], "/index.html")
	assert.Contains(t, lines[1], "200")
	assert.Contains(t, lines[2], "404")
}

func TestTableTruncatesLongPaths(t *testing.T) {
	var buf bytes.Buffer
	tab := NewTable(&buf)

	long := "/" + strings.Repeat("a", 80)
	tab.Observe("GET", long, 200, time.Millisecond)
	assert.NotContains(t, buf.String(), long)
	assert.Contains(t, buf.String(), "...")
}

func TestPromCountsByMethodAndStatus(t *testing.T) {
	p := NewProm()
	p.Observe("GET", "/a", 200, time.Millisecond)
	p.Observe("GET", "/b", 200, time.Millisecond)
	p.Observe("POST", "/a", 405, time.Millisecond)
	p.Observe("GET", "/c", 503, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(p.requests.WithLabelValues("GET", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.requests.WithLabelValues("POST", "405")))
	// Unrecognized codes collapse into the 500 label.
	assert.Equal(t, float64(1), testutil.ToFloat64(p.requests.WithLabelValues("GET", "500")))
}

func TestPromDurationHistogram(t *testing.T) {
	p := NewProm()
	p.Observe("GET", "/a", 200, 5*time.Millisecond)

	n, err := testutil.GatherAndCount(p.Registry(), "staticd_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMultiFansOut(t *testing.T) {
	var buf bytes.Buffer
	tab := NewTable(&buf)
	p := NewProm()

	m := Multi{Nop{}, tab, p}
	m.Observe("GET", "/x", 200, time.Millisecond)

	assert.Contains(t, buf.String(), "/x")
	assert.Equal(t, float64(1), testutil.ToFloat64(p.requests.WithLabelValues("GET", "200")))
}
