package server

import (
	"bufio"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/staticd/internal/config"
	"example.com/staticd/internal/fileserve"
	"example.com/staticd/internal/pool"
	"example.com/staticd/internal/stats"
)

type capture struct {
	ch chan int
}

func (c *capture) Observe(_, _ string, status int, _ time.Duration) {
	c.ch <- status
}

// startServer serves the given base directory on a loopback listener
// and returns its address plus a cancel that waits for Serve to return.
func startServer(t *testing.T, base string, rec stats.Recorder) (string, func()) {
	t.Helper()

	cfg := config.Default()
	cfg.Files.BaseDir = base
	cfg.Server.ReadTimeout = "2s"

	p, err := pool.New(2, zerolog.Nop())
	require.NoError(t, err)
	h, err := fileserve.New(fileserve.Config{BaseDir: base, ListDir: true}, zerolog.Nop())
	require.NoError(t, err)
	srv, err := New(cfg, zerolog.Nop(), p, h, rec)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, ln) }()

	stop := func() {
		cancel()
		select {
		case err := <-served:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("Serve did not return after cancellation")
		}
	}
	return ln.Addr().String(), stop
}

func roundTrip(t *testing.T, addr, request string) string {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, request)
	require.NoError(t, err)

	raw, err := io.ReadAll(bufio.NewReader(conn))
	require.NoError(t, err)
	return string(raw)
}

func TestServeFileOverTCP(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "hello.txt"), []byte("hi there"), 0o644))

	addr, stop := startServer(t, base, nil)
	defer stop()

	resp := roundTrip(t, addr, "GET /hello.txt HTTP/1.1\r\nHost: x\r\n\r\n")
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n"), "got: %q", resp)
	assert.Contains(t, resp, "Content-Length: 8\r\n")
	assert.Contains(t, resp, "Content-Type: text/plain\r\n")
	assert.Contains(t, resp, "Connection: close\r\n")
	assert.True(t, strings.HasSuffix(resp, "\r\n\r\nhi there"), "got: %q", resp)
}

func TestServeNotFoundOverTCP(t *testing.T) {
	addr, stop := startServer(t, t.TempDir(), nil)
	defer stop()

	resp := roundTrip(t, addr, "GET /absent HTTP/1.1\r\n\r\n")
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 404 Not Found\r\n"))
	assert.Contains(t, resp, "<h1>404</h1>")
}

func TestServeMalformedRequest(t *testing.T) {
	addr, stop := startServer(t, t.TempDir(), nil)
	defer stop()

	resp := roundTrip(t, addr, "\r\n")
	assert.True(t, strings.HasPrefix(resp, "HTTP/1.1 400 Bad Request\r\n"), "got: %q", resp)
}

func TestServeConnectionClosesAfterResponse(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "a.txt"), []byte("x"), 0o644))

	addr, stop := startServer(t, base, nil)
	defer stop()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	_, err = io.WriteString(conn, "GET /a.txt HTTP/1.1\r\n\r\n")
	require.NoError(t, err)

	// ReadAll only returns once the server closes its end.
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = io.ReadAll(conn)
	assert.NoError(t, err)
}

func TestServeRecordsStats(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "a.txt"), []byte("x"), 0o644))

	rec := &capture{ch: make(chan int, 1)}
	addr, stop := startServer(t, base, rec)
	defer stop()

	roundTrip(t, addr, "GET /a.txt HTTP/1.1\r\n\r\n")
	select {
	case status := <-rec.ch:
		assert.Equal(t, 200, status)
	case <-time.After(5 * time.Second):
		t.Fatal("no observation recorded")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	_, stop := startServer(t, t.TempDir(), nil)
	stop()
}

func TestNewRejectsBadReadTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ReadTimeout = "soon"

	p, err := pool.New(1, zerolog.Nop())
	require.NoError(t, err)
	defer p.Shutdown()
	h, err := fileserve.New(fileserve.Config{BaseDir: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)

	_, err = New(cfg, zerolog.Nop(), p, h, nil)
	assert.Error(t, err)
}
