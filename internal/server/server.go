// Package server accepts TCP connections and answers one HTTP request
// per connection. Connections are handled on a fixed worker pool;
// every response carries Connection: close.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/netutil"

	"example.com/staticd/internal/config"
	"example.com/staticd/internal/fileserve"
	"example.com/staticd/internal/http1"
	"example.com/staticd/internal/pool"
	"example.com/staticd/internal/stats"
)

// Server owns the listener and dispatches connections to the pool.
type Server struct {
	cfg     *config.Config
	log     zerolog.Logger
	pool    *pool.Pool
	handler *fileserve.Handler
	rec     stats.Recorder

	readTimeout time.Duration
}

// New wires a server from its parts. rec may be nil.
func New(cfg *config.Config, log zerolog.Logger, p *pool.Pool, h *fileserve.Handler, rec stats.Recorder) (*Server, error) {
	var readTimeout time.Duration
	if cfg.Server.ReadTimeout != "" {
		d, err := time.ParseDuration(cfg.Server.ReadTimeout)
		if err != nil {
			return nil, fmt.Errorf("server: read_timeout: %w", err)
		}
		readTimeout = d
	}
	if rec == nil {
		rec = stats.Nop{}
	}
	return &Server{
		cfg:         cfg,
		log:         log,
		pool:        p,
		handler:     h,
		rec:         rec,
		readTimeout: readTimeout,
	}, nil
}

// ListenAndServe binds the configured address and serves until ctx is
// cancelled. When max_connections is set the listener caps concurrent
// accepted connections.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr(), err)
	}
	if max := s.cfg.Server.MaxConnections; max > 0 {
		ln = netutil.LimitListener(ln, max)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is cancelled, then
// closes the listener and drains the pool. Already-queued connections
// are still answered before Serve returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("base_dir", s.handler.BaseDir()).
		Int("workers", s.pool.Size()).
		Msg("server listening")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-done:
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.log.Info().Msg("server shutting down")
				s.pool.Shutdown()
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.Warn().Err(err).Msg("transient accept failure")
				time.Sleep(250 * time.Millisecond)
				continue
			}
			s.pool.Shutdown()
			return fmt.Errorf("server: accept: %w", err)
		}

		c := conn
		if err := s.pool.Submit(func() { s.handleConn(c) }); err != nil {
			c.Close()
			return nil
		}
	}
}

// handleConn reads one request, writes one response and closes the
// connection.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	start := time.Now()

	if s.readTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	}

	req, err := http1.ParseRequest(bufio.NewReader(conn))
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("remote", conn.RemoteAddr().String()).
			Msg("malformed request")
		resp := http1.ErrorResponse(http1.StatusFromCode(http1.StatusBadRequest))
		s.writeResponse(conn, resp)
		s.rec.Observe("-", "-", resp.Status.Code, time.Since(start))
		return
	}

	resp, served := s.handler.Handle(req)
	s.writeResponse(conn, resp)
	elapsed := time.Since(start)

	s.log.Info().
		Str("remote", conn.RemoteAddr().String()).
		Str("method", req.Method).
		Str("target", req.Target).
		Str("served", served).
		Int("status", resp.Status.Code).
		Dur("elapsed", elapsed).
		Msg("request")
	s.rec.Observe(req.Method, req.Target, resp.Status.Code, elapsed)
}

func (s *Server) writeResponse(conn net.Conn, resp *http1.Response) {
	if _, err := resp.WriteTo(conn); err != nil {
		s.log.Warn().
			Err(err).
			Str("remote", conn.RemoteAddr().String()).
			Msg("writing response")
	}
}
