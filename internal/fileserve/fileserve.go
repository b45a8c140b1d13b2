// Package fileserve maps parsed requests onto a sandboxed directory tree:
// path resolution and confinement, file and directory serving, and the
// MIME table. It owns every decision about what a request is allowed to
// read.
package fileserve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"example.com/staticd/internal/http1"
)

// Config carries the filesystem-facing settings for a Handler.
type Config struct {
	// BaseDir is the absolute directory all reads are confined to.
	BaseDir string

	// ListDir enables directory listings. When disabled, a directory
	// request without an index file answers 403.
	ListDir bool

	// IndexFiles are probed, in order, when a directory is requested. The
	// first existing regular file is served instead of a listing.
	IndexFiles []string
}

// Handler turns one parsed request into one response. It is stateless
// apart from its configuration and safe for concurrent use.
type Handler struct {
	resolver   *Resolver
	listDir    bool
	indexFiles []string
	log        zerolog.Logger
}

// New builds a Handler. BaseDir must be absolute and name an existing
// directory.
func New(cfg Config, log zerolog.Logger) (*Handler, error) {
	resolver, err := NewResolver(cfg.BaseDir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolver.Base())
	if err != nil {
		return nil, fmt.Errorf("base directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base directory %q is not a directory", resolver.Base())
	}

	indexFiles := cfg.IndexFiles
	if len(indexFiles) == 0 {
		indexFiles = []string{"index.html"}
	}

	return &Handler{
		resolver:   resolver,
		listDir:    cfg.ListDir,
		indexFiles: indexFiles,
		log:        log,
	}, nil
}

// BaseDir reports the absolute directory being served.
func (h *Handler) BaseDir() string { return h.resolver.Base() }

// Handle resolves and serves one request. It always produces a response;
// every failure maps to an error page. The second return value is the
// resolved filesystem path, or the empty string when resolution failed.
func (h *Handler) Handle(req *http1.Request) (*http1.Response, string) {
	if req.Method != http1.MethodGet {
		status := http1.StatusFromCode(http1.StatusMethodNotAllowed).
			WithComment("Server only supports GET requests")
		return http1.ErrorResponse(status), ""
	}

	path, err := h.resolver.Resolve(req.Target)
	if err != nil {
		// Traversal attempts and undecodable paths both answer 404 so the
		// response neither confirms what exists outside the base directory
		// nor reveals where it is.
		h.log.Warn().Str("path", req.Target).Err(err).Msg("request path rejected")
		return http1.ErrorResponse(http1.StatusFromCode(http1.StatusNotFound)), ""
	}

	info, err := os.Stat(path)
	if err != nil {
		return h.errorResponse(err, path), path
	}

	if info.IsDir() {
		return h.serveDir(path, req.Target), path
	}
	return h.serveFile(path), path
}

// serveFile reads the whole file into memory and wraps it in a 200
// response. The MIME type comes from the extension table; unknown
// extensions leave it empty.
func (h *Handler) serveFile(path string) *http1.Response {
	data, err := os.ReadFile(path)
	if err != nil {
		return h.errorResponse(err, path)
	}
	return http1.NewResponse(http1.StatusFromCode(http1.StatusOK), MimeByExtension(path), data)
}

// serveDir probes the configured index files, then falls back to a
// listing, then to 403 when listings are disabled.
func (h *Handler) serveDir(dirPath, webPath string) *http1.Response {
	for _, name := range h.indexFiles {
		indexPath := filepath.Join(dirPath, name)
		if info, err := os.Stat(indexPath); err == nil && info.Mode().IsRegular() {
			return h.serveFile(indexPath)
		}
	}

	if !h.listDir {
		status := http1.StatusFromCode(http1.StatusForbidden).
			WithComment("Directory listing is disabled")
		return http1.ErrorResponse(status)
	}

	body, err := listingHTML(dirPath, webPath)
	if err != nil {
		return h.errorResponse(err, dirPath)
	}
	return http1.NewResponse(http1.StatusFromCode(http1.StatusOK), http1.MIMEHTML, body)
}

// errorResponse classifies a filesystem error into its error page and logs
// the cause; the page itself carries no detail beyond the fixed message.
func (h *Handler) errorResponse(err error, path string) *http1.Response {
	status := http1.StatusFromError(err)
	if status.Code == http1.StatusInternalError || errors.Is(err, os.ErrPermission) {
		h.log.Error().Str("path", path).Err(err).Msg("filesystem read failed")
	}
	return http1.ErrorResponse(status)
}
