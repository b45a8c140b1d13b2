package fileserve

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrBadEncoding is returned when a request path carries an incomplete
	// or non-hex percent escape, or decodes to invalid text. Undecodable
	// paths are rejected outright so that the decoder and the filesystem
	// never disagree about the bytes a path names.
	ErrBadEncoding = errors.New("path contains an undecodable percent escape")

	// ErrTraversal is returned when a path would escape the served base
	// directory.
	ErrTraversal = errors.New("path escapes the served directory")
)

// DecodePercents replaces every %XX escape in s with the byte it names.
// An escape that is incomplete or not two hex digits fails the whole path.
func DecodePercents(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}

	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			out = append(out, s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", ErrBadEncoding
		}
		hi, ok1 := fromHex(s[i+1])
		lo, ok2 := fromHex(s[i+2])
		if !ok1 || !ok2 {
			return "", ErrBadEncoding
		}
		out = append(out, hi<<4|lo)
		i += 2
	}

	if !utf8.Valid(out) {
		return "", ErrBadEncoding
	}
	return string(out), nil
}

func fromHex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// NormalizePath resolves "." and ".." segments of a request path without
// touching the filesystem, per RFC 3986 section 5.2.4. A ".." that would
// pop past the path's root fails with ErrTraversal instead of silently
// clamping. The result is a clean relative path; the empty path and "/"
// normalize to ".", the base directory itself.
func NormalizePath(p string) (string, error) {
	var resolved []string
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
			// no-op
		case "..":
			if len(resolved) == 0 {
				return "", ErrTraversal
			}
			resolved = resolved[:len(resolved)-1]
		default:
			resolved = append(resolved, seg)
		}
	}
	if len(resolved) == 0 {
		return ".", nil
	}
	return strings.Join(resolved, "/"), nil
}

// Resolver confines request paths under a base directory. Base must be an
// absolute, cleaned path to an existing directory.
type Resolver struct {
	base string
}

// NewResolver builds a resolver rooted at base.
func NewResolver(base string) (*Resolver, error) {
	if !filepath.IsAbs(base) {
		return nil, fmt.Errorf("base directory %q is not absolute", base)
	}
	return &Resolver{base: filepath.Clean(base)}, nil
}

// Base returns the canonical base directory.
func (r *Resolver) Base() string {
	return r.base
}

// Resolve turns a raw request path into an absolute filesystem path
// guaranteed to lie under the base directory: percent-decode, normalize,
// join, then re-verify confinement on the joined result. Normalization and
// the final prefix check are independent guards; the second catches
// smuggling that survives the first.
func (r *Resolver) Resolve(raw string) (string, error) {
	decoded, err := DecodePercents(raw)
	if err != nil {
		return "", err
	}

	rel, err := NormalizePath(decoded)
	if err != nil {
		return "", err
	}

	joined := filepath.Join(r.base, filepath.FromSlash(rel))
	if joined != r.base && !strings.HasPrefix(joined, r.base+string(filepath.Separator)) {
		return "", ErrTraversal
	}
	return joined, nil
}
