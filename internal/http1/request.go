// Package http1 implements the minimal HTTP/1.x wire surface the server
// speaks: parsing one request per connection and serializing one response.
// No keep-alive, chunked transfer or range support.
package http1

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	// MaxLineBytes caps the length of the request line and of each header
	// line. A client that never sends a terminator cannot pin a worker; the
	// read fails with LineTooLong instead.
	MaxLineBytes = 8192

	// maxHeaderLines bounds how many header lines are consumed before the
	// blank-line terminator must appear.
	maxHeaderLines = 100
)

// recognizedMethods are the tokens the parser accepts on the wire. Only
// MethodGet is functioning; the rest parse cleanly and are rejected
// semantically by the handler.
var recognizedMethods = map[string]struct{}{
	"GET":     {},
	"HEAD":    {},
	"POST":    {},
	"PUT":     {},
	"DELETE":  {},
	"OPTIONS": {},
	"PATCH":   {},
	"TRACE":   {},
	"CONNECT": {},
}

// MethodGet is the only method the server executes.
const MethodGet = "GET"

// Request is one parsed request line. Target is the raw requested path and
// must be treated as untrusted until resolved.
type Request struct {
	Method string
	Target string
}

// Recognized reports whether the request method is a known HTTP method.
func (r *Request) Recognized() bool {
	_, ok := recognizedMethods[r.Method]
	return ok
}

// ParseRequest reads exactly one request line plus headers up to the
// blank-line terminator, leaving r positioned at the body boundary. Header
// contents are consumed but not interpreted.
func ParseRequest(r *bufio.Reader) (*Request, error) {
	line, err := readLine(r)
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return nil, &RequestError{Kind: NoMethod}
		}
		return nil, err
	}

	fields := strings.Fields(line)
	switch len(fields) {
	case 0:
		return nil, &RequestError{Kind: NoMethod}
	case 1:
		return nil, &RequestError{Kind: NoPath}
	}

	method, target := fields[0], fields[1]
	if _, ok := recognizedMethods[method]; !ok {
		return nil, &RequestError{Kind: NoMethod}
	}
	if !utf8.ValidString(target) {
		return nil, &RequestError{Kind: InvalidText}
	}

	if err := consumeHeaders(r); err != nil {
		return nil, err
	}

	return &Request{Method: method, Target: target}, nil
}

// consumeHeaders reads header lines until the empty line that separates
// headers from the body. EOF before the terminator is tolerated; simple
// clients close immediately after the request line. Any other read
// failure, including a header line over MaxLineBytes, fails the request.
func consumeHeaders(r *bufio.Reader) error {
	for i := 0; i < maxHeaderLines; i++ {
		line, err := readLine(r)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if line == "" {
			return nil
		}
	}
	return &RequestError{Kind: TooManyHeaders}
}

// readLine reads one CRLF- or LF-terminated line, stripped of its
// terminator. It fails with LineTooLong once MaxLineBytes is exceeded.
func readLine(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		c, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return b.String(), io.EOF
			}
			return "", err
		}
		if c == '\n' {
			return strings.TrimSuffix(b.String(), "\r"), nil
		}
		if b.Len() >= MaxLineBytes {
			return "", &RequestError{Kind: LineTooLong}
		}
		b.WriteByte(c)
	}
}
