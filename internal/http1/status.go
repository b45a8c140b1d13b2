package http1

import (
	"errors"
	"fmt"
	"io/fs"
)

// Status is an HTTP status together with the optional long comment shown on
// generated error pages. Comments are always fixed strings; underlying
// error text never reaches a client.
type Status struct {
	Code    int
	Msg     string
	Comment string
}

// Common status codes used by the server.
const (
	StatusOK               = 200
	StatusBadRequest       = 400
	StatusForbidden        = 403
	StatusNotFound         = 404
	StatusMethodNotAllowed = 405
	StatusInternalError    = 500
)

var statusMessages = map[int]string{
	StatusOK:               "OK",
	StatusBadRequest:       "Bad Request",
	StatusForbidden:        "Forbidden",
	StatusNotFound:         "Not Found",
	StatusMethodNotAllowed: "Method Not Allowed",
	StatusInternalError:    "Internal Server Error",
}

// StatusFromCode builds a Status with the standard message for code.
// Unknown codes collapse to 500.
func StatusFromCode(code int) Status {
	msg, ok := statusMessages[code]
	if !ok {
		return Status{Code: StatusInternalError, Msg: statusMessages[StatusInternalError]}
	}
	return Status{Code: code, Msg: msg}
}

// WithComment returns a copy of s carrying the given comment.
func (s Status) WithComment(comment string) Status {
	s.Comment = comment
	return s
}

// StatusFromError classifies a filesystem or I/O error into a response
// status. The comment is a generic fixed string so no path or system
// detail leaks into the body.
func StatusFromError(err error) Status {
	switch {
	case err == nil:
		return StatusFromCode(StatusOK)
	case errors.Is(err, fs.ErrNotExist):
		return StatusFromCode(StatusNotFound)
	case errors.Is(err, fs.ErrPermission):
		return StatusFromCode(StatusForbidden).WithComment("Access to the requested resource is denied")
	default:
		return StatusFromCode(StatusInternalError).WithComment("The server failed to read the requested resource")
	}
}

// Line renders the response status line, without the trailing CRLF.
func (s Status) Line() string {
	return fmt.Sprintf("HTTP/1.1 %d %s", s.Code, s.Msg)
}

// HTML renders the status as the shared minimal error document: code as
// title and lead, message and optional comment as paragraphs.
func (s Status) HTML() string {
	content := s.Msg
	if s.Comment != "" {
		content += "</p><p>" + s.Comment
	}
	return HTMLDocument(s.Code, s.Code, content)
}
