package http1

import "fmt"

// RequestErrorKind classifies request parse failures.
type RequestErrorKind int

const (
	// NoMethod means the request line is empty or carries an unrecognized
	// method token.
	NoMethod RequestErrorKind = iota
	// NoPath means the request line has a method but no path token.
	NoPath
	// InvalidText means the path token is not valid UTF-8.
	InvalidText
	// LineTooLong means a line exceeded MaxLineBytes before a terminator
	// was seen.
	LineTooLong
	// TooManyHeaders means the blank-line terminator did not appear within
	// the permitted number of header lines.
	TooManyHeaders
)

// RequestError is returned by ParseRequest for malformed wire data. All
// messages are fixed strings safe to surface to clients.
type RequestError struct {
	Kind RequestErrorKind
}

func (e *RequestError) Error() string {
	switch e.Kind {
	case NoMethod:
		return "request does not have an associated HTTP method"
	case NoPath:
		return "request does not have an associated request path"
	case InvalidText:
		return "request path contains invalid text"
	case LineTooLong:
		return "request line exceeds the maximum permitted length"
	case TooManyHeaders:
		return "request carries too many header lines"
	default:
		return fmt.Sprintf("unknown request error (kind %d)", int(e.Kind))
	}
}

// IsRequestError reports whether err is a *RequestError of the given kind.
func IsRequestError(err error, kind RequestErrorKind) bool {
	re, ok := err.(*RequestError)
	return ok && re.Kind == kind
}
