package http1

import (
	"bytes"
	"fmt"
	"io"
)

// MIMEHTML is the content type of every generated document.
const MIMEHTML = "text/html"

// Response is one fully materialized response: status, optional MIME type
// and body. An empty MIME means the wire layer omits Content-Type and the
// client falls back to generic octet-stream handling.
type Response struct {
	Status Status
	MIME   string
	Body   []byte
}

// NewResponse builds a response from its parts.
func NewResponse(status Status, mime string, body []byte) *Response {
	return &Response{Status: status, MIME: mime, Body: body}
}

// ErrorResponse builds the HTML error page for a non-200 status.
func ErrorResponse(status Status) *Response {
	return &Response{
		Status: status,
		MIME:   MIMEHTML,
		Body:   []byte(status.HTML()),
	}
}

// Header serializes the status line and the minimal header set. The order
// is fixed: status line, Content-Type (when a MIME type is set),
// Content-Length (always present and exact), Connection: close, blank
// line.
func (r *Response) Header() []byte {
	var b bytes.Buffer
	b.WriteString(r.Status.Line())
	b.WriteString("\r\n")
	if r.MIME != "" {
		fmt.Fprintf(&b, "Content-Type: %s\r\n", r.MIME)
	}
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(r.Body))
	b.WriteString("Connection: close\r\n\r\n")
	return b.Bytes()
}

// WriteTo writes the serialized response, header then body, to w.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	var written int64
	n, err := w.Write(r.Header())
	written += int64(n)
	if err != nil {
		return written, err
	}
	n, err = w.Write(r.Body)
	written += int64(n)
	return written, err
}
