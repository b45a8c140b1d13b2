package http1

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromCode(t *testing.T) {
	assert.Equal(t, "HTTP/1.1 200 OK", StatusFromCode(200).Line())
	assert.Equal(t, "HTTP/1.1 404 Not Found", StatusFromCode(404).Line())
	assert.Equal(t, "HTTP/1.1 405 Method Not Allowed", StatusFromCode(405).Line())

	// Unknown codes collapse to 500.
	assert.Equal(t, "HTTP/1.1 500 Internal Server Error", StatusFromCode(418).Line())
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, 200, StatusFromError(nil).Code)
	assert.Equal(t, 404, StatusFromError(fs.ErrNotExist).Code)
	assert.Equal(t, 403, StatusFromError(fs.ErrPermission).Code)
	assert.Equal(t, 500, StatusFromError(fmt.Errorf("disk on fire")).Code)
}

func TestStatusFromErrorNeverEchoesCause(t *testing.T) {
	cause := fmt.Errorf("open /srv/secret/file.txt: device error")
	s := StatusFromError(cause)
	assert.NotContains(t, s.HTML(), "/srv/secret")
	assert.NotContains(t, s.HTML(), "device error")
}

func TestStatusHTML(t *testing.T) {
	doc := StatusFromCode(404).HTML()
	assert.Contains(t, doc, "<title>404</title>")
	assert.Contains(t, doc, "<h1>404</h1>")
	assert.Contains(t, doc, "<p>Not Found</p>")

	withComment := StatusFromCode(403).WithComment("Directory listing is disabled").HTML()
	assert.Contains(t, withComment, "<p>Forbidden</p><p>Directory listing is disabled</p>")
}

func TestHTMLDocumentShape(t *testing.T) {
	doc := HTMLDocument("Server Error", 500, "internal server error")
	assert.True(t, len(doc) > 0)
	assert.Contains(t, doc, "<!DOCTYPE html>")
	assert.Contains(t, doc, "<title>Server Error</title>")
	assert.Contains(t, doc, "<h1>500</h1>")
	assert.Contains(t, doc, "</html>\n")
}
