package fileserve

import (
	"fmt"
	"html"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"example.com/staticd/internal/http1"
)

// listingHTML builds the directory listing document for dirPath. webPath is
// the request path the listing is served under; entry links are relative to
// it so the document works regardless of where the server is mounted.
func listingHTML(dirPath, webPath string) ([]byte, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dirPath, err)
	}

	// Directories first, then case-insensitive by name.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	var b strings.Builder
	b.WriteString(`<a href="./../">&uarr; Parent Directory</a><ul>`)
	for _, entry := range entries {
		name := entry.Name()
		escaped := html.EscapeString(name)

		if entry.IsDir() {
			fmt.Fprintf(&b, `<li><a href="./%s/">%s/</a></li>`, escaped, escaped)
			continue
		}

		size := ""
		if info, err := entry.Info(); err == nil {
			size = " &ndash; " + humanize.Bytes(uint64(info.Size()))
		}
		fmt.Fprintf(&b, `<li><a href="./%s">%s</a>%s</li>`, escaped, escaped, size)
	}
	b.WriteString("</ul>")

	doc := http1.HTMLDocument(
		"Directory Listing",
		"Listing for "+html.EscapeString(webPath),
		b.String(),
	)
	return []byte(doc), nil
}
