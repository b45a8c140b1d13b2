package http1

import "fmt"

// HTMLDocument renders the fixed minimal document shell used for every
// generated page: error pages and directory listings alike. The content is
// inserted verbatim; callers escape anything user-controlled.
func HTMLDocument(title, lead, content any) string {
	return fmt.Sprintf(
		"<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\"><title>%v</title></head><body><h1>%v</h1><p>%v</p></body></html>\n",
		title, lead, content,
	)
}
