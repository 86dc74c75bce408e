package api

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/utilitycover/debitnote/internal/debitnote"
)

// headerFilename repeats the download name, percent-encoded, for clients
// that cannot read Content-Disposition. Header values are bytes, so a raw
// UTF-8 name would not survive.
const headerFilename = "X-Debitnote-Filename"

// attachmentWriter delivers a document as the HTTP response, so the browser
// saves it under the artifact name.
type attachmentWriter struct {
	w       http.ResponseWriter
	started bool // headers have been written; the response can no longer be an error envelope
}

func newAttachmentWriter(w http.ResponseWriter) *attachmentWriter {
	return &attachmentWriter{w: w}
}

// Deliver writes a as an attachment response.
func (a *attachmentWriter) Deliver(ctx context.Context, art debitnote.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := debitnote.SafeName(art.Name)
	h := a.w.Header()
	h.Set("Content-Type", art.ContentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	h.Set("Content-Length", strconv.Itoa(len(art.Body)))
	h.Set("Cache-Control", "no-store")
	h.Set(headerFilename, url.PathEscape(name))
	a.w.WriteHeader(http.StatusOK)
	a.started = true

	if _, err := a.w.Write(art.Body); err != nil {
		return fmt.Errorf("write attachment: %w", err)
	}
	return nil
}
