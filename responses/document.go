package responses

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/zeptools/gw-livedocx/rw"
)

// WriteDocumentBytes writes a rendered document or template inline with its content type.
// Returns the number of body bytes written
func WriteDocumentBytes(w http.ResponseWriter, filename string, contentType string, data []byte) int64 {
	WriteDocumentResponseHeaders(w, filename, contentType, len(data))
	cw := rw.NewCountWriter(w)
	if _, err := cw.Write(data); err != nil {
		zap.S().Errorw("writing document to response", "file", filename, "written", cw.BytesWritten(), "error", err)
	}
	return cw.BytesWritten()
}

// WriteDocumentResponseHeaders write HTTP response headers for a document response. i.e. headers are frozen
func WriteDocumentResponseHeaders(w http.ResponseWriter, filename string, contentType string, size int) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(size))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.WriteHeader(http.StatusOK) // Response Header Sent & Frozen
}
