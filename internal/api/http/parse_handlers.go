package http

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/extract"
	"github.com/quizforge/quizforge/internal/storage"
)

// ParseDocumentHandler extracts generation input from an uploaded PDF.
// Uploads are archived to the blob store when one is configured, and the
// response carries the archive name so the source material can be fetched
// again later.
func ParseDocumentHandler(bs storage.BlobStore, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Headroom over the file cap covers multipart framing, so an
		// oversized file reports its own limit instead of a parse error.
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+64<<10)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "no file provided")
			return
		}
		defer f.Close()

		if hdr.Size > maxBytes {
			writeError(w, http.StatusBadRequest, "file size must be less than "+humanize.Bytes(uint64(maxBytes)))
			return
		}
		mediaType := hdr.Header.Get("Content-Type")
		if mediaType != "application/pdf" {
			writeError(w, http.StatusBadRequest, "file must be a PDF")
			return
		}

		data, err := io.ReadAll(f)
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not read file")
			return
		}

		text, err := extract.FromUpload(hdr.Filename, mediaType, data)
		if err != nil {
			fail(w, err)
			return
		}
		text = strings.TrimSpace(text)
		if text == "" {
			writeError(w, http.StatusBadRequest, "no text content found in PDF")
			return
		}

		resp := map[string]string{"content": text}
		if bs != nil {
			name := uuid.NewString() + "-" + filepath.Base(hdr.Filename)
			if _, err := bs.Put("uploads/"+name, bytes.NewReader(data)); err != nil {
				log.Printf("archive upload %s: %v", hdr.Filename, err)
			} else {
				resp["upload"] = name
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
