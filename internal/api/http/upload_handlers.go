package http

import (
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/storage"
)

// UploadFetchHandler streams back an archived source document by the name
// parse-document returned for it.
func UploadFetchHandler(bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bs == nil {
			writeError(w, http.StatusNotFound, "upload archive is disabled")
			return
		}
		name := filepath.Base(chi.URLParam(r, "name"))
		rc, err := bs.Get("uploads/" + name)
		if err != nil {
			writeError(w, http.StatusNotFound, "upload not found")
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		if _, err := io.Copy(w, rc); err != nil {
			log.Printf("stream upload %s: %v", name, err)
		}
	}
}
