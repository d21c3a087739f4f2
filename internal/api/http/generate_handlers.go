package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quizforge/quizforge/internal/genai"
)

// GenerateQuizHandler turns source content into candidate questions via the
// generation service. The call can be slow; no timeout is applied here
// beyond the router's.
func GenerateQuizHandler(gen genai.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content string         `json:"content"`
			Options *genai.Options `json:"options"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Options == nil {
			writeError(w, http.StatusBadRequest, "content and options are required")
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			writeError(w, http.StatusBadRequest, "content must be a non-empty string")
			return
		}

		questions, err := gen.Generate(r.Context(), req.Content, *req.Options)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
	}
}
