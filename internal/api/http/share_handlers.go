package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/quiz"
)

// GetSharedQuizHandler serves the anonymous taker view: questions without
// correct answers, no responses.
func GetSharedQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shareID := chi.URLParam(r, "shareID")
		if shareID == "" {
			writeError(w, http.StatusBadRequest, "share id is required")
			return
		}
		q, err := store.GetQuizByShareID(r.Context(), shareID)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// SubmitResponseHandler grades a taker's answers and persists the response.
// Each submission is an independent Response; there is no update path.
func SubmitResponseHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		var req struct {
			Answers map[string]any `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Answers == nil {
			writeError(w, http.StatusBadRequest, "answers are required")
			return
		}
		res, err := store.SubmitResponse(r.Context(), quizID, req.Answers)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
