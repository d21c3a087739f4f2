// Package http carries the HTTP handlers for the quiz service: quiz CRUD
// for authors, generation and document parsing, and the public share/take
// surface.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quizforge/quizforge/internal/extract"
	"github.com/quizforge/quizforge/internal/genai"
	"github.com/quizforge/quizforge/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders the {"error": ...} envelope the frontends expect.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps a domain error to its status code and renders it.
func fail(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var (
		invalid   *quiz.InvalidInputError
		malformed *genai.MalformedQuestionError
		upstream  *genai.UpstreamError
	)
	switch {
	case errors.Is(err, quiz.ErrQuizNotFound):
		return http.StatusNotFound
	case errors.As(err, &invalid),
		errors.As(err, &malformed),
		errors.Is(err, genai.ErrInvalidResponseShape),
		errors.Is(err, extract.ErrUnreadableContent),
		errors.Is(err, extract.ErrUnsupportedFileType):
		return http.StatusBadRequest
	case errors.As(err, &upstream),
		errors.Is(err, genai.ErrUnparsableResponse),
		errors.Is(err, quiz.ErrShareIDExhausted):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
