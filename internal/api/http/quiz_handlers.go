package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quizforge/quizforge/internal/quiz"
)

type quizRequest struct {
	ID          string                   `json:"id,omitempty"`
	Title       string                   `json:"title"`
	Description string                   `json:"description,omitempty"`
	Questions   []quiz.GeneratedQuestion `json:"questions"`
}

// withShareURL renders the public take link onto authoring responses when a
// public base URL is configured.
func withShareURL(q quiz.Quiz, base string) quiz.Quiz {
	if base != "" && q.ShareID != "" {
		q.ShareURL = strings.TrimSuffix(base, "/") + "/share/" + q.ShareID
	}
	return q
}

func CreateQuizHandler(store quiz.Store, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quizRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Title == "" || req.Questions == nil {
			writeError(w, http.StatusBadRequest, "title and questions array are required")
			return
		}
		q, err := store.CreateQuiz(r.Context(), quiz.QuizInput{
			Title:       req.Title,
			Description: req.Description,
			Questions:   req.Questions,
		})
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, withShareURL(q, publicURL))
	}
}

func GetQuizHandler(store quiz.Store, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "quiz id is required")
			return
		}
		q, err := store.GetQuiz(r.Context(), id)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, withShareURL(q, publicURL))
	}
}

func UpdateQuizHandler(store quiz.Store, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quizRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.ID == "" || req.Title == "" || req.Questions == nil {
			writeError(w, http.StatusBadRequest, "id, title and questions are required")
			return
		}
		q, err := store.UpdateQuiz(r.Context(), req.ID, quiz.QuizInput{
			Title:       req.Title,
			Description: req.Description,
			Questions:   req.Questions,
		})
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, withShareURL(q, publicURL))
	}
}

func DeleteQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "quiz id is required")
			return
		}
		if err := store.DeleteQuiz(r.Context(), id); err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
