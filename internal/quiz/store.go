package quiz

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/grading"
)

var ErrQuizNotFound = errors.New("quiz not found")

// InvalidInputError reports author input that violates a persistence
// invariant (empty title, unknown type, missing correct answer, wrong
// option count).
type InvalidInputError struct{ Reason string }

func (e *InvalidInputError) Error() string { return e.Reason }

// Store persists quizzes, their questions and taker responses.
type Store interface {
	CreateQuiz(ctx context.Context, in QuizInput) (Quiz, error)
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	// UpdateQuiz replaces all questions; old ones are discarded, not merged.
	UpdateQuiz(ctx context.Context, id string, in QuizInput) (Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
	// GetQuizByShareID is the public view: questions ordered, correct
	// answers stripped, responses omitted.
	GetQuizByShareID(ctx context.Context, shareID string) (Quiz, error)
	// SubmitResponse grades answers against the quiz and persists an
	// immutable Response. Responses are never updated or deleted.
	SubmitResponse(ctx context.Context, quizID string, answers map[string]any) (Result, error)
}

// buildQuestions validates author/generator questions and assigns identities
// and contiguous order indices.
func buildQuestions(quizID string, in []GeneratedQuestion) ([]Question, error) {
	out := make([]Question, 0, len(in))
	for i, g := range in {
		if !KnownType(g.Type) {
			return nil, &InvalidInputError{Reason: "unknown question type: " + g.Type}
		}
		if g.Question == "" {
			return nil, &InvalidInputError{Reason: "question text is required"}
		}
		if g.Correct == "" {
			return nil, &InvalidInputError{Reason: "correct answer is required"}
		}
		opts := []string{}
		if g.Type == TypeMultipleChoice {
			if len(g.Options) != 4 {
				return nil, &InvalidInputError{Reason: "multiple choice requires exactly 4 options"}
			}
			opts = append(opts, g.Options...)
		}
		out = append(out, Question{
			ID:       uuid.NewString(),
			QuizID:   quizID,
			Type:     g.Type,
			Question: g.Question,
			Options:  opts,
			Correct:  g.Correct,
			Order:    i,
		})
	}
	return out, nil
}

func gradeQuestions(qs []Question) []grading.Question {
	out := make([]grading.Question, len(qs))
	for i, q := range qs {
		out[i] = grading.Question{ID: q.ID, Type: q.Type, Correct: q.Correct}
	}
	return out
}

// publicView strips grading material and responses for anonymous takers.
func publicView(q Quiz) Quiz {
	q.Responses = nil
	qs := make([]Question, len(q.Questions))
	copy(qs, q.Questions)
	for i := range qs {
		qs[i].Correct = ""
	}
	q.Questions = qs
	return q
}

// memoryStore backs tests and single-process dev runs.
type memoryStore struct {
	mu        sync.RWMutex
	quizzes   map[string]Quiz
	responses map[string][]Response // quizID -> responses, append order
}

func NewInMemoryStore() Store {
	return &memoryStore{
		quizzes:   map[string]Quiz{},
		responses: map[string][]Response{},
	}
}

func (m *memoryStore) CreateQuiz(_ context.Context, in QuizInput) (Quiz, error) {
	if in.Title == "" {
		return Quiz{}, &InvalidInputError{Reason: "title is required"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	qs, err := buildQuestions(id, in.Questions)
	if err != nil {
		return Quiz{}, err
	}
	shareID, err := NewShareID(func(cand string) (bool, error) {
		for _, q := range m.quizzes {
			if q.ShareID == cand {
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return Quiz{}, err
	}
	now := time.Now().Unix()
	q := Quiz{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		ShareID:     shareID,
		Questions:   qs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.quizzes[id] = q
	return q, nil
}

func (m *memoryStore) GetQuiz(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrQuizNotFound
	}
	rs := append([]Response(nil), m.responses[id]...)
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].CreatedAt > rs[j].CreatedAt })
	q.Responses = rs
	return q, nil
}

func (m *memoryStore) UpdateQuiz(_ context.Context, id string, in QuizInput) (Quiz, error) {
	if in.Title == "" {
		return Quiz{}, &InvalidInputError{Reason: "title is required"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrQuizNotFound
	}
	qs, err := buildQuestions(id, in.Questions)
	if err != nil {
		return Quiz{}, err
	}
	q.Title = in.Title
	q.Description = in.Description
	q.Questions = qs
	q.UpdatedAt = time.Now().Unix()
	m.quizzes[id] = q
	return q, nil
}

func (m *memoryStore) DeleteQuiz(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return ErrQuizNotFound
	}
	delete(m.quizzes, id)
	delete(m.responses, id)
	return nil
}

func (m *memoryStore) GetQuizByShareID(_ context.Context, shareID string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, q := range m.quizzes {
		if q.ShareID == shareID {
			return publicView(q), nil
		}
	}
	return Quiz{}, ErrQuizNotFound
}

func (m *memoryStore) SubmitResponse(_ context.Context, quizID string, answers map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[quizID]
	if !ok {
		return Result{}, ErrQuizNotFound
	}
	sum := grading.Grade(gradeQuestions(q.Questions), answers)
	score := sum.Score
	r := Response{
		ID:        uuid.NewString(),
		QuizID:    quizID,
		Answers:   answers,
		Score:     &score,
		CreatedAt: time.Now().Unix(),
	}
	m.responses[quizID] = append(m.responses[quizID], r)
	return Result{
		Response:       r,
		Score:          sum.Score,
		CorrectAnswers: sum.CorrectAnswers,
		TotalQuestions: sum.TotalQuestions,
	}, nil
}
