package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/events"
	"github.com/quizforge/quizforge/internal/grading"
)

// SQLStore persists quizzes in sqlite or postgres. Question options and
// response answers are stored as JSON columns.
type SQLStore struct {
	db     *sql.DB
	events *events.Repo // optional
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// WithEvents enables best-effort domain-event logging.
func (s *SQLStore) WithEvents(r *events.Repo) *SQLStore {
	s.events = r
	return s
}

func (s *SQLStore) CreateQuiz(ctx context.Context, in QuizInput) (Quiz, error) {
	if in.Title == "" {
		return Quiz{}, &InvalidInputError{Reason: "title is required"}
	}
	id := uuid.NewString()
	qs, err := buildQuestions(id, in.Questions)
	if err != nil {
		return Quiz{}, err
	}
	shareID, err := NewShareID(func(cand string) (bool, error) {
		var one int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM quizzes WHERE share_id=$1`, cand).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return Quiz{}, err
	}

	now := time.Now().Unix()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Quiz{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quizzes (id,title,description,share_id,created_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		id, in.Title, in.Description, shareID, now, now); err != nil {
		return Quiz{}, err
	}
	if err := insertQuestions(ctx, tx, qs); err != nil {
		return Quiz{}, err
	}
	if err := tx.Commit(); err != nil {
		return Quiz{}, err
	}

	q := Quiz{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		ShareID:     shareID,
		Questions:   qs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.logEvent(ctx, events.QuizCreated, id, map[string]any{"share_id": shareID, "questions": len(qs)})
	return q, nil
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	q, err := s.getQuizRow(ctx, `SELECT id,title,description,share_id,created_at,updated_at FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return Quiz{}, err
	}
	if q.Questions, err = s.loadQuestions(ctx, q.ID); err != nil {
		return Quiz{}, err
	}
	if q.Responses, err = s.loadResponses(ctx, q.ID); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) UpdateQuiz(ctx context.Context, id string, in QuizInput) (Quiz, error) {
	if in.Title == "" {
		return Quiz{}, &InvalidInputError{Reason: "title is required"}
	}
	qs, err := buildQuestions(id, in.Questions)
	if err != nil {
		return Quiz{}, err
	}

	now := time.Now().Unix()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Quiz{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE quizzes SET title=$1, description=$2, updated_at=$3 WHERE id=$4`,
		in.Title, in.Description, now, id)
	if err != nil {
		return Quiz{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Quiz{}, ErrQuizNotFound
	}
	// Replace, never merge: discard the old question set wholesale.
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE quiz_id=$1`, id); err != nil {
		return Quiz{}, err
	}
	if err := insertQuestions(ctx, tx, qs); err != nil {
		return Quiz{}, err
	}
	if err := tx.Commit(); err != nil {
		return Quiz{}, err
	}
	return s.GetQuiz(ctx, id)
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// sqlite honours ON DELETE CASCADE only on connections that have the
	// foreign_keys pragma set, and a user-supplied DSN may not set it.
	// Delete children explicitly so the quiz vanishes whole on any DSN.
	if _, err := tx.ExecContext(ctx, `DELETE FROM responses WHERE quiz_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE quiz_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuizNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logEvent(ctx, events.QuizDeleted, id, nil)
	return nil
}

func (s *SQLStore) GetQuizByShareID(ctx context.Context, shareID string) (Quiz, error) {
	q, err := s.getQuizRow(ctx, `SELECT id,title,description,share_id,created_at,updated_at FROM quizzes WHERE share_id=$1`, shareID)
	if err != nil {
		return Quiz{}, err
	}
	if q.Questions, err = s.loadQuestions(ctx, q.ID); err != nil {
		return Quiz{}, err
	}
	return publicView(q), nil
}

func (s *SQLStore) SubmitResponse(ctx context.Context, quizID string, answers map[string]any) (Result, error) {
	// Load questions WITH correct answers for grading.
	qs, err := s.loadQuestions(ctx, quizID)
	if err != nil {
		return Result{}, err
	}
	if len(qs) == 0 {
		// Distinguish an empty quiz from a missing one.
		if _, err := s.getQuizRow(ctx, `SELECT id,title,description,share_id,created_at,updated_at FROM quizzes WHERE id=$1`, quizID); err != nil {
			return Result{}, err
		}
	}

	sum := grading.Grade(gradeQuestions(qs), answers)
	score := sum.Score
	r := Response{
		ID:        uuid.NewString(),
		QuizID:    quizID,
		Answers:   answers,
		Score:     &score,
		CreatedAt: time.Now().Unix(),
	}
	aj, err := json.Marshal(r.Answers)
	if err != nil {
		return Result{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (id,quiz_id,answers_json,score,created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		r.ID, r.QuizID, string(aj), score, r.CreatedAt); err != nil {
		return Result{}, err
	}
	s.logEvent(ctx, events.ResponseSubmitted, r.ID, map[string]any{"quiz_id": quizID, "score": score})
	return Result{
		Response:       r,
		Score:          sum.Score,
		CorrectAnswers: sum.CorrectAnswers,
		TotalQuestions: sum.TotalQuestions,
	}, nil
}

func (s *SQLStore) getQuizRow(ctx context.Context, query, arg string) (Quiz, error) {
	var q Quiz
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&q.ID, &q.Title, &q.Description, &q.ShareID, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, ErrQuizNotFound
	}
	if err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) loadQuestions(ctx context.Context, quizID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,quiz_id,type,question,options_json,correct,ord FROM questions WHERE quiz_id=$1 ORDER BY ord ASC`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var q Question
		var oj string
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Type, &q.Question, &oj, &q.Correct, &q.Order); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) loadResponses(ctx context.Context, quizID string) ([]Response, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,quiz_id,answers_json,score,created_at FROM responses WHERE quiz_id=$1 ORDER BY created_at DESC`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Response
	for rows.Next() {
		var r Response
		var aj string
		var score sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.QuizID, &aj, &score, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aj), &r.Answers); err != nil {
			r.Answers = map[string]any{}
		}
		if score.Valid {
			v := score.Float64
			r.Score = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func insertQuestions(ctx context.Context, tx *sql.Tx, qs []Question) error {
	for _, q := range qs {
		oj, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions (id,quiz_id,type,question,options_json,correct,ord)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			q.ID, q.QuizID, q.Type, q.Question, string(oj), q.Correct, q.Order); err != nil {
			return err
		}
	}
	return nil
}

// logEvent never fails the caller; the log is advisory.
func (s *SQLStore) logEvent(ctx context.Context, typ, key string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, typ, key, payload); err != nil {
		log.Printf("event log append (%s %s): %v", typ, key, err)
	}
}
