package grading

import "strings"

// Question is a minimal view of a question needed for grading. Stores convert
// their own question type into this to avoid a dependency on the store model.
type Question struct {
	ID      string
	Type    string
	Correct string
}

// Summary is the outcome of grading one submission against one quiz.
type Summary struct {
	CorrectAnswers int     `json:"correctAnswers"`
	TotalQuestions int     `json:"totalQuestions"`
	Score          float64 `json:"score"` // percentage, 0-100
}

// Strategy decides whether a submitted answer matches the stored correct
// answer for one question type.
type Strategy interface {
	Match(submitted, correct string) bool
}

var strategies = map[string]Strategy{
	"multiple_choice": exactStrategy{},
	"true_false":      foldStrategy{},
	"short_answer":    trimFoldStrategy{},
}

// Match applies the per-type strategy. Empty submissions and unknown types
// never match.
func Match(qtype, submitted, correct string) bool {
	if submitted == "" {
		return false
	}
	s, ok := strategies[qtype]
	if !ok {
		return false
	}
	return s.Match(submitted, correct)
}

// Grade scores an answer map against a quiz's questions. Missing or
// malformed answer entries count as unanswered; grading never fails.
func Grade(questions []Question, answers map[string]any) Summary {
	sum := Summary{TotalQuestions: len(questions)}
	for _, q := range questions {
		if Match(q.Type, answerString(answers[q.ID]), q.Correct) {
			sum.CorrectAnswers++
		}
	}
	if sum.TotalQuestions > 0 {
		sum.Score = float64(sum.CorrectAnswers) / float64(sum.TotalQuestions) * 100
	}
	return sum
}

// answerString coerces a submitted answer to a string. Non-string payloads
// (arrays, numbers, null) are treated as no answer.
func answerString(v any) string {
	s, _ := v.(string)
	return s
}

// exactStrategy: case-sensitive equality (multiple choice options are
// compared verbatim).
type exactStrategy struct{}

func (exactStrategy) Match(submitted, correct string) bool {
	return submitted == correct
}

// foldStrategy: case-insensitive equality ("TRUE" matches "true").
type foldStrategy struct{}

func (foldStrategy) Match(submitted, correct string) bool {
	return strings.EqualFold(submitted, correct)
}

// trimFoldStrategy: case-insensitive equality after trimming surrounding
// whitespace from both sides.
type trimFoldStrategy struct{}

func (trimFoldStrategy) Match(submitted, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correct))
}
