package genai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/quizforge/quizforge/internal/quiz"
)

var (
	// ErrUnparsableResponse: the model's text is not JSON and contains no
	// recoverable bracketed array.
	ErrUnparsableResponse = errors.New("failed to parse generation output as JSON")
	// ErrInvalidResponseShape: the output parsed, but not to an array.
	ErrInvalidResponseShape = errors.New("generation output is not an array")
)

// MalformedQuestionError reports the first candidate question that failed
// validation.
type MalformedQuestionError struct {
	Index  int
	Reason string
}

func (e *MalformedQuestionError) Error() string {
	return fmt.Sprintf("invalid question at index %d: %s", e.Index, e.Reason)
}

type candidate struct {
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  string   `json:"correct"`
}

// ParseQuestions validates the model's raw text into trusted questions.
// The text is parsed as JSON directly; failing that, the first top-level
// bracketed array substring is tried. The validated list is truncated to
// count; short lists are accepted silently.
func ParseQuestions(text string, count int) ([]quiz.GeneratedQuestion, error) {
	raw, err := extractArray(text)
	if err != nil {
		return nil, err
	}

	var cands []candidate
	if err := json.Unmarshal(raw, &cands); err != nil {
		return nil, ErrInvalidResponseShape
	}

	out := make([]quiz.GeneratedQuestion, 0, len(cands))
	for i, c := range cands {
		if err := validateCandidate(i, c); err != nil {
			return nil, err
		}
		opts := c.Options
		if opts == nil {
			opts = []string{}
		}
		out = append(out, quiz.GeneratedQuestion{
			Type:     c.Type,
			Question: c.Question,
			Options:  opts,
			Correct:  c.Correct,
		})
	}
	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return out, nil
}

func validateCandidate(i int, c candidate) error {
	if c.Type == "" || c.Question == "" || c.Correct == "" {
		return &MalformedQuestionError{Index: i, Reason: "type, question and correct are required"}
	}
	if !quiz.KnownType(c.Type) {
		return &MalformedQuestionError{Index: i, Reason: fmt.Sprintf("unknown question type %q", c.Type)}
	}
	if c.Type == quiz.TypeMultipleChoice && len(c.Options) != 4 {
		return &MalformedQuestionError{Index: i, Reason: "multiple choice requires exactly 4 options"}
	}
	return nil
}

// extractArray returns the JSON of the top-level array in text. Models often
// wrap the array in prose or code fences, so a bracket scan is the fallback.
func extractArray(text string) (json.RawMessage, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		if _, ok := v.([]any); !ok {
			return nil, ErrInvalidResponseShape
		}
		return json.RawMessage(text), nil
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, ErrUnparsableResponse
	}
	sub := text[start : end+1]
	if err := json.Unmarshal([]byte(sub), &v); err != nil {
		return nil, ErrUnparsableResponse
	}
	if _, ok := v.([]any); !ok {
		return nil, ErrInvalidResponseShape
	}
	return json.RawMessage(sub), nil
}
