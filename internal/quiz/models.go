package quiz

// Question types understood by the service. Anything else is rejected at the
// generation boundary.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeShortAnswer    = "short_answer"
)

// KnownType reports whether t is one of the three supported question types.
func KnownType(t string) bool {
	switch t {
	case TypeMultipleChoice, TypeTrueFalse, TypeShortAnswer:
		return true
	}
	return false
}

type Question struct {
	ID       string   `json:"id"`
	QuizID   string   `json:"quiz_id"`
	Type     string   `json:"type"`
	Question string   `json:"question"` // may contain markup
	Options  []string `json:"options"`  // exactly 4 for multiple_choice, empty otherwise
	Correct  string   `json:"correct,omitempty"`
	Order    int      `json:"order"`
}

// GeneratedQuestion is the pre-persistence shape produced by the generation
// call and by author edits. It becomes a Question when a quiz is created or
// its questions are replaced.
type GeneratedQuestion struct {
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  string   `json:"correct"`
}

// Response is one taker's submission. Answers map question id to the
// submitted value (a string today; arrays are tolerated for future
// multi-select and count as unanswered when scoring).
type Response struct {
	ID        string         `json:"id"`
	QuizID    string         `json:"quiz_id"`
	Answers   map[string]any `json:"answers"`
	Score     *float64       `json:"score,omitempty"` // percentage, 0-100
	CreatedAt int64          `json:"created_at"`
}

type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ShareID     string     `json:"share_id"`
	ShareURL    string     `json:"share_url,omitempty"` // set by the API layer, never stored
	Questions   []Question `json:"questions"`
	Responses   []Response `json:"responses,omitempty"`
	CreatedAt   int64      `json:"created_at"`
	UpdatedAt   int64      `json:"updated_at"`
}

// QuizInput carries the author-supplied fields for create/update. Question
// order is the slice order; stores assign indices 0..n-1 from it.
type QuizInput struct {
	Title       string
	Description string
	Questions   []GeneratedQuestion
}

// Result pairs a persisted Response with its grade breakdown.
type Result struct {
	Response       Response `json:"response"`
	Score          float64  `json:"score"`
	CorrectAnswers int      `json:"correctAnswers"`
	TotalQuestions int      `json:"totalQuestions"`
}
