package genai

import (
	"fmt"
	"strings"
)

// buildPrompt asks the model for a bare JSON array so ParseQuestions can
// recover it even when the model wraps it in prose.
func buildPrompt(content string, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d quiz questions from this content:\n\n%s\n\n", opts.Count, content)
	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- Difficulty: %s\n", opts.Difficulty)
	fmt.Fprintf(&b, "- Question types: %s\n", strings.Join(opts.Types, ", "))
	if opts.CustomInstructions != "" {
		fmt.Fprintf(&b, "- Custom instructions: %s\n", opts.CustomInstructions)
	}
	b.WriteString(`
Return as a JSON array with this exact structure:
[
  {
    "type": "multiple_choice|true_false|short_answer",
    "question": "Question text",
    "options": ["A", "B", "C", "D"],
    "correct": "Correct answer"
  }
]

For multiple choice questions, provide 4 options labeled A, B, C, D.
For true/false questions, use "true" or "false" as the correct answer.
For short answer questions, provide a brief correct answer.
`)
	return b.String()
}
