package aptitude

import (
	"encoding/json"
	"fmt"

	"github.com/udaykumar0515/speakup-gateway/internal/codec"
)

// AI-generated question constraints. The model must deliver exactly
// AIQuestionCount valid questions or the generation is discarded; there
// is no static fallback.
const (
	AIQuestionCount = 3
	AIOptionCount   = 4

	// AIMaxTokens bounds the generation response.
	AIMaxTokens = 2000
)

// GenerationPrompt builds the prompt for model-authored hard questions.
// Math must come back as plain text; LaTeX fragments render as garbage
// in the client.
func GenerationPrompt(topic string) string {
	return fmt.Sprintf(`Create %d challenging %s test questions.

IMPORTANT: Write ALL math in plain text. NO LaTeX, NO dollar signs, NO special notation.
Examples:
- Write "2/3" NOT "$\frac{2}{3}$"
- Write "x^2" NOT "$x^2$"
- Write "sqrt(16)" NOT "$\sqrt{16}$"

Return ONLY this JSON array (no explanations):
[
  {
    "question": "plain text question here",
    "options": ["A", "B", "C", "D"],
    "correctAnswer": 0
  }
]

Topic: %s`, AIQuestionCount, topic, topic)
}

// ParseGenerated extracts and validates model-authored questions from
// raw generation output. It keeps only questions with the full option
// set and an in-range answer, numbers them, and requires at least
// AIQuestionCount survivors.
func ParseGenerated(text string) ([]Question, error) {
	raw, ok := codec.ExtractJSONArray(text)
	if !ok {
		return nil, fmt.Errorf("no JSON array in generation output")
	}

	var candidates []Question
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		return nil, fmt.Errorf("parsing generated questions: %w", err)
	}

	valid := make([]Question, 0, len(candidates))
	for _, q := range candidates {
		if q.Question == "" || len(q.Options) != AIOptionCount {
			continue
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= AIOptionCount {
			continue
		}
		q.ID = len(valid) + 1
		if q.Explanation == "" {
			q.Explanation = "Answer explanation"
		}
		valid = append(valid, q)
	}

	if len(valid) < AIQuestionCount {
		return nil, fmt.Errorf("only %d of %d generated questions were valid", len(valid), AIQuestionCount)
	}

	return valid[:AIQuestionCount], nil
}
