package aptitude

import (
	"time"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// Collection is the document-store collection holding test results.
const Collection = "aptitude_results"

// Summary is the persisted slice of a test result and the shape history
// queries return. The per-question breakdown stays with the immediate
// submit response and is never stored.
type Summary struct {
	ID               string    `json:"id"`
	Topic            string    `json:"topic"`
	Score            int       `json:"score"`
	TotalQuestions   int       `json:"totalQuestions"`
	CorrectAnswers   int       `json:"correctAnswers"`
	IncorrectAnswers int       `json:"incorrectAnswers"`
	Unanswered       int       `json:"unansweredQuestions"`
	Accuracy         int       `json:"accuracy"`
	TimeTaken        int       `json:"timeTaken"`
	PerformanceLevel string    `json:"performanceLevel"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Summary extracts the persistable slice of a result.
func (r *TestResult) Summary() *Summary {
	return &Summary{
		ID:               r.ID,
		Topic:            r.Topic,
		Score:            r.Score,
		TotalQuestions:   r.TotalQuestions,
		CorrectAnswers:   r.CorrectAnswers,
		IncorrectAnswers: r.IncorrectAnswers,
		Unanswered:       r.Unanswered,
		Accuracy:         r.Accuracy,
		TimeTaken:        r.TimeTaken,
		PerformanceLevel: r.PerformanceLevel,
		CreatedAt:        r.CreatedAt,
	}
}

// Fields renders a summary as document-store fields owned by userID.
func Fields(s *Summary, userID string) map[string]any {
	return map[string]any{
		"id":                  s.ID,
		"userId":              userID,
		"topic":               s.Topic,
		"score":               s.Score,
		"totalQuestions":      s.TotalQuestions,
		"correctAnswers":      s.CorrectAnswers,
		"incorrectAnswers":    s.IncorrectAnswers,
		"unansweredQuestions": s.Unanswered,
		"accuracy":            s.Accuracy,
		"timeTaken":           s.TimeTaken,
		"performanceLevel":    s.PerformanceLevel,
		"createdAt":           s.CreatedAt,
	}
}

// FromStored rebuilds a summary from a stored document. Missing fields
// decode to zero values rather than failing history reads.
func FromStored(doc domain.StoredDocument) *Summary {
	s := &Summary{ID: doc.ID}

	if id, ok := doc.Fields["id"].(string); ok && id != "" {
		s.ID = id
	}
	if topic, ok := doc.Fields["topic"].(string); ok {
		s.Topic = topic
	}
	if level, ok := doc.Fields["performanceLevel"].(string); ok {
		s.PerformanceLevel = level
	}
	if created, ok := doc.Fields["createdAt"].(time.Time); ok {
		s.CreatedAt = created
	}
	s.Score = intField(doc.Fields, "score")
	s.TotalQuestions = intField(doc.Fields, "totalQuestions")
	s.CorrectAnswers = intField(doc.Fields, "correctAnswers")
	s.IncorrectAnswers = intField(doc.Fields, "incorrectAnswers")
	s.Unanswered = intField(doc.Fields, "unansweredQuestions")
	s.Accuracy = intField(doc.Fields, "accuracy")
	s.TimeTaken = intField(doc.Fields, "timeTaken")

	return s
}

func intField(m map[string]any, key string) int {
	if v, ok := m[key].(int64); ok {
		return int(v)
	}
	return 0
}
