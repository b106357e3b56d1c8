package aptitude

import (
	"math"
	"time"
)

// Answer statuses in the per-question breakdown.
const (
	StatusCorrect    = "correct"
	StatusIncorrect  = "incorrect"
	StatusUnanswered = "unanswered"
)

// BreakdownEntry explains one question's outcome to the client.
type BreakdownEntry struct {
	QuestionNumber int      `json:"questionNumber"`
	QuestionText   string   `json:"questionText"`
	Options        []string `json:"options"`
	CorrectAnswer  int      `json:"correctAnswer"`
	UserAnswer     *int     `json:"userAnswer"`
	Status         string   `json:"status"`
	Explanation    string   `json:"explanation"`
}

// CompletionMetrics summarizes how much of the test was attempted.
type CompletionMetrics struct {
	QuestionsAnswered    int  `json:"questionsAnswered"`
	TotalQuestions       int  `json:"totalQuestions"`
	CompletionPercentage int  `json:"completionPercentage"`
	TimeTakenMinutes     int  `json:"timeTakenMinutes"`
	IsFullyCompleted     bool `json:"isFullyCompleted"`
}

// TestResult is a scored test submission. ID and CreatedAt are assigned
// when the result is accepted, not by Score.
type TestResult struct {
	ID                string            `json:"id"`
	Topic             string            `json:"topic"`
	Score             int               `json:"score"`
	TotalQuestions    int               `json:"totalQuestions"`
	CorrectAnswers    int               `json:"correctAnswers"`
	IncorrectAnswers  int               `json:"incorrectAnswers"`
	Unanswered        int               `json:"unansweredQuestions"`
	Accuracy          int               `json:"accuracy"`
	TimeTaken         int               `json:"timeTaken"`
	PerformanceLevel  string            `json:"performanceLevel"`
	CreatedAt         time.Time         `json:"createdAt"`
	CompletionMetrics CompletionMetrics `json:"completionMetrics"`
	Breakdown         []BreakdownEntry  `json:"questionBreakdown"`
}

// Score grades a submission. Answers align with questions by index; a
// nil or missing answer counts as unanswered. timeTaken is in seconds.
func Score(topic string, questions []Question, answers []*int, timeTaken int) *TestResult {
	var correct, incorrect, unanswered int
	breakdown := make([]BreakdownEntry, 0, len(questions))

	for idx, q := range questions {
		var answer *int
		if idx < len(answers) {
			answer = answers[idx]
		}

		status := StatusUnanswered
		switch {
		case answer == nil:
			unanswered++
		case *answer == q.CorrectAnswer:
			correct++
			status = StatusCorrect
		default:
			incorrect++
			status = StatusIncorrect
		}

		breakdown = append(breakdown, BreakdownEntry{
			QuestionNumber: idx + 1,
			QuestionText:   q.Question,
			Options:        q.Options,
			CorrectAnswer:  q.CorrectAnswer,
			UserAnswer:     answer,
			Status:         status,
			Explanation:    q.Explanation,
		})
	}

	total := len(questions)
	score := percentage(correct, total)
	answered := total - unanswered

	return &TestResult{
		Topic:            topic,
		Score:            score,
		TotalQuestions:   total,
		CorrectAnswers:   correct,
		IncorrectAnswers: incorrect,
		Unanswered:       unanswered,
		Accuracy:         score,
		TimeTaken:        timeTaken,
		PerformanceLevel: PerformanceLevel(score),
		CompletionMetrics: CompletionMetrics{
			QuestionsAnswered:    answered,
			TotalQuestions:       total,
			CompletionPercentage: percentage(answered, total),
			TimeTakenMinutes:     minutes(timeTaken),
			IsFullyCompleted:     unanswered == 0,
		},
		Breakdown: breakdown,
	}
}

// PerformanceLevel maps a score percentage to its band.
func PerformanceLevel(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 75:
		return "Good"
	case score >= 60:
		return "Average"
	default:
		return "Needs Improvement"
	}
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func minutes(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return int(math.Round(float64(seconds) / 60))
}
