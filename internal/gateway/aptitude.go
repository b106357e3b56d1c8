package gateway

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/udaykumar0515/speakup-gateway/internal/aptitude"
	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// QuestionSet is the aptitude-questions result.
type QuestionSet struct {
	Topic       string              `json:"topic"`
	Questions   []aptitude.Question `json:"questions"`
	Total       int                 `json:"total"`
	AIGenerated int                 `json:"aiGenerated"`
}

// Submission is a completed test handed in for scoring. Answers align
// with questions by index; null entries count as unanswered.
type Submission struct {
	Topic     string              `json:"topic"`
	Questions []aptitude.Question `json:"questions"`
	Answers   []*int              `json:"answers"`
	TimeTaken int                 `json:"timeTaken"`
}

// AptitudeQuestions samples a question set for a topic. When AI questions
// are requested, generation runs concurrently with the local bank sample;
// a generation failure degrades to a bank-only set rather than failing
// the request.
func (s *Service) AptitudeQuestions(ctx context.Context, token, topic string, count int, withAI bool) (*QuestionSet, error) {
	req := s.begin(domain.CapAptitudeQuestions)

	out, fault := s.aptitudeQuestions(ctx, req, token, topic, count, withAI)
	s.settle(ctx, req, fault)
	if fault != nil {
		return nil, fault
	}
	return out, nil
}

func (s *Service) aptitudeQuestions(ctx context.Context, req *domain.GatewayRequest, token, topic string, count int, withAI bool) (*QuestionSet, *domain.Fault) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return nil, domain.ErrInvalidInput("topic is required")
	}
	if fault := s.authenticate(ctx, req, token); fault != nil {
		return nil, fault
	}
	if err := req.Advance(domain.StateDispatching); err != nil {
		return nil, domain.AsFault(err)
	}

	bank := s.library.Questions(topic)
	if bank == nil {
		return nil, domain.ErrInvalidInput("unknown aptitude topic: " + topic)
	}

	// Generation is the only provider hop here, so it runs while the
	// bank sample is drawn locally.
	aiCh := make(chan []aptitude.Question, 1)
	if withAI {
		go func() {
			aiCh <- s.generateQuestions(ctx, req, topic)
		}()
	}

	if count <= 0 {
		count = aptitude.DefaultQuestionCount
	}
	rng := s.newRand()
	sampled := aptitude.Sample(bank, count, rng)
	for i, q := range sampled {
		sampled[i] = aptitude.ShuffleOptions(q, rng)
	}

	var generated []aptitude.Question
	if withAI {
		generated = <-aiCh
	}

	questions := append(sampled, generated...)
	for i := range questions {
		questions[i].ID = i + 1
	}

	if err := req.Advance(domain.StateAggregating); err != nil {
		return nil, domain.AsFault(err)
	}
	return &QuestionSet{
		Topic:       topic,
		Questions:   questions,
		Total:       len(questions),
		AIGenerated: len(generated),
	}, nil
}

// generateQuestions asks the generation provider for extra questions.
// Any failure comes back as an empty set; the caller still gets the bank
// sample.
func (s *Service) generateQuestions(ctx context.Context, req *domain.GatewayRequest, topic string) []aptitude.Question {
	res, err := s.invoke(ctx, req, domain.TagGeneration, &domain.Invocation{
		Capability: domain.CapGenerateText,
		Prompt: &domain.PromptPayload{
			Prompt:    aptitude.GenerationPrompt(topic),
			Model:     s.models.Default,
			MaxTokens: aptitude.AIMaxTokens,
			JSONMode:  true,
		},
	})
	if err != nil {
		s.logger.Warn("question generation failed",
			slog.String("request_id", req.ID),
			slog.String("topic", topic),
			slog.String("error", domain.AsFault(err).Message),
		)
		return nil
	}

	questions, perr := aptitude.ParseGenerated(res.Text)
	if perr != nil {
		s.logger.Warn("generated questions unusable",
			slog.String("request_id", req.ID),
			slog.String("topic", topic),
			slog.String("error", perr.Error()),
		)
		return nil
	}
	return questions
}

// SubmitAptitude scores a completed test and persists the summary for the
// caller's history. Persistence is best-effort: a scored result still
// goes back to the caller when the store is down.
func (s *Service) SubmitAptitude(ctx context.Context, token string, sub *Submission) (*aptitude.TestResult, error) {
	req := s.begin(domain.CapSubmitAptitude)

	out, fault := s.submitAptitude(ctx, req, token, sub)
	s.settle(ctx, req, fault)
	if fault != nil {
		return nil, fault
	}
	return out, nil
}

func (s *Service) submitAptitude(ctx context.Context, req *domain.GatewayRequest, token string, sub *Submission) (*aptitude.TestResult, *domain.Fault) {
	if sub == nil || len(sub.Questions) == 0 {
		return nil, domain.ErrInvalidInput("submission has no questions")
	}
	if strings.TrimSpace(sub.Topic) == "" {
		return nil, domain.ErrInvalidInput("topic is required")
	}
	if fault := s.authenticate(ctx, req, token); fault != nil {
		return nil, fault
	}
	if err := req.Advance(domain.StateDispatching); err != nil {
		return nil, domain.AsFault(err)
	}

	result := aptitude.Score(sub.Topic, sub.Questions, sub.Answers, sub.TimeTaken)
	result.ID = req.ID
	result.CreatedAt = time.Now().UTC()

	if _, err := s.invoke(ctx, req, domain.TagStore, &domain.Invocation{
		Capability: domain.CapStoreDocument,
		Write: &domain.WritePayload{
			Collection: aptitude.Collection,
			ID:         result.ID,
			Fields:     aptitude.Fields(result.Summary(), req.UserID),
		},
	}); err != nil {
		s.logger.Warn("aptitude result not persisted",
			slog.String("request_id", req.ID),
			slog.String("error", domain.AsFault(err).Message),
		)
	}

	if err := req.Advance(domain.StateAggregating); err != nil {
		return nil, domain.AsFault(err)
	}
	return result, nil
}

// AptitudeHistory returns the caller's prior test summaries, newest
// first.
func (s *Service) AptitudeHistory(ctx context.Context, token string, limit int) ([]*aptitude.Summary, error) {
	req := s.begin(domain.CapAptitudeHistory)

	out, fault := s.aptitudeHistory(ctx, req, token, limit)
	s.settle(ctx, req, fault)
	if fault != nil {
		return nil, fault
	}
	return out, nil
}

func (s *Service) aptitudeHistory(ctx context.Context, req *domain.GatewayRequest, token string, limit int) ([]*aptitude.Summary, *domain.Fault) {
	if fault := s.authenticate(ctx, req, token); fault != nil {
		return nil, fault
	}
	if err := req.Advance(domain.StateDispatching); err != nil {
		return nil, domain.AsFault(err)
	}

	res, err := s.invoke(ctx, req, domain.TagStore, &domain.Invocation{
		Capability: domain.CapQueryDocuments,
		Query: &domain.QueryPayload{
			Collection: aptitude.Collection,
			UserID:     req.UserID,
			Limit:      limit,
		},
	})
	if err != nil {
		return nil, domain.AsFault(err)
	}

	if err := req.Advance(domain.StateAggregating); err != nil {
		return nil, domain.AsFault(err)
	}
	results := make([]*aptitude.Summary, 0, len(res.Documents))
	for _, doc := range res.Documents {
		results = append(results, aptitude.FromStored(doc))
	}
	return results, nil
}
