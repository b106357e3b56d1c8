package gateway

import (
	"context"
	"strings"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// Generation parameters for feedback. Warmer than analysis so responses
// read conversationally.
const (
	FeedbackTemperature = 0.7
	FeedbackMaxTokens   = 1500
)

// Feedback asks the generation provider for career or interview feedback
// on the caller's prompt. Optional instructions steer the response.
func (s *Service) Feedback(ctx context.Context, token, prompt, instructions string) (string, error) {
	req := s.begin(domain.CapGenerateFeedback)

	out, fault := s.feedback(ctx, req, token, prompt, instructions)
	s.settle(ctx, req, fault)
	if fault != nil {
		return "", fault
	}
	return out, nil
}

func (s *Service) feedback(ctx context.Context, req *domain.GatewayRequest, token, prompt, instructions string) (string, *domain.Fault) {
	if strings.TrimSpace(prompt) == "" {
		return "", domain.ErrInvalidInput("prompt is empty")
	}
	if fault := s.authenticate(ctx, req, token); fault != nil {
		return "", fault
	}
	if err := req.Advance(domain.StateDispatching); err != nil {
		return "", domain.AsFault(err)
	}

	full := feedbackPrompt(prompt, instructions)
	if fault := s.checkPromptBudget(s.models.Default, full); fault != nil {
		return "", fault
	}

	res, err := s.invoke(ctx, req, domain.TagGeneration, &domain.Invocation{
		Capability: domain.CapGenerateText,
		Prompt: &domain.PromptPayload{
			Prompt:      full,
			Model:       s.models.Default,
			Temperature: FeedbackTemperature,
			MaxTokens:   FeedbackMaxTokens,
		},
	})
	if err != nil {
		return "", domain.AsFault(err)
	}

	if err := req.Advance(domain.StateAggregating); err != nil {
		return "", domain.AsFault(err)
	}
	return res.Text, nil
}

// feedbackPrompt folds optional steering instructions into the prompt.
func feedbackPrompt(prompt, instructions string) string {
	if strings.TrimSpace(instructions) == "" {
		return prompt
	}
	return "Instructions: " + instructions + "\n\n" + prompt
}
