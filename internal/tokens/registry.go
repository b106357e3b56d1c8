// Package tokens provides token counting for prompt budgeting. Counts
// keep generation prompts inside the model's context window before the
// gateway pays for an upstream call.
package tokens

import (
	"fmt"
	"strings"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// Registry manages token counters by model. Registered counters are
// consulted in order; models nothing claims fall back to a character
// estimator.
type Registry struct {
	counters []domain.TokenCounter
	fallback domain.TokenCounter
}

// NewRegistry creates a registry with the default estimator fallback.
func NewRegistry() *Registry {
	return &Registry{
		fallback: NewEstimator(),
	}
}

// Register adds a token counter to the registry.
func (r *Registry) Register(counter domain.TokenCounter) {
	r.counters = append(r.counters, counter)
}

// SetFallback sets the fallback counter for unsupported models.
func (r *Registry) SetFallback(counter domain.TokenCounter) {
	r.fallback = counter
}

// CountTokens counts tokens using the first counter that supports the
// model, falling back to the estimator.
func (r *Registry) CountTokens(req *domain.TokenCountRequest) (*domain.TokenCountResponse, error) {
	for _, counter := range r.counters {
		if counter.SupportsModel(req.Model) {
			return counter.CountTokens(req)
		}
	}

	if r.fallback != nil {
		return r.fallback.CountTokens(req)
	}

	return nil, fmt.Errorf("no token counter available for model: %s", req.Model)
}

// Estimator approximates token counts from character length. It is the
// fallback for models without a registered counter.
type Estimator struct {
	// CharsPerToken is the average characters per token (default: 4)
	CharsPerToken float64
}

// NewEstimator creates a new token estimator.
func NewEstimator() *Estimator {
	return &Estimator{
		CharsPerToken: 4.0,
	}
}

// CountTokens estimates the token count.
func (e *Estimator) CountTokens(req *domain.TokenCountRequest) (*domain.TokenCountResponse, error) {
	tokens := int(float64(len(req.Text)) / e.CharsPerToken)

	return &domain.TokenCountResponse{
		InputTokens: tokens,
		Model:       req.Model,
		Estimated:   true,
	}, nil
}

// SupportsModel returns true - the estimator covers all models.
func (e *Estimator) SupportsModel(model string) bool {
	return true
}

// ModelMatcher matches model names against prefix and exact patterns.
type ModelMatcher struct {
	prefixes []string
	exact    []string
}

// NewModelMatcher creates a new model matcher.
func NewModelMatcher(prefixes, exact []string) *ModelMatcher {
	return &ModelMatcher{
		prefixes: prefixes,
		exact:    exact,
	}
}

// Matches returns true if the model matches any pattern.
func (m *ModelMatcher) Matches(model string) bool {
	for _, e := range m.exact {
		if model == e {
			return true
		}
	}

	for _, p := range m.prefixes {
		if strings.HasPrefix(model, p) {
			return true
		}
	}

	return false
}
