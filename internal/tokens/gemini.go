package tokens

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// GeminiCounter counts tokens for Gemini models with a BPE tokenizer.
// Gemini's own tokenizer is not published, so counts use the cl100k_base
// encoding, which tracks Gemini's counts closely enough for budgeting.
// Responses are flagged Estimated accordingly.
type GeminiCounter struct {
	matcher *ModelMatcher

	codecOnce sync.Once
	codec     tokenizer.Codec
	codecErr  error
}

// NewGeminiCounter creates a new Gemini token counter.
func NewGeminiCounter() *GeminiCounter {
	return &GeminiCounter{
		matcher: NewModelMatcher(
			[]string{"gemini-", "models/gemini-"},
			nil,
		),
	}
}

func (c *GeminiCounter) getCodec() (tokenizer.Codec, error) {
	c.codecOnce.Do(func() {
		c.codec, c.codecErr = tokenizer.Get(tokenizer.Cl100kBase)
	})
	if c.codecErr != nil {
		return nil, fmt.Errorf("loading tokenizer encoding: %w", c.codecErr)
	}
	return c.codec, nil
}

// CountTokens counts tokens for the request text.
func (c *GeminiCounter) CountTokens(req *domain.TokenCountRequest) (*domain.TokenCountResponse, error) {
	codec, err := c.getCodec()
	if err != nil {
		return nil, err
	}

	ids, _, err := codec.Encode(req.Text)
	if err != nil {
		return nil, fmt.Errorf("encoding text: %w", err)
	}

	return &domain.TokenCountResponse{
		InputTokens: len(ids),
		Model:       req.Model,
		Estimated:   true,
	}, nil
}

// SupportsModel returns true for Gemini models.
func (c *GeminiCounter) SupportsModel(model string) bool {
	return c.matcher.Matches(model)
}

// CountText counts tokens for a plain text string.
func (c *GeminiCounter) CountText(model, text string) (int, error) {
	codec, err := c.getCodec()
	if err != nil {
		return 0, err
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
