package domain

// TokenCountRequest represents a request to count tokens in a prompt.
type TokenCountRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// TokenCountResponse represents the response from counting tokens.
type TokenCountResponse struct {
	InputTokens int    `json:"input_tokens"`
	Model       string `json:"model,omitempty"`
	// Estimated indicates whether the count is an estimate (true) or exact (false)
	Estimated bool `json:"estimated,omitempty"`
}

// TokenCounter provides token counting capabilities. The gateway uses it to
// reject prompts that would blow a model's context window before spending a
// provider call on them.
type TokenCounter interface {
	// CountTokens counts the tokens in the given request.
	// Returns the count and whether it's an estimate.
	CountTokens(req *TokenCountRequest) (*TokenCountResponse, error)

	// SupportsModel returns true if this counter supports the given model.
	SupportsModel(model string) bool
}
