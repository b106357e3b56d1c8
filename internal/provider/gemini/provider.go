// Package gemini adapts the Gemini API to the provider interface. It
// serves all text generation the gateway brokers: resume analysis,
// interview feedback, and aptitude question authoring.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/udaykumar0515/speakup-gateway/internal/api/googleapi"
	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// ProviderName is the adapter's registry name.
const ProviderName = "gemini"

// defaultTimeout bounds one generation call.
const defaultTimeout = 60 * time.Second

// defaultModel is used when an invocation does not name one.
const defaultModel = "gemini-2.0-flash"

// Generation defaults applied when an invocation leaves them unset.
const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2048
)

// ProviderOption configures the provider.
type ProviderOption func(*Provider)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = httpClient
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) ProviderOption {
	return func(p *Provider) {
		p.timeout = d
	}
}

// WithDefaultModel overrides the fallback model.
func WithDefaultModel(model string) ProviderOption {
	return func(p *Provider) {
		p.defaultModel = model
	}
}

// Provider implements domain.Provider for the generation tag.
type Provider struct {
	client       *genai.Client
	baseURL      string
	httpClient   *http.Client
	timeout      time.Duration
	defaultModel string
}

// New creates a new text generation provider.
func New(ctx context.Context, apiKey string, opts ...ProviderOption) (*Provider, error) {
	p := &Provider{
		timeout:      defaultTimeout,
		defaultModel: defaultModel,
	}

	for _, opt := range opts {
		opt(p)
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.httpClient != nil {
		cc.HTTPClient = p.httpClient
	}
	if p.baseURL != "" {
		cc.HTTPOptions.BaseURL = p.baseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, domain.ErrInternal(fmt.Sprintf("gemini client init: %v", err))
	}

	p.client = client
	return p, nil
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) Tag() domain.ProviderTag {
	return domain.TagGeneration
}

func (p *Provider) Capabilities() []domain.Capability {
	return []domain.Capability{domain.CapGenerateText}
}

// Invoke dispatches on the invocation capability.
func (p *Provider) Invoke(ctx context.Context, inv *domain.Invocation) (*domain.Result, error) {
	switch inv.Capability {
	case domain.CapGenerateText:
		return p.generateText(ctx, inv)
	default:
		return nil, domain.ErrInternal(fmt.Sprintf("gemini provider cannot serve %q", inv.Capability))
	}
}

func (p *Provider) generateText(ctx context.Context, inv *domain.Invocation) (*domain.Result, error) {
	if inv.Prompt == nil || inv.Prompt.Prompt == "" {
		return nil, domain.ErrInvalidInput("prompt is empty")
	}

	model := inv.Prompt.Model
	if model == "" {
		model = p.defaultModel
	}

	prompt := inv.Prompt.Prompt
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(defaultTemperature)),
		MaxOutputTokens: defaultMaxTokens,
	}
	if inv.Prompt.Temperature > 0 {
		cfg.Temperature = genai.Ptr(inv.Prompt.Temperature)
	}
	if inv.Prompt.MaxTokens > 0 {
		cfg.MaxOutputTokens = inv.Prompt.MaxTokens
	}
	if inv.Prompt.JSONMode {
		cfg.ResponseMIMEType = "application/json"
		prompt += "\n\nRespond with ONLY valid JSON, no markdown formatting or code blocks."
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, classifyError(err)
	}

	text := resp.Text()
	if text == "" {
		return nil, domain.NewFault(domain.FaultProviderUnavailable, "generation returned empty response").
			WithProvider(domain.TagGeneration).
			WithTransient()
	}

	return &domain.Result{Text: text}, nil
}

// classifyError maps SDK errors onto the gateway fault taxonomy. The
// SDK surfaces upstream rejections as genai.APIError carrying the
// canonical status.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return googleapi.ClassifyStatus(apiErr.Code, apiErr.Status, apiErr.Message, domain.TagGeneration)
	}
	return googleapi.FaultFromTransport(err, domain.TagGeneration)
}
