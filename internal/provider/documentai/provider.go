// Package documentai adapts the Document AI API to the provider
// interface. It extracts plain text from uploaded resume documents.
package documentai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/udaykumar0515/speakup-gateway/internal/api/documentai"
	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// ProviderName is the adapter's registry name.
const ProviderName = "documentai"

// defaultTimeout bounds one processing call. Document processing is the
// slowest upstream operation the gateway brokers.
const defaultTimeout = 60 * time.Second

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

// Provider implements domain.Provider for the extraction tag.
type Provider struct {
	client     *documentai.Client
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// New creates a new document extraction provider. The token source
// supplies short-lived access tokens minted from the gateway's service
// account.
func New(projectID, location, processorID string, tokens documentai.TokenSource, opts ...ProviderOption) *Provider {
	p := &Provider{
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []documentai.ClientOption
	if p.baseURL != "" {
		clientOpts = append(clientOpts, documentai.WithBaseURL(p.baseURL))
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, documentai.WithHTTPClient(p.httpClient))
	}

	p.client = documentai.NewClient(projectID, location, processorID, tokens, clientOpts...)
	return p
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) Tag() domain.ProviderTag {
	return domain.TagExtraction
}

func (p *Provider) Capabilities() []domain.Capability {
	return []domain.Capability{domain.CapProcessDocument}
}

// Invoke dispatches on the invocation capability.
func (p *Provider) Invoke(ctx context.Context, inv *domain.Invocation) (*domain.Result, error) {
	switch inv.Capability {
	case domain.CapProcessDocument:
		return p.processDocument(ctx, inv)
	default:
		return nil, domain.ErrInternal(fmt.Sprintf("documentai provider cannot serve %q", inv.Capability))
	}
}

func (p *Provider) processDocument(ctx context.Context, inv *domain.Invocation) (*domain.Result, error) {
	if inv.Document == nil || len(inv.Document.Content) == 0 {
		return nil, domain.ErrInvalidInput("document payload is empty")
	}
	if inv.Document.MIMEType == "" {
		return nil, domain.ErrInvalidInput("document MIME type is required")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := p.client.ProcessDocument(ctx, inv.Document.Content, inv.Document.MIMEType)
	if err != nil {
		return nil, err
	}

	return &domain.Result{Text: text}, nil
}
