// Package identity adapts the Identity Toolkit API to the provider
// interface. It serves token verification for every authenticated request.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/udaykumar0515/speakup-gateway/internal/api/identitytoolkit"
	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// ProviderName is the adapter's registry name.
const ProviderName = "identity"

// defaultTimeout bounds one verification call.
const defaultTimeout = 10 * time.Second

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

// Provider implements domain.Provider for the identity tag.
type Provider struct {
	client     *identitytoolkit.Client
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// New creates a new identity provider.
func New(apiKey string, opts ...ProviderOption) *Provider {
	p := &Provider{
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []identitytoolkit.ClientOption
	if p.baseURL != "" {
		clientOpts = append(clientOpts, identitytoolkit.WithBaseURL(p.baseURL))
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, identitytoolkit.WithHTTPClient(p.httpClient))
	}

	p.client = identitytoolkit.NewClient(apiKey, clientOpts...)
	return p
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) Tag() domain.ProviderTag {
	return domain.TagIdentity
}

func (p *Provider) Capabilities() []domain.Capability {
	return []domain.Capability{domain.CapVerifyToken}
}

// Invoke dispatches on the invocation capability.
func (p *Provider) Invoke(ctx context.Context, inv *domain.Invocation) (*domain.Result, error) {
	switch inv.Capability {
	case domain.CapVerifyToken:
		return p.verifyToken(ctx, inv)
	default:
		return nil, domain.ErrInternal(fmt.Sprintf("identity provider cannot serve %q", inv.Capability))
	}
}

func (p *Provider) verifyToken(ctx context.Context, inv *domain.Invocation) (*domain.Result, error) {
	if inv.Token == "" {
		return nil, domain.ErrUnauthenticated("missing identity token")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	user, err := p.client.LookupAccount(ctx, inv.Token)
	if err != nil {
		return nil, err
	}

	return &domain.Result{
		Identity: &domain.Identity{
			UserID: user.LocalID,
			Email:  user.Email,
		},
	}, nil
}
