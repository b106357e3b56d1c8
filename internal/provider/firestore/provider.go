// Package firestore adapts the Firestore REST API to the provider
// interface. It persists analysis results and serves per-user history.
package firestore

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/udaykumar0515/speakup-gateway/internal/api/firestore"
	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// ProviderName is the adapter's registry name.
const ProviderName = "firestore"

// defaultTimeout bounds one store or query call.
const defaultTimeout = 15 * time.Second

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

// Provider implements domain.Provider for the store tag.
type Provider struct {
	client     *firestore.Client
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// New creates a new document store provider. The token source supplies
// short-lived access tokens minted from the gateway's service account.
func New(projectID string, tokens firestore.TokenSource, opts ...ProviderOption) *Provider {
	p := &Provider{
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []firestore.ClientOption
	if p.baseURL != "" {
		clientOpts = append(clientOpts, firestore.WithBaseURL(p.baseURL))
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, firestore.WithHTTPClient(p.httpClient))
	}

	p.client = firestore.NewClient(projectID, tokens, clientOpts...)
	return p
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) Tag() domain.ProviderTag {
	return domain.TagStore
}

func (p *Provider) Capabilities() []domain.Capability {
	return []domain.Capability{domain.CapStoreDocument, domain.CapQueryDocuments}
}

// Invoke dispatches on the invocation capability.
func (p *Provider) Invoke(ctx context.Context, inv *domain.Invocation) (*domain.Result, error) {
	switch inv.Capability {
	case domain.CapStoreDocument:
		return p.storeDocument(ctx, inv)
	case domain.CapQueryDocuments:
		return p.queryDocuments(ctx, inv)
	default:
		return nil, domain.ErrInternal(fmt.Sprintf("firestore provider cannot serve %q", inv.Capability))
	}
}

func (p *Provider) storeDocument(ctx context.Context, inv *domain.Invocation) (*domain.Result, error) {
	if inv.Write == nil || inv.Write.Collection == "" {
		return nil, domain.ErrInvalidInput("write payload needs a collection")
	}
	if len(inv.Write.Fields) == 0 {
		return nil, domain.ErrInvalidInput("write payload has no fields")
	}

	fields, err := firestore.EncodeFields(inv.Write.Fields)
	if err != nil {
		return nil, domain.ErrInvalidInput(fmt.Sprintf("unsupported field value: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	name, err := p.client.CreateDocument(ctx, inv.Write.Collection, inv.Write.ID, fields)
	if err != nil {
		return nil, err
	}

	return &domain.Result{Name: name}, nil
}

// queryDocuments returns the user's documents newest first. Ordering
// server-side would require a composite index on (userId, createdAt),
// so results are sorted after decoding and the limit applied then.
func (p *Provider) queryDocuments(ctx context.Context, inv *domain.Invocation) (*domain.Result, error) {
	if inv.Query == nil || inv.Query.Collection == "" {
		return nil, domain.ErrInvalidInput("query payload needs a collection")
	}
	if inv.Query.UserID == "" {
		return nil, domain.ErrInvalidInput("query payload needs a user")
	}

	query := &firestore.StructuredQuery{
		From: []firestore.CollectionSelector{{CollectionID: inv.Query.Collection}},
		Where: &firestore.Filter{
			FieldFilter: &firestore.FieldFilter{
				Field: firestore.FieldReference{FieldPath: "userId"},
				Op:    firestore.OpEqual,
				Value: firestore.Value{StringValue: &inv.Query.UserID},
			},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results, err := p.client.RunQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.StoredDocument, 0, len(results))
	for _, r := range results {
		docs = append(docs, domain.StoredDocument{
			ID:     firestore.DocumentID(r.Name),
			Fields: firestore.DecodeFields(r.Fields),
		})
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return createdAt(docs[i]).After(createdAt(docs[j]))
	})

	if inv.Query.Limit > 0 && len(docs) > inv.Query.Limit {
		docs = docs[:inv.Query.Limit]
	}

	return &domain.Result{Documents: docs}, nil
}

func createdAt(doc domain.StoredDocument) time.Time {
	if t, ok := doc.Fields["createdAt"].(time.Time); ok {
		return t
	}
	return time.Time{}
}
