// Package firestore is a minimal client for the Firestore REST API,
// covering document creation and single-collection queries.
package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/udaykumar0515/speakup-gateway/internal/api/googleapi"
	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

const defaultBaseURL = "https://firestore.googleapis.com/v1"

// TokenSource mints bearer tokens for the Firestore endpoint.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL. Pointing it at the local emulator
// works because the emulator accepts any bearer token.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client is a custom HTTP client for the Firestore REST API.
type Client struct {
	projectID  string
	tokens     TokenSource
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Firestore client bound to one project's default
// database.
func NewClient(projectID string, tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		projectID:  projectID,
		tokens:     tokens,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// databasePath is the documents root for the default database.
func (c *Client) databasePath() string {
	return fmt.Sprintf("projects/%s/databases/(default)/documents", c.projectID)
}

// CreateDocument writes a new document into collection. A non-empty docID
// fixes the document ID; otherwise Firestore assigns one. Returns the new
// document's resource name.
func (c *Client) CreateDocument(ctx context.Context, collection, docID string, fields map[string]Value) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", domain.AsFault(err).WithProvider(domain.TagStore)
	}

	body, err := json.Marshal(&Document{Fields: fields})
	if err != nil {
		return "", domain.ErrInternal("marshaling document failed").WithProvider(domain.TagStore)
	}

	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.databasePath(), collection)
	if docID != "" {
		endpoint += "?documentId=" + url.QueryEscape(docID)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", domain.ErrInternal("building create request failed").WithProvider(domain.TagStore)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", googleapi.FaultFromTransport(err, domain.TagStore)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", googleapi.FaultFromTransport(err, domain.TagStore)
	}

	if resp.StatusCode != http.StatusOK {
		return "", googleapi.FaultFromResponse(resp.StatusCode, respBody, domain.TagStore)
	}

	var created Document
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", domain.ErrProviderUnavailable("malformed create response").WithProvider(domain.TagStore)
	}

	return created.Name, nil
}

// RunQuery executes a structured query and returns the matching documents
// in result order.
func (c *Client) RunQuery(ctx context.Context, query *StructuredQuery) ([]Document, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, domain.AsFault(err).WithProvider(domain.TagStore)
	}

	body, err := json.Marshal(&RunQueryRequest{StructuredQuery: query})
	if err != nil {
		return nil, domain.ErrInternal("marshaling query failed").WithProvider(domain.TagStore)
	}

	endpoint := fmt.Sprintf("%s/%s:runQuery", c.baseURL, c.databasePath())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, domain.ErrInternal("building query request failed").WithProvider(domain.TagStore)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, googleapi.FaultFromTransport(err, domain.TagStore)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, googleapi.FaultFromTransport(err, domain.TagStore)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, googleapi.FaultFromResponse(resp.StatusCode, respBody, domain.TagStore)
	}

	// runQuery answers with a JSON array; elements without a document are
	// bookkeeping entries.
	var results []RunQueryResult
	if err := json.Unmarshal(respBody, &results); err != nil {
		return nil, domain.ErrProviderUnavailable("malformed query response").WithProvider(domain.TagStore)
	}

	var docs []Document
	for _, r := range results {
		if r.Document != nil {
			docs = append(docs, *r.Document)
		}
	}
	return docs, nil
}

// DocumentID extracts the document ID from a resource name.
func DocumentID(name string) string {
	idx := strings.LastIndex(name, "/")
	if idx < 0 {
		return name
	}
	return name[idx+1:]
}
