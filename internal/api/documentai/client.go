// Package documentai is a minimal client for the Document AI synchronous
// process endpoint, used as the OCR fallback for scanned resumes.
package documentai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/udaykumar0515/speakup-gateway/internal/api/googleapi"
	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// TokenSource mints bearer tokens for the processor endpoint. Satisfied by
// the credential broker's token source.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL, replacing the regional endpoint.
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

// Client is a custom HTTP client for the Document AI API.
type Client struct {
	projectID   string
	location    string
	processorID string
	tokens      TokenSource
	baseURL     string
	httpClient  *http.Client
}

// NewClient creates a new Document AI client bound to one processor.
func NewClient(projectID, location, processorID string, tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		projectID:   projectID,
		location:    location,
		processorID: processorID,
		tokens:      tokens,
		baseURL:     fmt.Sprintf("https://%s-documentai.googleapis.com/v1", location),
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProcessDocument runs one document through the processor and returns the
// recognized text.
func (c *Client) ProcessDocument(ctx context.Context, content []byte, mimeType string) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", domain.AsFault(err).WithProvider(domain.TagExtraction)
	}

	body, err := json.Marshal(&ProcessRequest{
		RawDocument: RawDocument{
			Content:  base64.StdEncoding.EncodeToString(content),
			MIMEType: mimeType,
		},
		SkipHumanReview: true,
	})
	if err != nil {
		return "", domain.ErrInternal("marshaling process request failed").WithProvider(domain.TagExtraction)
	}

	endpoint := fmt.Sprintf("%s/projects/%s/locations/%s/processors/%s:process",
		c.baseURL, c.projectID, c.location, c.processorID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", domain.ErrInternal("building process request failed").WithProvider(domain.TagExtraction)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", googleapi.FaultFromTransport(err, domain.TagExtraction)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", googleapi.FaultFromTransport(err, domain.TagExtraction)
	}

	if resp.StatusCode != http.StatusOK {
		return "", googleapi.FaultFromResponse(resp.StatusCode, respBody, domain.TagExtraction)
	}

	var result ProcessResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", domain.ErrProviderUnavailable("malformed process response").WithProvider(domain.TagExtraction)
	}

	return result.Document.Text, nil
}
