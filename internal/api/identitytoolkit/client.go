// Package identitytoolkit is a minimal client for the Identity Toolkit
// accounts:lookup endpoint, which verifies client ID tokens server-side.
package identitytoolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/udaykumar0515/speakup-gateway/internal/api/googleapi"
	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

const defaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL. Pointing it at
// http://<host>/identitytoolkit.googleapis.com/v1 targets the local
// emulator.
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

// Client is a custom HTTP client for the Identity Toolkit API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Identity Toolkit client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// tokenRejections are upstream messages that mean the CLIENT's token is bad,
// as opposed to the gateway's own API key.
var tokenRejections = []string{
	"INVALID_ID_TOKEN",
	"TOKEN_EXPIRED",
	"USER_NOT_FOUND",
	"USER_DISABLED",
	"MISSING_ID_TOKEN",
}

// LookupAccount resolves an ID token to the account it belongs to.
func (c *Client) LookupAccount(ctx context.Context, idToken string) (*User, error) {
	body, err := json.Marshal(&LookupRequest{IDToken: idToken})
	if err != nil {
		return nil, domain.ErrInternal("marshaling lookup request failed").WithProvider(domain.TagIdentity)
	}

	endpoint := c.baseURL + "/accounts:lookup?key=" + url.QueryEscape(c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, domain.ErrInternal("building lookup request failed").WithProvider(domain.TagIdentity)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, googleapi.FaultFromTransport(err, domain.TagIdentity)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, googleapi.FaultFromTransport(err, domain.TagIdentity)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyError(resp.StatusCode, respBody)
	}

	var result LookupResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, domain.ErrProviderUnavailable("malformed lookup response").WithProvider(domain.TagIdentity)
	}

	if len(result.Users) == 0 {
		return nil, domain.ErrUnauthenticated("unknown account")
	}

	user := &result.Users[0]
	if user.Disabled {
		return nil, domain.ErrUnauthenticated("account disabled")
	}

	return user, nil
}

// classifyError separates client token rejections from gateway credential
// problems before handing off to the generic classifier.
func (c *Client) classifyError(status int, body []byte) *domain.Fault {
	if e := googleapi.ParseErrorResponse(body); e != nil {
		for _, rejection := range tokenRejections {
			if strings.HasPrefix(e.Message, rejection) {
				return domain.ErrUnauthenticated("identity token rejected")
			}
		}
		if strings.HasPrefix(e.Message, "API key not valid") {
			return domain.NewFault(domain.FaultProviderUnavailable,
				"provider rejected gateway credential").WithProvider(domain.TagIdentity)
		}
		return googleapi.ClassifyStatus(status, e.Status, e.Message, domain.TagIdentity)
	}
	return googleapi.FaultFromResponse(status, body, domain.TagIdentity)
}
