package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// OAuth scopes for the managed services the gateway fronts.
const (
	ScopeCloudPlatform = "https://www.googleapis.com/auth/cloud-platform"
	ScopeDatastore     = "https://www.googleapis.com/auth/datastore"
)

const (
	// assertionLifetime is the validity window of the signed JWT assertion.
	assertionLifetime = time.Hour

	// refreshSkew refreshes cached tokens this long before they expire so a
	// token never dies mid-request.
	refreshSkew = time.Minute

	grantTypeJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

// TokenSource mints short-lived access tokens for one service account and
// one scope. Tokens are cached until near expiry. Safe for concurrent use.
type TokenSource struct {
	account *ServiceAccount
	scope   string
	client  *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewTokenSource creates a token source. A nil client falls back to
// http.DefaultClient.
func NewTokenSource(account *ServiceAccount, scope string, client *http.Client) *TokenSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &TokenSource{
		account: account,
		scope:   scope,
		client:  client,
	}
}

// Token returns a valid access token, minting a fresh one when the cache is
// empty or inside the refresh window. Failures come back as faults so the
// caller's retry policy applies uniformly.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Until(ts.expiry) > refreshSkew {
		return ts.token, nil
	}

	token, expiresIn, err := ts.exchange(ctx)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
	return ts.token, nil
}

// exchange signs a JWT assertion and trades it for an access token.
func (ts *TokenSource) exchange(ctx context.Context) (string, int, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   ts.account.ClientEmail,
		"scope": ts.scope,
		"aud":   ts.account.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if ts.account.PrivateKeyID != "" {
		tok.Header["kid"] = ts.account.PrivateKeyID
	}

	assertion, err := tok.SignedString(ts.account.signingKey)
	if err != nil {
		return "", 0, domain.ErrInternal("signing token assertion failed")
	}

	form := url.Values{}
	form.Set("grant_type", grantTypeJWTBearer)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.account.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, domain.ErrInternal("building token request failed")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.client.Do(req)
	if err != nil {
		return "", 0, domain.ErrProviderUnavailable("token exchange unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", 0, domain.ErrProviderUnavailable("reading token response failed")
	}

	if resp.StatusCode != http.StatusOK {
		// A rejected assertion means the service account itself is bad.
		// The client cannot fix that, so it surfaces as unavailability.
		if resp.StatusCode >= 500 {
			return "", 0, domain.ErrProviderUnavailable(
				fmt.Sprintf("token endpoint returned %d", resp.StatusCode))
		}
		return "", 0, domain.NewFault(domain.FaultProviderUnavailable,
			fmt.Sprintf("token endpoint rejected assertion with %d", resp.StatusCode))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", 0, domain.ErrProviderUnavailable("malformed token response")
	}
	if parsed.AccessToken == "" {
		return "", 0, domain.ErrProviderUnavailable("token response missing access_token")
	}

	return parsed.AccessToken, parsed.ExpiresIn, nil
}
