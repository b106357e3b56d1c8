// Package credential loads and brokers the secret material the gateway
// holds on behalf of its clients. Credentials are resolved once at startup
// and never reloaded; clients never see them.
package credential

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// defaultTokenURI is the exchange endpoint baked into service account files
// that omit token_uri.
const defaultTokenURI = "https://oauth2.googleapis.com/token"

// customTokenAudience is the fixed audience the identity platform requires
// in custom sign-in tokens.
const customTokenAudience = "https://identitytoolkit.googleapis.com/google.identity.identitytoolkit.v1.IdentityToolkit"

// ServiceAccount is a parsed service account key file. The private key is
// validated at load time so a malformed file fails startup, not a request.
type ServiceAccount struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	TokenURI     string `json:"token_uri"`

	signingKey *rsa.PrivateKey
}

// LoadServiceAccount reads and validates a service account key file.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account %s: %w", path, err)
	}
	return ParseServiceAccount(data)
}

// ParseServiceAccount validates raw service account JSON.
func ParseServiceAccount(data []byte) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}

	if sa.Type != "service_account" {
		return nil, fmt.Errorf("service account has type %q, want service_account", sa.Type)
	}
	if sa.ProjectID == "" {
		return nil, fmt.Errorf("service account missing project_id")
	}
	if sa.ClientEmail == "" {
		return nil, fmt.Errorf("service account missing client_email")
	}
	if sa.PrivateKey == "" {
		return nil, fmt.Errorf("service account missing private_key")
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("service account private key: %w", err)
	}
	sa.signingKey = key

	if sa.TokenURI == "" {
		sa.TokenURI = defaultTokenURI
	}

	return &sa, nil
}

// CustomToken mints a signed sign-in token for uid, in the format the
// identity platform's custom-token exchange accepts. The gateway never
// mints identity tokens while serving; this exists for dev tooling that
// needs a token to exchange against an emulator or test project.
func (sa *ServiceAccount) CustomToken(uid string, lifetime time.Duration) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("custom token needs a uid")
	}
	if lifetime <= 0 || lifetime > time.Hour {
		lifetime = time.Hour
	}

	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": sa.ClientEmail,
		"sub": sa.ClientEmail,
		"aud": customTokenAudience,
		"uid": uid,
		"iat": now.Unix(),
		"exp": now.Add(lifetime).Unix(),
	})
	if sa.PrivateKeyID != "" {
		tok.Header["kid"] = sa.PrivateKeyID
	}
	return tok.SignedString(sa.signingKey)
}

// LogValue keeps key material out of the logs. Only the identity of the
// account is ever emitted.
func (sa *ServiceAccount) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("client_email", sa.ClientEmail),
		slog.String("project_id", sa.ProjectID),
	)
}
