package credential

import (
	"fmt"
	"log/slog"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
	"github.com/udaykumar0515/speakup-gateway/internal/pkg/config"
)

// Kind distinguishes the two credential shapes the broker manages.
type Kind string

const (
	KindAPIKey         Kind = "api_key"
	KindServiceAccount Kind = "service_account"
)

// MissingError reports a credential the configuration does not provide.
// Key is the config path the operator has to set.
type MissingError struct {
	Tag domain.ProviderTag
	Key string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s credential: %s is required", e.Tag, e.Key)
}

// Credential is an opaque handle on secret material bound to one provider
// tag. The gateway passes handles around; only adapters unwrap them.
type Credential struct {
	tag     domain.ProviderTag
	kind    Kind
	key     string
	account *ServiceAccount
}

// Tag is the provider tag this credential is bound to.
func (c *Credential) Tag() domain.ProviderTag { return c.tag }

// Kind is the credential shape.
func (c *Credential) Kind() Kind { return c.kind }

// APIKey unwraps an API key credential.
func (c *Credential) APIKey() (string, bool) {
	if c.kind != KindAPIKey {
		return "", false
	}
	return c.key, true
}

// Account unwraps a service account credential.
func (c *Credential) Account() (*ServiceAccount, bool) {
	if c.kind != KindServiceAccount {
		return nil, false
	}
	return c.account, true
}

// LogValue emits tag and kind only. Secret material never reaches a log line.
func (c *Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("tag", string(c.tag)),
		slog.String("kind", string(c.kind)),
	)
}

// Broker holds exactly one credential per provider tag for the process
// lifetime. Construction fails fast on any missing or malformed credential
// so a misconfigured gateway never starts serving.
type Broker struct {
	creds map[domain.ProviderTag]*Credential
}

// NewBroker resolves every tag's credential from configuration.
func NewBroker(cfg config.ProvidersConfig) (*Broker, error) {
	creds := make(map[domain.ProviderTag]*Credential)

	if cfg.Identity.APIKey == "" {
		return nil, &MissingError{Tag: domain.TagIdentity, Key: "providers.identity.api_key"}
	}
	creds[domain.TagIdentity] = &Credential{
		tag:  domain.TagIdentity,
		kind: KindAPIKey,
		key:  cfg.Identity.APIKey,
	}

	if cfg.Gemini.APIKey == "" {
		return nil, &MissingError{Tag: domain.TagGeneration, Key: "providers.gemini.api_key"}
	}
	creds[domain.TagGeneration] = &Credential{
		tag:  domain.TagGeneration,
		kind: KindAPIKey,
		key:  cfg.Gemini.APIKey,
	}

	if cfg.DocumentAI.CredentialsFile == "" {
		return nil, &MissingError{Tag: domain.TagExtraction, Key: "providers.documentai.credentials_file"}
	}
	extractionSA, err := LoadServiceAccount(cfg.DocumentAI.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("extraction credential: %w", err)
	}
	creds[domain.TagExtraction] = &Credential{
		tag:     domain.TagExtraction,
		kind:    KindServiceAccount,
		account: extractionSA,
	}

	if cfg.Firestore.CredentialsFile == "" {
		return nil, &MissingError{Tag: domain.TagStore, Key: "providers.firestore.credentials_file"}
	}
	storeSA, err := LoadServiceAccount(cfg.Firestore.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}
	creds[domain.TagStore] = &Credential{
		tag:     domain.TagStore,
		kind:    KindServiceAccount,
		account: storeSA,
	}

	return &Broker{creds: creds}, nil
}

// Resolve returns the credential bound to tag.
func (b *Broker) Resolve(tag domain.ProviderTag) (*Credential, error) {
	c, ok := b.creds[tag]
	if !ok {
		return nil, fmt.Errorf("no credential bound to tag %q", tag)
	}
	return c, nil
}
