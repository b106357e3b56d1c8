package credential

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
	"github.com/udaykumar0515/speakup-gateway/internal/pkg/config"
)

func writeAccountFile(t *testing.T) string {
	t.Helper()

	data, _ := testAccountJSON(t, "")
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write account file: %v", err)
	}
	return path
}

func validProviders(t *testing.T) config.ProvidersConfig {
	t.Helper()

	saPath := writeAccountFile(t)
	return config.ProvidersConfig{
		Identity:   config.IdentityConfig{APIKey: "identity-key"},
		Gemini:     config.GeminiConfig{APIKey: "gemini-key", Model: "gemini-2.0-flash"},
		DocumentAI: config.DocumentAIConfig{ProjectID: "demo", Location: "us", ProcessorID: "p1", CredentialsFile: saPath},
		Firestore:  config.FirestoreConfig{ProjectID: "demo", CredentialsFile: saPath},
	}
}

func TestNewBroker(t *testing.T) {
	broker, err := NewBroker(validProviders(t))
	if err != nil {
		t.Fatalf("NewBroker() error = %v", err)
	}

	tests := []struct {
		tag  domain.ProviderTag
		kind Kind
	}{
		{domain.TagIdentity, KindAPIKey},
		{domain.TagGeneration, KindAPIKey},
		{domain.TagExtraction, KindServiceAccount},
		{domain.TagStore, KindServiceAccount},
	}

	for _, tt := range tests {
		t.Run(string(tt.tag), func(t *testing.T) {
			cred, err := broker.Resolve(tt.tag)
			if err != nil {
				t.Fatalf("Resolve(%v) error = %v", tt.tag, err)
			}
			if cred.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", cred.Kind(), tt.kind)
			}
			if cred.Tag() != tt.tag {
				t.Errorf("Tag() = %v, want %v", cred.Tag(), tt.tag)
			}
		})
	}
}

func TestNewBroker_FailsFast(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.ProvidersConfig)
		wantKey string
	}{
		{
			name:    "missing identity key",
			mutate:  func(c *config.ProvidersConfig) { c.Identity.APIKey = "" },
			wantKey: "providers.identity.api_key",
		},
		{
			name:    "missing gemini key",
			mutate:  func(c *config.ProvidersConfig) { c.Gemini.APIKey = "" },
			wantKey: "providers.gemini.api_key",
		},
		{
			name:    "missing documentai credentials",
			mutate:  func(c *config.ProvidersConfig) { c.DocumentAI.CredentialsFile = "" },
			wantKey: "providers.documentai.credentials_file",
		},
		{
			name:    "missing firestore credentials",
			mutate:  func(c *config.ProvidersConfig) { c.Firestore.CredentialsFile = "" },
			wantKey: "providers.firestore.credentials_file",
		},
		{
			name:   "unreadable credentials file",
			mutate: func(c *config.ProvidersConfig) { c.DocumentAI.CredentialsFile = "/nonexistent/sa.json" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validProviders(t)
			tt.mutate(&cfg)

			_, err := NewBroker(cfg)
			if err == nil {
				t.Fatal("NewBroker() succeeded, want error")
			}
			if tt.wantKey == "" {
				return
			}
			var missing *MissingError
			if !errors.As(err, &missing) {
				t.Fatalf("NewBroker() error = %v, want MissingError", err)
			}
			if missing.Key != tt.wantKey {
				t.Errorf("MissingError.Key = %q, want %q", missing.Key, tt.wantKey)
			}
		})
	}
}

func TestBroker_ResolveUnknownTag(t *testing.T) {
	broker, err := NewBroker(validProviders(t))
	if err != nil {
		t.Fatalf("NewBroker() error = %v", err)
	}

	if _, err := broker.Resolve(domain.ProviderTag("unknown")); err == nil {
		t.Error("Resolve(unknown) succeeded, want error")
	}
}

func TestCredential_Unwrap(t *testing.T) {
	broker, err := NewBroker(validProviders(t))
	if err != nil {
		t.Fatalf("NewBroker() error = %v", err)
	}

	identity, _ := broker.Resolve(domain.TagIdentity)
	if key, ok := identity.APIKey(); !ok || key != "identity-key" {
		t.Errorf("APIKey() = %q, %v; want identity-key, true", key, ok)
	}
	if _, ok := identity.Account(); ok {
		t.Error("Account() on api key credential succeeded")
	}

	extraction, _ := broker.Resolve(domain.TagExtraction)
	if sa, ok := extraction.Account(); !ok || sa.ProjectID != "demo-project" {
		t.Errorf("Account() = %v, %v; want demo-project account", sa, ok)
	}
	if _, ok := extraction.APIKey(); ok {
		t.Error("APIKey() on service account credential succeeded")
	}
}
