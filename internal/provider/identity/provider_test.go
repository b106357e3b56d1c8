package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

func TestProvider_Metadata(t *testing.T) {
	p := New("test-key")

	if p.Name() != ProviderName {
		t.Errorf("Name() = %q, want %q", p.Name(), ProviderName)
	}
	if p.Tag() != domain.TagIdentity {
		t.Errorf("Tag() = %q, want %q", p.Tag(), domain.TagIdentity)
	}

	caps := p.Capabilities()
	if len(caps) != 1 || caps[0] != domain.CapVerifyToken {
		t.Errorf("Capabilities() = %v, want [%s]", caps, domain.CapVerifyToken)
	}
}

func TestProvider_VerifyToken(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"kind": "identitytoolkit#GetAccountInfoResponse",
			"users": []map[string]any{
				{"localId": "user-77", "email": "casey@example.com"},
			},
		})
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	result, err := p.Invoke(context.Background(), &domain.Invocation{
		Capability: domain.CapVerifyToken,
		Token:      "valid-token",
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if result.Identity == nil {
		t.Fatal("expected identity in result")
	}
	if result.Identity.UserID != "user-77" {
		t.Errorf("UserID = %q, want %q", result.Identity.UserID, "user-77")
	}
	if result.Identity.Email != "casey@example.com" {
		t.Errorf("Email = %q, want %q", result.Identity.Email, "casey@example.com")
	}
	if calls != 1 {
		t.Errorf("upstream calls = %d, want 1", calls)
	}
}

func TestProvider_VerifyToken_MissingToken(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	_, err := p.Invoke(context.Background(), &domain.Invocation{
		Capability: domain.CapVerifyToken,
	})

	var fault *domain.Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected fault, got %v", err)
	}
	if fault.Kind != domain.FaultUnauthenticated {
		t.Errorf("Kind = %q, want %q", fault.Kind, domain.FaultUnauthenticated)
	}
	if calls != 0 {
		t.Errorf("upstream calls = %d, want 0", calls)
	}
}

func TestProvider_VerifyToken_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    400,
				"message": "TOKEN_EXPIRED",
				"status":  "INVALID_ARGUMENT",
			},
		})
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	_, err := p.Invoke(context.Background(), &domain.Invocation{
		Capability: domain.CapVerifyToken,
		Token:      "stale-token",
	})

	var fault *domain.Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected fault, got %v", err)
	}
	if fault.Kind != domain.FaultUnauthenticated {
		t.Errorf("Kind = %q, want %q", fault.Kind, domain.FaultUnauthenticated)
	}
}

func TestProvider_UnknownCapability(t *testing.T) {
	p := New("test-key")

	_, err := p.Invoke(context.Background(), &domain.Invocation{
		Capability: domain.CapGenerateText,
	})

	var fault *domain.Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected fault, got %v", err)
	}
	if fault.Kind != domain.FaultInternal {
		t.Errorf("Kind = %q, want %q", fault.Kind, domain.FaultInternal)
	}
}
