package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

type staticTokens struct {
	token string
}

func (s *staticTokens) Token(ctx context.Context) (string, error) {
	return s.token, nil
}

func TestProvider_Metadata(t *testing.T) {
	p := New("proj", &staticTokens{token: "tok"})

	if p.Name() != ProviderName {
		t.Errorf("Name() = %q, want %q", p.Name(), ProviderName)
	}
	if p.Tag() != domain.TagStore {
		t.Errorf("Tag() = %q, want %q", p.Tag(), domain.TagStore)
	}

	caps := p.Capabilities()
	if len(caps) != 2 {
		t.Fatalf("Capabilities() = %v, want two entries", caps)
	}
	if caps[0] != domain.CapStoreDocument || caps[1] != domain.CapQueryDocuments {
		t.Errorf("Capabilities() = %v", caps)
	}
}

func TestProvider_StoreDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("documentId"); got != "res-1" {
			t.Errorf("documentId = %q, want %q", got, "res-1")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"name": "projects/proj/databases/(default)/documents/resume_results/res-1",
		})
	}))
	defer server.Close()

	p := New("proj", &staticTokens{token: "tok"},
		WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	result, err := p.Invoke(context.Background(), &domain.Invocation{
		Capability: domain.CapStoreDocument,
		Write: &domain.WritePayload{
			Collection: "resume_results",
			ID:         "res-1",
			Fields: map[string]any{
				"userId":   "user-9",
				"atsScore": 82,
			},
		},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if !strings.HasSuffix(result.Name, "resume_results/res-1") {
		t.Errorf("Name = %q, want resource name", result.Name)
	}
}

func TestProvider_StoreDocument_Validation(t *testing.T) {
	p := New("proj", &staticTokens{token: "tok"})

	tests := []struct {
		name string
		inv  *domain.Invocation
	}{
		{
			name: "nil write",
			inv:  &domain.Invocation{Capability: domain.CapStoreDocument},
		},
		{
			name: "missing collection",
			inv: &domain.Invocation{
				Capability: domain.CapStoreDocument,
				Write:      &domain.WritePayload{Fields: map[string]any{"a": 1}},
			},
		},
		{
			name: "no fields",
			inv: &domain.Invocation{
				Capability: domain.CapStoreDocument,
				Write:      &domain.WritePayload{Collection: "resume_results"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Invoke(context.Background(), tt.inv)

			var fault *domain.Fault
			if !errors.As(err, &fault) {
				t.Fatalf("expected fault, got %v", err)
			}
			if fault.Kind != domain.FaultInvalidInput {
				t.Errorf("Kind = %q, want %q", fault.Kind, domain.FaultInvalidInput)
			}
		})
	}
}

// Query results come back newest first regardless of wire order, and the
// query itself must not carry an orderBy clause.
func TestProvider_QueryDocuments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		var req map[string]any
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("unmarshaling query request: %v", err)
		}
		sq, ok := req["structuredQuery"].(map[string]any)
		if !ok {
			t.Fatal("request has no structuredQuery")
		}
		if _, ok := sq["orderBy"]; ok {
			t.Error("query must not order server-side")
		}
		if _, ok := sq["limit"]; ok {
			t.Error("query must not limit server-side")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"document": map[string]any{
					"name": "projects/proj/databases/(default)/documents/aptitude_results/old",
					"fields": map[string]any{
						"userId":    map[string]any{"stringValue": "user-9"},
						"score":     map[string]any{"integerValue": "40"},
						"createdAt": map[string]any{"timestampValue": "2026-08-01T10:00:00Z"},
					},
				},
			},
			{
				"document": map[string]any{
					"name": "projects/proj/databases/(default)/documents/aptitude_results/newest",
					"fields": map[string]any{
						"userId":    map[string]any{"stringValue": "user-9"},
						"score":     map[string]any{"integerValue": "90"},
						"createdAt": map[string]any{"timestampValue": "2026-08-20T10:00:00Z"},
					},
				},
			},
			{
				"document": map[string]any{
					"name": "projects/proj/databases/(default)/documents/aptitude_results/middle",
					"fields": map[string]any{
						"userId":    map[string]any{"stringValue": "user-9"},
						"score":     map[string]any{"integerValue": "70"},
						"createdAt": map[string]any{"timestampValue": "2026-08-10T10:00:00Z"},
					},
				},
			},
			{"readTime": "2026-08-21T00:00:00Z"},
		})
	}))
	defer server.Close()

	p := New("proj", &staticTokens{token: "tok"},
		WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	result, err := p.Invoke(context.Background(), &domain.Invocation{
		Capability: domain.CapQueryDocuments,
		Query: &domain.QueryPayload{
			Collection: "aptitude_results",
			UserID:     "user-9",
			Limit:      2,
		},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if len(result.Documents) != 2 {
		t.Fatalf("len(Documents) = %d, want 2", len(result.Documents))
	}
	if result.Documents[0].ID != "newest" {
		t.Errorf("Documents[0].ID = %q, want %q", result.Documents[0].ID, "newest")
	}
	if result.Documents[1].ID != "middle" {
		t.Errorf("Documents[1].ID = %q, want %q", result.Documents[1].ID, "middle")
	}

	if score, ok := result.Documents[0].Fields["score"].(int64); !ok || score != 90 {
		t.Errorf("Documents[0] score = %v, want 90", result.Documents[0].Fields["score"])
	}
}

func TestProvider_QueryDocuments_Validation(t *testing.T) {
	p := New("proj", &staticTokens{token: "tok"})

	tests := []struct {
		name string
		inv  *domain.Invocation
	}{
		{
			name: "nil query",
			inv:  &domain.Invocation{Capability: domain.CapQueryDocuments},
		},
		{
			name: "missing collection",
			inv: &domain.Invocation{
				Capability: domain.CapQueryDocuments,
				Query:      &domain.QueryPayload{UserID: "user-9"},
			},
		},
		{
			name: "missing user",
			inv: &domain.Invocation{
				Capability: domain.CapQueryDocuments,
				Query:      &domain.QueryPayload{Collection: "aptitude_results"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Invoke(context.Background(), tt.inv)

			var fault *domain.Fault
			if !errors.As(err, &fault) {
				t.Fatalf("expected fault, got %v", err)
			}
			if fault.Kind != domain.FaultInvalidInput {
				t.Errorf("Kind = %q, want %q", fault.Kind, domain.FaultInvalidInput)
			}
		})
	}
}

func TestProvider_UnknownCapability(t *testing.T) {
	p := New("proj", &staticTokens{token: "tok"})

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
