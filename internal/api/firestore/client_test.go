package firestore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

type staticTokens string

func (s staticTokens) Token(ctx context.Context) (string, error) { return string(s), nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("demo-project", staticTokens("at-test"),
		WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestCreateDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/projects/demo-project/databases/(default)/documents/resume_results"
		if r.URL.Path != wantPath {
			t.Errorf("path = %q, want %q", r.URL.Path, wantPath)
		}
		if got := r.URL.Query().Get("documentId"); got != "doc-1" {
			t.Errorf("documentId = %q, want doc-1", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer at-test" {
			t.Errorf("authorization = %q", got)
		}

		var doc Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if v := doc.Fields["userId"].StringValue; v == nil || *v != "user-1" {
			t.Errorf("userId field = %+v, want user-1", doc.Fields["userId"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"projects/demo-project/databases/(default)/documents/resume_results/doc-1","createTime":"2026-08-23T10:30:00Z"}`))
	})

	fields, err := EncodeFields(map[string]any{"userId": "user-1"})
	if err != nil {
		t.Fatalf("EncodeFields() error = %v", err)
	}

	name, err := client.CreateDocument(context.Background(), "resume_results", "doc-1", fields)
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if DocumentID(name) != "doc-1" {
		t.Errorf("DocumentID(%q) = %q, want doc-1", name, DocumentID(name))
	}
}

func TestRunQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/projects/demo-project/databases/(default)/documents:runQuery"
		if r.URL.Path != wantPath {
			t.Errorf("path = %q, want %q", r.URL.Path, wantPath)
		}

		var req RunQueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		q := req.StructuredQuery
		if q == nil || len(q.From) != 1 || q.From[0].CollectionID != "aptitude_results" {
			t.Fatalf("query from = %+v, want aptitude_results", q)
		}
		if q.Where == nil || q.Where.FieldFilter == nil || q.Where.FieldFilter.Field.FieldPath != "userId" {
			t.Errorf("query where = %+v, want userId filter", q.Where)
		}
		if len(q.OrderBy) != 1 || q.OrderBy[0].Direction != DirectionDesc {
			t.Errorf("query orderBy = %+v, want createdAt desc", q.OrderBy)
		}

		w.Header().Set("Content-Type", "application/json")
		// The second element is a read-time-only entry and must be skipped.
		w.Write([]byte(`[
			{"document":{"name":"projects/demo-project/databases/(default)/documents/aptitude_results/r1","fields":{"score":{"integerValue":"85"}}},"readTime":"2026-08-23T10:30:00Z"},
			{"readTime":"2026-08-23T10:30:00Z"}
		]`))
	})

	uid := "user-1"
	docs, err := client.RunQuery(context.Background(), &StructuredQuery{
		From: []CollectionSelector{{CollectionID: "aptitude_results"}},
		Where: &Filter{FieldFilter: &FieldFilter{
			Field: FieldReference{FieldPath: "userId"},
			Op:    OpEqual,
			Value: Value{StringValue: &uid},
		}},
		OrderBy: []Order{{Field: FieldReference{FieldPath: "createdAt"}, Direction: DirectionDesc}},
		Limit:   10,
	})
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("RunQuery() returned %d documents, want 1", len(docs))
	}
	decoded := DecodeFields(docs[0].Fields)
	if decoded["score"] != int64(85) {
		t.Errorf("score = %v, want 85", decoded["score"])
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"Missing or insufficient permissions.","status":"PERMISSION_DENIED"}}`))
	})

	_, err := client.CreateDocument(context.Background(), "resume_results", "", map[string]Value{})
	if err == nil {
		t.Fatal("CreateDocument() succeeded, want error")
	}

	fault := domain.AsFault(err)
	if fault.Kind != domain.FaultProviderUnavailable {
		t.Errorf("Kind = %v, want %v", fault.Kind, domain.FaultProviderUnavailable)
	}
	if fault.Provider != domain.TagStore {
		t.Errorf("Provider = %v, want %v", fault.Provider, domain.TagStore)
	}
}
