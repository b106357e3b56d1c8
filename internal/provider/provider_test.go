package provider

import (
	"context"
	"testing"
	"time"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// stubProvider counts invocations and fails according to script before
// succeeding.
type stubProvider struct {
	name   string
	tag    domain.ProviderTag
	caps   []domain.Capability
	script []error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Tag() domain.ProviderTag { return s.tag }

func (s *stubProvider) Capabilities() []domain.Capability { return s.caps }

func (s *stubProvider) Invoke(ctx context.Context, inv *domain.Invocation) (*domain.Result, error) {
	s.calls++
	if s.calls <= len(s.script) && s.script[s.calls-1] != nil {
		return nil, s.script[s.calls-1]
	}
	return &domain.Result{Text: "ok"}, nil
}

func newStub(tag domain.ProviderTag, caps ...domain.Capability) *stubProvider {
	return &stubProvider{name: string(tag) + "-stub", tag: tag, caps: caps}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(newStub(domain.TagIdentity, domain.CapVerifyToken)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(newStub(domain.TagGeneration, domain.CapGenerateText)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("duplicate tag rejected", func(t *testing.T) {
		if err := r.Register(newStub(domain.TagIdentity)); err == nil {
			t.Error("Register() succeeded for duplicate tag, want error")
		}
	})

	t.Run("duplicate capability rejected", func(t *testing.T) {
		if err := r.Register(newStub(domain.TagStore, domain.CapGenerateText)); err == nil {
			t.Error("Register() succeeded for duplicate capability, want error")
		}
	})

	t.Run("lookup by tag", func(t *testing.T) {
		p, err := r.Lookup(domain.TagGeneration)
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if p.Name() != "generation-stub" {
			t.Errorf("Name() = %q, want generation-stub", p.Name())
		}
	})

	t.Run("lookup unknown tag", func(t *testing.T) {
		if _, err := r.Lookup(domain.TagExtraction); err == nil {
			t.Error("Lookup() succeeded for unregistered tag, want error")
		}
	})

	t.Run("lookup by capability", func(t *testing.T) {
		p, err := r.ForCapability(domain.CapVerifyToken)
		if err != nil {
			t.Fatalf("ForCapability() error = %v", err)
		}
		if p.Tag() != domain.TagIdentity {
			t.Errorf("Tag() = %v, want identity", p.Tag())
		}
	})

	t.Run("tags are sorted", func(t *testing.T) {
		tags := r.Tags()
		if len(tags) != 2 || tags[0] != domain.TagGeneration || tags[1] != domain.TagIdentity {
			t.Errorf("Tags() = %v, want [generation identity]", tags)
		}
	})
}

func TestRetryProvider(t *testing.T) {
	transient := domain.ErrProviderUnavailable("upstream 503")

	tests := []struct {
		name      string
		script    []error
		wantCalls int
		wantErr   bool
		wantKind  domain.FaultKind
	}{
		{
			name:      "success on first try",
			script:    nil,
			wantCalls: 1,
		},
		{
			name:      "transient then success",
			script:    []error{transient},
			wantCalls: 2,
		},
		{
			name:      "transient twice yields unavailability",
			script:    []error{transient, transient},
			wantCalls: 2,
			wantErr:   true,
			wantKind:  domain.FaultProviderUnavailable,
		},
		{
			name:      "invalid input is not retried",
			script:    []error{domain.ErrInvalidInput("unsupported file type")},
			wantCalls: 1,
			wantErr:   true,
			wantKind:  domain.FaultInvalidInput,
		},
		{
			name:      "rate limit is not retried",
			script:    []error{domain.ErrRateLimited("quota exhausted")},
			wantCalls: 1,
			wantErr:   true,
			wantKind:  domain.FaultRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStub(domain.TagExtraction, domain.CapProcessDocument)
			stub.script = tt.script

			p := NewRetryProvider(stub, time.Millisecond)
			res, err := p.Invoke(context.Background(), &domain.Invocation{Capability: domain.CapProcessDocument})

			if stub.calls != tt.wantCalls {
				t.Errorf("provider invoked %d times, want %d", stub.calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("Invoke() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if got := domain.AsFault(err).Kind; got != tt.wantKind {
					t.Errorf("Kind = %v, want %v", got, tt.wantKind)
				}
			} else if res.Text != "ok" {
				t.Errorf("Text = %q, want ok", res.Text)
			}
		})
	}
}

func TestRetryProvider_CanceledDuringBackoff(t *testing.T) {
	stub := newStub(domain.TagExtraction, domain.CapProcessDocument)
	stub.script = []error{domain.ErrProviderUnavailable("upstream 503")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewRetryProvider(stub, time.Hour)
	_, err := p.Invoke(ctx, &domain.Invocation{Capability: domain.CapProcessDocument})
	if err == nil {
		t.Fatal("Invoke() succeeded, want error")
	}
	if stub.calls != 1 {
		t.Errorf("provider invoked %d times, want 1 (no retry after cancel)", stub.calls)
	}
}

func TestRetryProvider_Delegation(t *testing.T) {
	stub := newStub(domain.TagStore, domain.CapStoreDocument, domain.CapQueryDocuments)
	p := NewRetryProvider(stub, 0)

	if p.Name() != "store-stub" {
		t.Errorf("Name() = %q, want store-stub", p.Name())
	}
	if p.Tag() != domain.TagStore {
		t.Errorf("Tag() = %v, want store", p.Tag())
	}
	if len(p.Capabilities()) != 2 {
		t.Errorf("Capabilities() = %v, want 2", p.Capabilities())
	}
}
