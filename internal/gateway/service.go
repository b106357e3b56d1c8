// Package gateway orchestrates client requests across the provider
// adapters. Every request walks the same lifecycle: authenticate the
// caller through the identity provider, dispatch to the providers the
// capability needs, aggregate their results, settle, and audit.
package gateway

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/udaykumar0515/speakup-gateway/internal/aptitude"
	"github.com/udaykumar0515/speakup-gateway/internal/domain"
	"github.com/udaykumar0515/speakup-gateway/internal/provider"
	"github.com/udaykumar0515/speakup-gateway/internal/tokens"
)

// maxPromptTokens bounds any single generation prompt. Oversized prompts
// are rejected before a generation call is dispatched.
const maxPromptTokens = 30000

// auditTimeout bounds the audit write that runs after a request settles.
const auditTimeout = 5 * time.Second

// AuditStore persists settled requests. The sqlite store implements it;
// a nil store disables auditing.
type AuditStore interface {
	Record(ctx context.Context, req *domain.GatewayRequest) error
}

// Models names the generation models the gateway dispatches to.
type Models struct {
	// Default serves feedback and question generation.
	Default string

	// Analysis serves resume analysis. Falls back to Default when empty.
	Analysis string
}

// Service is the request gateway. It owns no credentials and speaks no
// provider protocol; both live behind the adapter registry.
type Service struct {
	registry *provider.Registry
	library  *aptitude.Library
	counters *tokens.Registry
	models   Models
	audit    AuditStore
	logger   *slog.Logger
	newRand  func() *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithAuditStore enables request auditing.
func WithAuditStore(store AuditStore) Option {
	return func(s *Service) {
		s.audit = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithModels sets the generation models.
func WithModels(m Models) Option {
	return func(s *Service) {
		s.models = m
	}
}

// WithRandom sets the source of per-request randomness used for question
// sampling and option shuffling. Tests inject a seeded source.
func WithRandom(newRand func() *rand.Rand) Option {
	return func(s *Service) {
		s.newRand = newRand
	}
}

// New creates the gateway service.
func New(registry *provider.Registry, library *aptitude.Library, counters *tokens.Registry, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		library:  library,
		counters: counters,
		models:   Models{Default: "gemini-2.0-flash"},
		logger:   slog.Default(),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.models.Analysis == "" {
		s.models.Analysis = s.models.Default
	}
	return s
}

// ProviderTags lists the registered provider tags, for health reporting.
func (s *Service) ProviderTags() []domain.ProviderTag {
	return s.registry.Tags()
}

// begin creates the request record for one gateway capability.
func (s *Service) begin(capability domain.Capability) *domain.GatewayRequest {
	return domain.NewGatewayRequest(uuid.New().String(), capability)
}

// authenticate verifies the caller's token through the identity provider
// and records the verified user on the request. A missing token fails
// before any provider is invoked.
func (s *Service) authenticate(ctx context.Context, req *domain.GatewayRequest, token string) *domain.Fault {
	if err := req.Advance(domain.StateAuthenticating); err != nil {
		return domain.AsFault(err)
	}

	if strings.TrimSpace(token) == "" {
		return domain.ErrUnauthenticated("missing identity token")
	}

	res, err := s.invoke(ctx, req, domain.TagIdentity, &domain.Invocation{
		Capability: domain.CapVerifyToken,
		Token:      token,
	})
	if err != nil {
		return domain.AsFault(err)
	}
	if res.Identity == nil || res.Identity.UserID == "" {
		return domain.ErrUnauthenticated("identity token resolved to no account").WithProvider(domain.TagIdentity)
	}

	req.UserID = res.Identity.UserID
	return nil
}

// invoke dispatches one provider call and records the provider tag on the
// request. Provider calls run on a context detached from client
// cancellation: a dropped connection lets the in-flight call complete and
// the result is simply discarded. The adapter's own timeout still bounds
// the call.
func (s *Service) invoke(ctx context.Context, req *domain.GatewayRequest, tag domain.ProviderTag, inv *domain.Invocation) (*domain.Result, error) {
	p, err := s.registry.Lookup(tag)
	if err != nil {
		s.logger.Error("provider lookup failed",
			slog.String("request_id", req.ID),
			slog.String("tag", string(tag)),
		)
		return nil, domain.ErrInternal("no provider registered for " + string(tag))
	}

	req.MarkProvider(tag)
	return p.Invoke(context.WithoutCancel(ctx), inv)
}

// checkPromptBudget rejects prompts that would blow the generation
// model's context window. Counting failures are advisory only.
func (s *Service) checkPromptBudget(model, prompt string) *domain.Fault {
	count, err := s.counters.CountTokens(&domain.TokenCountRequest{Model: model, Text: prompt})
	if err != nil {
		s.logger.Debug("token count failed", slog.String("model", model), slog.String("error", err.Error()))
		return nil
	}
	if count.InputTokens > maxPromptTokens {
		return domain.ErrInvalidInput("prompt is too large to process")
	}
	return nil
}

// settle records the terminal outcome, logs it, and hands the request to
// the audit store. Audit writes are fire-and-forget on their own context
// so storage latency never blocks a response.
func (s *Service) settle(ctx context.Context, req *domain.GatewayRequest, fault *domain.Fault) {
	if err := req.Settle(fault); err != nil {
		s.logger.Error("request settle failed",
			slog.String("request_id", req.ID),
			slog.String("state", string(req.State)),
			slog.String("error", err.Error()),
		)
		return
	}

	attrs := []slog.Attr{
		slog.String("request_id", req.ID),
		slog.String("capability", string(req.Capability)),
		slog.String("state", string(req.State)),
		slog.Duration("duration", req.Duration),
	}
	if req.UserID != "" {
		attrs = append(attrs, slog.String("user_id", req.UserID))
	}
	if fault != nil {
		attrs = append(attrs, slog.String("fault_kind", string(fault.Kind)), slog.String("fault", fault.Message))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "request settled", attrs...)

	if s.audit == nil {
		return
	}
	go func() {
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
		defer cancel()
		if err := s.audit.Record(actx, req); err != nil {
			s.logger.Warn("audit record failed",
				slog.String("request_id", req.ID),
				slog.String("error", err.Error()),
			)
		}
	}()
}
