package provider

import (
	"context"
	"time"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// defaultBaseDelay is the backoff before the single retry.
const defaultBaseDelay = 500 * time.Millisecond

// RetryProvider wraps an adapter and retries transient faults exactly once.
// Anything still failing after the retry surfaces to the caller unchanged;
// non-transient faults are never retried.
type RetryProvider struct {
	inner     domain.Provider
	baseDelay time.Duration
}

// NewRetryProvider creates the retry decorator. A zero baseDelay uses the
// default.
func NewRetryProvider(inner domain.Provider, baseDelay time.Duration) *RetryProvider {
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	return &RetryProvider{
		inner:     inner,
		baseDelay: baseDelay,
	}
}

func (p *RetryProvider) Name() string { return p.inner.Name() }

func (p *RetryProvider) Tag() domain.ProviderTag { return p.inner.Tag() }

func (p *RetryProvider) Capabilities() []domain.Capability { return p.inner.Capabilities() }

// Invoke delegates to the wrapped adapter, retrying once on a transient
// fault after the backoff delay.
func (p *RetryProvider) Invoke(ctx context.Context, inv *domain.Invocation) (*domain.Result, error) {
	res, err := p.inner.Invoke(ctx, inv)
	if err == nil {
		return res, nil
	}

	fault := domain.AsFault(err)
	if !fault.Transient {
		return nil, err
	}

	select {
	case <-time.After(p.baseDelay):
	case <-ctx.Done():
		return nil, domain.ErrProviderUnavailable("provider call canceled during backoff").WithProvider(p.inner.Tag())
	}

	res, err = p.inner.Invoke(ctx, inv)
	if err == nil {
		return res, nil
	}
	return nil, err
}
