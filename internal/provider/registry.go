// Package provider holds the adapter registry and the decorators applied to
// every adapter. Adapters translate between the gateway's uniform invocation
// shape and one managed service's wire format.
package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// Registry holds the active adapter for each provider tag. Exactly one
// adapter serves a tag, mirroring the one-credential-per-tag rule.
type Registry struct {
	mu        sync.RWMutex
	providers map[domain.ProviderTag]domain.Provider
	byCap     map[domain.Capability]domain.Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[domain.ProviderTag]domain.Provider),
		byCap:     make(map[domain.Capability]domain.Provider),
	}
}

// Register adds an adapter. Registering a second adapter for a tag or a
// capability already claimed by another adapter is an error.
func (r *Registry) Register(p domain.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag := p.Tag()
	if existing, ok := r.providers[tag]; ok {
		return fmt.Errorf("tag %q already served by provider %q", tag, existing.Name())
	}

	for _, c := range p.Capabilities() {
		if existing, ok := r.byCap[c]; ok {
			return fmt.Errorf("capability %q already served by provider %q", c, existing.Name())
		}
	}

	r.providers[tag] = p
	for _, c := range p.Capabilities() {
		r.byCap[c] = p
	}
	return nil
}

// Lookup returns the adapter serving a tag.
func (r *Registry) Lookup(tag domain.ProviderTag) (domain.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[tag]
	if !ok {
		return nil, fmt.Errorf("no provider for tag %q (registered tags: %v)", tag, r.tagsLocked())
	}
	return p, nil
}

// ForCapability returns the adapter implementing a provider capability.
func (r *Registry) ForCapability(c domain.Capability) (domain.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byCap[c]
	if !ok {
		return nil, fmt.Errorf("no provider for capability %q", c)
	}
	return p, nil
}

// Tags lists registered tags in stable order.
func (r *Registry) Tags() []domain.ProviderTag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tagsLocked()
}

func (r *Registry) tagsLocked() []domain.ProviderTag {
	tags := make([]domain.ProviderTag, 0, len(r.providers))
	for tag := range r.providers {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
