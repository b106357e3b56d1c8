package domain

import (
	"context"
)

// Provider defines the interface for managed service adapters.
type Provider interface {
	// Name is the adapter's registry name, e.g. "documentai".
	Name() string

	// Tag is the role this provider fills.
	Tag() ProviderTag

	// Capabilities lists the provider capabilities the adapter implements.
	Capabilities() []Capability

	// Invoke performs one call against the managed service. Failures come
	// back as *Fault; the adapter owns its own timeout and never lets an
	// upstream call run unbounded.
	Invoke(ctx context.Context, inv *Invocation) (*Result, error)
}
