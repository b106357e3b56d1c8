// Package domain provides the canonical types and error taxonomy shared by
// every layer of the gateway.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// FaultKind is the category of a gateway fault. Kinds are the only error
// vocabulary clients ever see; provider-specific detail stays in the logs.
type FaultKind string

const (
	// FaultUnauthenticated indicates a missing, malformed or rejected
	// identity token.
	FaultUnauthenticated FaultKind = "Unauthenticated"

	// FaultUnauthorized indicates a verified caller lacking access to the
	// requested resource.
	FaultUnauthorized FaultKind = "Unauthorized"

	// FaultInvalidInput indicates a request the gateway refuses to forward.
	FaultInvalidInput FaultKind = "InvalidInput"

	// FaultProviderUnavailable indicates an upstream failure that persisted
	// through retry.
	FaultProviderUnavailable FaultKind = "ProviderUnavailable"

	// FaultRateLimited indicates upstream quota exhaustion.
	FaultRateLimited FaultKind = "RateLimited"

	// FaultInternal indicates a defect inside the gateway itself.
	FaultInternal FaultKind = "InternalError"
)

// Fault is a canonical gateway error. Adapters translate every upstream
// failure into a Fault before it crosses back into the gateway, so callers
// only ever reason about kinds.
type Fault struct {
	// Kind is the category of the fault.
	Kind FaultKind `json:"kind"`

	// Message is a human-readable description safe to show clients. It must
	// never carry upstream response bodies or secret material.
	Message string `json:"message"`

	// Provider is the tag of the provider the fault originated from, empty
	// for faults raised by the gateway itself.
	Provider ProviderTag `json:"-"`

	// Transient marks faults worth retrying once at the adapter level,
	// such as network errors and upstream 5xx responses.
	Transient bool `json:"-"`

	// StatusCode overrides the HTTP status derived from Kind when set.
	StatusCode int `json:"-"`
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Provider != "" {
		return fmt.Sprintf("%s (%s): %s", f.Kind, f.Provider, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// HTTPStatusCode returns the HTTP status a fault maps to on the wire.
func (f *Fault) HTTPStatusCode() int {
	if f.StatusCode != 0 {
		return f.StatusCode
	}

	switch f.Kind {
	case FaultUnauthenticated:
		return http.StatusUnauthorized
	case FaultUnauthorized:
		return http.StatusForbidden
	case FaultInvalidInput:
		return http.StatusBadRequest
	case FaultProviderUnavailable:
		return http.StatusServiceUnavailable
	case FaultRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a client may safely retry the whole request.
// Only upstream unavailability and quota exhaustion qualify.
func (f *Fault) Retryable() bool {
	return f.Kind == FaultProviderUnavailable || f.Kind == FaultRateLimited
}

// NewFault creates a fault of the given kind.
func NewFault(kind FaultKind, message string) *Fault {
	return &Fault{
		Kind:    kind,
		Message: message,
	}
}

// WithProvider records the originating provider tag.
func (f *Fault) WithProvider(tag ProviderTag) *Fault {
	f.Provider = tag
	return f
}

// WithTransient marks the fault as retryable at the adapter level.
func (f *Fault) WithTransient() *Fault {
	f.Transient = true
	return f
}

// WithStatusCode sets a specific HTTP status code.
func (f *Fault) WithStatusCode(code int) *Fault {
	f.StatusCode = code
	return f
}

// AsFault extracts a *Fault from err. Errors that are not faults come back
// wrapped as InternalError so no raw error ever reaches a client.
func AsFault(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return NewFault(FaultInternal, "internal gateway error")
}

// Convenience constructors for common faults

// ErrUnauthenticated creates an authentication fault.
func ErrUnauthenticated(message string) *Fault {
	return NewFault(FaultUnauthenticated, message)
}

// ErrUnauthorized creates a permission fault.
func ErrUnauthorized(message string) *Fault {
	return NewFault(FaultUnauthorized, message)
}

// ErrInvalidInput creates an invalid input fault.
func ErrInvalidInput(message string) *Fault {
	return NewFault(FaultInvalidInput, message)
}

// ErrProviderUnavailable creates an upstream unavailability fault. It is
// transient by construction.
func ErrProviderUnavailable(message string) *Fault {
	return NewFault(FaultProviderUnavailable, message).WithTransient()
}

// ErrRateLimited creates a quota exhaustion fault.
func ErrRateLimited(message string) *Fault {
	return NewFault(FaultRateLimited, message)
}

// ErrInternal creates an internal gateway fault.
func ErrInternal(message string) *Fault {
	return NewFault(FaultInternal, message)
}
