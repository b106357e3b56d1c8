package domain

import (
	"time"
)

// RequestState tracks a gateway request through its lifecycle. Transitions
// are one-way; a request never re-enters authentication once dispatched.
type RequestState string

const (
	StateReceived       RequestState = "received"
	StateAuthenticating RequestState = "authenticating"
	StateDispatching    RequestState = "dispatching"
	StateAggregating    RequestState = "aggregating"
	StateCompleted      RequestState = "completed"
	StateFailed         RequestState = "failed"
)

// legalTransitions is the complete transition relation. Completed and Failed
// are terminal.
var legalTransitions = map[RequestState][]RequestState{
	StateReceived:       {StateAuthenticating, StateFailed},
	StateAuthenticating: {StateDispatching, StateFailed},
	StateDispatching:    {StateAggregating, StateFailed},
	StateAggregating:    {StateCompleted, StateFailed},
}

// GatewayRequest records one client request as it moves through the gateway.
// It doubles as the audit record persisted after the request settles.
type GatewayRequest struct {
	// ID uniquely identifies this request
	ID string `json:"id"`

	// UserID is the verified caller, empty until authentication completes
	UserID string `json:"user_id,omitempty"`

	// Capability is the gateway capability the client asked for
	Capability Capability `json:"capability"`

	// State is the current lifecycle state
	State RequestState `json:"state"`

	// Providers lists the provider tags invoked while serving the request
	Providers []ProviderTag `json:"providers,omitempty"`

	// Fault holds the terminal fault for failed requests
	Fault *Fault `json:"fault,omitempty"`

	// Duration is the total time taken once the request settles
	Duration time.Duration `json:"duration_ns"`

	// CreatedAt is when the request was received
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the request last changed state
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGatewayRequest creates a request in the Received state.
func NewGatewayRequest(id string, capability Capability) *GatewayRequest {
	now := time.Now()
	return &GatewayRequest{
		ID:         id,
		Capability: capability,
		State:      StateReceived,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Advance moves the request to next. Illegal transitions are rejected as
// internal faults and leave the request untouched.
func (r *GatewayRequest) Advance(next RequestState) error {
	for _, allowed := range legalTransitions[r.State] {
		if next == allowed {
			r.State = next
			r.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrInternal("illegal state transition " + string(r.State) + " -> " + string(next))
}

// Terminal reports whether the request has settled.
func (r *GatewayRequest) Terminal() bool {
	return r.State == StateCompleted || r.State == StateFailed
}

// MarkProvider records that a provider was invoked for this request.
func (r *GatewayRequest) MarkProvider(tag ProviderTag) {
	for _, t := range r.Providers {
		if t == tag {
			return
		}
	}
	r.Providers = append(r.Providers, tag)
}

// Settle records the terminal outcome and the total duration. A nil fault
// completes the request; a non-nil fault fails it. Settling from a state
// with no legal path to the terminal state is an error.
func (r *GatewayRequest) Settle(fault *Fault) error {
	r.Duration = time.Since(r.CreatedAt)
	if fault != nil {
		r.Fault = fault
		return r.Advance(StateFailed)
	}
	return r.Advance(StateCompleted)
}
