// Package googleapi normalizes the error envelope shared by every Google
// REST API the gateway fronts. Upstream failures never cross into the
// gateway as raw responses; they are classified into the fault taxonomy
// here and provider detail stays in the logs.
package googleapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// ErrorResponse is the envelope Google APIs wrap errors in.
type ErrorResponse struct {
	Error *ErrorBody `json:"error"`
}

// ErrorBody carries the error detail. Status is the canonical code name,
// e.g. RESOURCE_EXHAUSTED or PERMISSION_DENIED.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ParseErrorResponse decodes an error envelope from a response body.
// Returns nil if the body is not a recognizable error envelope.
func ParseErrorResponse(data []byte) *ErrorBody {
	var resp ErrorResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil
	}
	return resp.Error
}

// ClassifyStatus maps an upstream status onto the fault taxonomy.
//
// Credential rejections (401/403) surface as ProviderUnavailable: the
// gateway's own credential is misconfigured and nothing the client does can
// fix that. Transient kinds mark server-side failures worth one retry.
func ClassifyStatus(httpCode int, status, message string, tag domain.ProviderTag) *domain.Fault {
	switch status {
	case "INVALID_ARGUMENT", "FAILED_PRECONDITION", "OUT_OF_RANGE":
		return domain.ErrInvalidInput(message).WithProvider(tag)
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return domain.NewFault(domain.FaultProviderUnavailable, "provider rejected gateway credential").WithProvider(tag)
	case "NOT_FOUND":
		return domain.NewFault(domain.FaultProviderUnavailable, "provider resource not found").WithProvider(tag)
	case "RESOURCE_EXHAUSTED":
		return domain.ErrRateLimited("provider quota exhausted").WithProvider(tag)
	case "UNAVAILABLE", "INTERNAL", "DEADLINE_EXCEEDED", "ABORTED":
		return domain.ErrProviderUnavailable(message).WithProvider(tag)
	}

	// No canonical status, fall back to the HTTP code.
	switch {
	case httpCode == http.StatusTooManyRequests:
		return domain.ErrRateLimited("provider quota exhausted").WithProvider(tag)
	case httpCode == http.StatusUnauthorized || httpCode == http.StatusForbidden:
		return domain.NewFault(domain.FaultProviderUnavailable, "provider rejected gateway credential").WithProvider(tag)
	case httpCode >= 500:
		return domain.ErrProviderUnavailable(fmt.Sprintf("provider returned %d", httpCode)).WithProvider(tag)
	case httpCode >= 400:
		return domain.ErrInvalidInput(message).WithProvider(tag)
	}
	return domain.ErrInternal(fmt.Sprintf("unclassifiable provider status %d", httpCode)).WithProvider(tag)
}

// FaultFromResponse normalizes a non-2xx response body.
func FaultFromResponse(httpCode int, body []byte, tag domain.ProviderTag) *domain.Fault {
	if e := ParseErrorResponse(body); e != nil {
		return ClassifyStatus(httpCode, e.Status, e.Message, tag)
	}
	return ClassifyStatus(httpCode, "", fmt.Sprintf("provider returned %d", httpCode), tag)
}

// FaultFromTransport normalizes a transport-level failure. Timeouts and
// unreachable hosts are transient; an outright canceled context is not,
// since retrying a canceled call cannot succeed.
func FaultFromTransport(err error, tag domain.ProviderTag) *domain.Fault {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.ErrProviderUnavailable("provider timed out").WithProvider(tag)
	case errors.Is(err, context.Canceled):
		return domain.NewFault(domain.FaultProviderUnavailable, "provider call canceled").WithProvider(tag)
	default:
		return domain.ErrProviderUnavailable("provider unreachable").WithProvider(tag)
	}
}
