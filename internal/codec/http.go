// Package codec translates between internal shapes and the wire: JSON
// response encoding, fault normalization for clients, and cleanup of
// model-generated JSON.
package codec

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/udaykumar0515/speakup-gateway/internal/domain"
)

// errorBody is the only error shape clients ever see.
type errorBody struct {
	Kind    domain.FaultKind `json:"kind"`
	Message string           `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

// WriteError normalizes err into the fault taxonomy and writes it. Raw
// provider errors never reach the client; anything that is not already a
// fault is reported as an internal error.
func WriteError(w http.ResponseWriter, err error) {
	fault := domain.AsFault(err)
	WriteJSON(w, fault.HTTPStatusCode(), errorBody{
		Kind:    fault.Kind,
		Message: fault.Message,
	})
}
