package server

import (
	"encoding/json"
	"net/http"
)

// Error messages returned in failure envelopes.
const (
	msgTodoNotFound   = "Todo not found"
	msgTextRequired   = "Text is required"
	msgInvalidBody    = "Invalid JSON body"
	msgRouteNotFound  = "Route not found"
	msgRateLimited    = "Rate limit exceeded"
	msgInternalServer = "Internal server error"
)

// Envelope is the uniform response wrapper used by every API endpoint.
//
// Build one with [Success], [SuccessList], [SuccessMessage] or [Failure];
// a success envelope never carries Error and a failure never carries Data.
type Envelope struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success wraps a single payload.
func Success(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// SuccessList wraps a collection payload together with its size.
func SuccessList[T any](items []T) Envelope {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return Envelope{Success: true, Count: &n, Data: items}
}

// SuccessMessage wraps a human-readable result with no payload.
func SuccessMessage(msg string) Envelope {
	return Envelope{Success: true, Message: msg}
}

// Failure wraps an error message.
func Failure(msg string) Envelope {
	return Envelope{Success: false, Error: msg}
}

// writeJSON encodes v with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "status", status, "error", err)
	}
}

// writeError writes a failure envelope.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, Failure(msg))
}
