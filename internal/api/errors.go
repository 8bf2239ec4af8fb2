// Package api holds the wire plumbing shared by the simulated gateway:
// response envelopes, actor context and auth middleware.
package api

import (
	"encoding/json"
	"net/http"
)

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes the booking client keys off (conflict detection, validation
// display). Free-form codes are allowed for anything else.
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN_TRANSITION"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeInvalidTransition = "INVALID_STATE_TRANSITION"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL"
)

func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Error: APIError{Code: code, Message: message},
	})
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
