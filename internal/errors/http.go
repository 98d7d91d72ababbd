// Package errors provides the HTTP error envelope shared by all server
// endpoints.
//
// Every non-2xx response carries the same JSON shape so clients can handle
// failures uniformly:
//
//	{"error": {"code": "NOT_FOUND", "message": "resource not found"}}
package errors

import (
	"encoding/json"
	"net/http"
)

// Error codes used across server responses.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// HTTPErrorResponse is the JSON envelope for error responses.
type HTTPErrorResponse struct {
	Error HTTPError `json:"error"`
}

// HTTPError carries the machine-readable code and human-readable message.
type HTTPError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Respond writes the error envelope with the given status.
func Respond(w http.ResponseWriter, status int, code, message string) {
	RespondDetails(w, status, code, message, nil)
}

// RespondDetails writes the error envelope with additional context.
func RespondDetails(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(HTTPErrorResponse{
		Error: HTTPError{Code: code, Message: message, Details: details},
	})
}

// NotFoundHandler responds with the standard 404 envelope.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	Respond(w, http.StatusNotFound, CodeNotFound, "resource not found")
}

// MethodNotAllowedHandler responds with the standard 405 envelope.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	Respond(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
}
