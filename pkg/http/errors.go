package http

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the standard API error body. Extra carries
// policy-specific fields (locked, unapproved, attempt counts) merged into
// the object next to "error".
type ErrorResponse struct {
	Error string                 `json:"error"`
	Extra map[string]interface{} `json:"-"`
}

// WriteError writes a JSON error response with the given status code.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteErrorWith(w, statusCode, message, nil)
}

// WriteErrorWith writes a JSON error response with additional top-level
// fields alongside "error".
func WriteErrorWith(w http.ResponseWriter, statusCode int, message string, extra map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	body := map[string]interface{}{"error": message}
	for k, v := range extra {
		body[k] = v
	}

	// Log encoding errors but don't expose them to client
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON writes an arbitrary JSON response body.
func WriteJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}
