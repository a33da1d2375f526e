package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"docvision/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusOf returns the status carried by err, or fallback.
func statusOf(err error, fallback int) int {
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return fallback
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}

// writeStatus writes the {status, message} envelope used by model management.
func writeStatus(w http.ResponseWriter, code int, status, msg string) {
	writeJSON(w, code, types.StatusMessage{Status: status, Message: msg})
}
