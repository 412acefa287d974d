// Package render holds the JSON response helpers shared by the API handlers.
package render

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes v as a 200 JSON response.
func JSON(w http.ResponseWriter, v any) {
	JSONStatus(w, http.StatusOK, v)
}

// JSONStatus writes v as JSON with the given status code. Encoding errors
// are swallowed; by the time Encode fails the header is already gone.
func JSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body with the given status code.
func Error(w http.ResponseWriter, msg string, status int) {
	JSONStatus(w, status, ErrorResponse{Error: msg})
}
