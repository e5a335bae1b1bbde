// Package response provides utilities for sending consistent HTTP responses.
// It includes helpers for JSON responses and standardized error responses.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/tikalinvest/portfolio-client/internal/logging"
)

// ErrorResponse represents a structured error response returned by the API.
// Reason carries a machine-readable code when one exists (validation
// sentinels, backend rejection reasons); Details is optional context.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Reason  string      `json:"reason,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Sets the Content-Type header to application/json and writes the status code.
// If data is nil, only the status code is sent (useful for 204 No Content).
// Logs encoding errors but does not fail the response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logging.Error().Err(err).Msg("failed to encode JSON response")
		}
	}
}

// RespondError sends a structured error response with the given status code.
func RespondError(w http.ResponseWriter, status int, message string, details interface{}) {
	RespondJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// RespondRejection sends an error response carrying a machine-readable
// reason so the UI can branch on it while showing the message verbatim.
func RespondRejection(w http.ResponseWriter, status int, reason, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message, Reason: reason})
}
