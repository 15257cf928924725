package web

import (
	"encoding/json"
	"net/http"

	"github.com/wardsync/wardsync/internal/core"
	"github.com/wardsync/wardsync/internal/logging"
)

// errorResponse is the JSON structure for dashboard error responses.
type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps a core error onto an HTTP status. Validation and
// not-found errors carry their own safe messages; anything else is a store
// failure whose detail is logged server-side and hidden from the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidation(err):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case core.IsNotFound(err):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		logging.FromContext(r.Context()).Error("request failed",
			"path", r.URL.Path,
			"method", r.Method,
			"error", err,
		)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// writeError writes a JSON error response with the given status.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// writeJSON encodes v as JSON. Encoding errors are logged; headers are
// already sent by then.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode failed", "error", err)
	}
}
