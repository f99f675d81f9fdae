// Package response writes handler results and maps ledger errors to status codes.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/contas/internal/bill"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// StatusFor returns the HTTP status matching a ledger error.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, bill.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bill.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, bill.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, bill.ErrStorageUnavailable), errors.Is(err, bill.ErrClosed):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

// Error writes err with the status from StatusFor. Server side failures are
// logged and their details kept out of the body.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	switch status {
	case http.StatusInternalServerError:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", status)
	case http.StatusServiceUnavailable:
		slog.Warn("storage unavailable", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "storage unavailable", status)
	default:
		http.Error(w, err.Error(), status)
	}
}
