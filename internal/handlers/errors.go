package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crucial707/asset-ledger/internal/service"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	JSON(w, status, map[string]string{"error": message})
}

// JSONFail sends the mutation-failure envelope {"success":false,"error":...}.
func JSONFail(w http.ResponseWriter, message string, status int) {
	JSON(w, status, map[string]any{"success": false, "error": message})
}

// failFromError maps a service error to the mutation-failure envelope.
// Unknown errors are logged and reported generically.
func failFromError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		JSONFail(w, validationMessage(err), http.StatusBadRequest)
	case errors.Is(err, service.ErrDuplicateSerial):
		JSONFail(w, "Serial already exists", http.StatusConflict)
	case errors.Is(err, service.ErrNotFound):
		JSONFail(w, "Asset not found", http.StatusNotFound)
	case errors.Is(err, service.ErrUnauthenticated):
		JSONFail(w, "Authentication required", http.StatusUnauthorized)
	default:
		slog.Error("request failed", "error", err)
		JSONFail(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}

// validationMessage strips the sentinel prefix from a wrapped validation error.
func validationMessage(err error) string {
	msg := err.Error()
	prefix := service.ErrValidation.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
