package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/crucial707/asset-ledger/internal/models"
	"github.com/crucial707/asset-ledger/internal/repo"
)

// ListAudit returns recent audit log entries, newest first.
// Query: limit (default 50, max 200), offset (default 0).
func (a *API) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 200 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	entries, err := a.AuditRepo.List(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list audit failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	JSON(w, http.StatusOK, entries)
}

// AuditDetail returns one audit entry by id.
func (a *API) AuditDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		JSONError(w, "Audit entry ID required", http.StatusBadRequest)
		return
	}

	entry, err := a.AuditRepo.Get(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "Audit entry not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("audit detail failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, http.StatusOK, entry)
}
