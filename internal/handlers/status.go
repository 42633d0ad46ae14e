package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/crucial707/asset-ledger/internal/models"
)

// ChangeStatus moves an asset to a new condition status. The reason is
// mandatory; the write commits together with its audit and history entries.
func (a *API) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		JSONFail(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var input struct {
		AssetID   int    `json:"asset_id" validate:"required"`
		NewStatus string `json:"new_status"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONFail(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := a.validate.Struct(input); err != nil {
		JSONFail(w, "Asset ID, new status, and reason required", http.StatusBadRequest)
		return
	}

	if err := a.Assets.ChangeStatus(r.Context(), input.AssetID, input.NewStatus, input.Reason, act); err != nil {
		failFromError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"success": true})
}

// AssetHistory returns an asset's status transitions, newest first. History
// outlives the asset: deleted assets still serve their ledger.
func (a *API) AssetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		JSONError(w, "Asset ID required", http.StatusBadRequest)
		return
	}

	history, err := a.HistoryRepo.ListByAsset(r.Context(), id)
	if err != nil {
		slog.Error("asset history failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []models.StatusHistoryEntry{}
	}
	JSON(w, http.StatusOK, history)
}
