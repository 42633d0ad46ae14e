package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/crucial707/asset-ledger/internal/repo"
	"github.com/crucial707/asset-ledger/internal/service"
)

type assetInput struct {
	Category string `json:"category" validate:"required,max=100"`
	Brand    string `json:"brand" validate:"required,max=100"`
	Serial   string `json:"serial" validate:"required,max=100"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Location string `json:"location" validate:"required,max=200"`
	Notes    string `json:"notes" validate:"max=1000"`
}

func (in assetInput) toService() service.AssetInput {
	return service.AssetInput{
		Category: in.Category,
		Brand:    in.Brand,
		Serial:   in.Serial,
		Quantity: in.Quantity,
		Location: in.Location,
		Notes:    in.Notes,
	}
}

// GetAssets serves both the single-asset read (?id=) and the paginated,
// searchable listing.
func (a *API) GetAssets(w http.ResponseWriter, r *http.Request) {
	if idStr := r.URL.Query().Get("id"); idStr != "" {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			JSONError(w, "invalid asset id", http.StatusBadRequest)
			return
		}
		asset, err := a.AssetRepo.GetByID(r.Context(), id)
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Asset not found", http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("get asset failed", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		JSON(w, http.StatusOK, asset)
		return
	}

	search := r.URL.Query().Get("search")
	page := 1
	limit := 10
	if p := r.URL.Query().Get("page"); p != "" {
		if val, err := strconv.Atoi(p); err == nil && val > 0 {
			page = val
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 200 {
			limit = val
		}
	}
	offset := (page - 1) * limit

	assets, err := a.AssetRepo.List(r.Context(), search, limit, offset)
	if err != nil {
		slog.Error("list assets failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := a.AssetRepo.Count(r.Context(), search)
	if err != nil {
		slog.Error("count assets failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	JSON(w, http.StatusOK, map[string]any{
		"assets":      assets,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages,
	})
}

// Stats serves the dashboard rollups.
func (a *API) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.AssetRepo.Stats(r.Context())
	if err != nil {
		slog.Error("stats failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, http.StatusOK, stats)
}

// CreateAsset inserts an asset plus its CREATE audit entry and initial
// status-history entry.
func (a *API) CreateAsset(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		JSONFail(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var input assetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONFail(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := a.validate.Struct(input); err != nil {
		JSONFail(w, err.Error(), http.StatusBadRequest)
		return
	}

	asset, err := a.Assets.Create(r.Context(), input.toService(), act)
	if err != nil {
		failFromError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"success": true, "asset": asset})
}

// UpdateAsset rewrites the editable fields and audits before/after snapshots.
func (a *API) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		JSONFail(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var input struct {
		ID int `json:"id" validate:"required"`
		assetInput
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONFail(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := a.validate.Struct(input); err != nil {
		JSONFail(w, err.Error(), http.StatusBadRequest)
		return
	}

	asset, err := a.Assets.Update(r.Context(), input.ID, input.assetInput.toService(), act)
	if err != nil {
		failFromError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"success": true, "asset": asset})
}

// DeleteAsset soft-deletes an asset; its ledger rows stay readable.
func (a *API) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		JSONFail(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		JSONFail(w, "Asset ID required", http.StatusBadRequest)
		return
	}

	if err := a.Assets.Delete(r.Context(), id, act); err != nil {
		failFromError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"success": true})
}
