package repo

import (
	"context"

	"github.com/crucial707/asset-ledger/internal/models"
)

// StatusHistoryRepo persists the asset-scoped condition-status ledger.
// Append-only, like the audit log.
type StatusHistoryRepo struct {
	db DBTX
}

func NewStatusHistoryRepo(db DBTX) *StatusHistoryRepo {
	return &StatusHistoryRepo{db: db}
}

// Insert records one status transition.
func (r *StatusHistoryRepo) Insert(ctx context.Context, h *models.StatusHistoryEntry) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO asset_status_history (asset_id, old_status, new_status, changed_by, change_reason)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		h.AssetID, h.OldStatus, h.NewStatus, h.ChangedBy, h.ChangeReason,
	).Scan(&h.ID, &h.CreatedAt)
}

// ListByAsset returns an asset's transitions newest first, joined with the
// actor's display name. Works for deleted assets too.
func (r *StatusHistoryRepo) ListByAsset(ctx context.Context, assetID int) ([]models.StatusHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT h.id, h.asset_id, h.old_status, h.new_status, h.changed_by,
		        COALESCE(u.full_name, ''), h.change_reason, h.created_at
		 FROM asset_status_history h
		 LEFT JOIN users u ON h.changed_by = u.id
		 WHERE h.asset_id = $1
		 ORDER BY h.created_at DESC, h.id DESC`,
		assetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.StatusHistoryEntry
	for rows.Next() {
		var h models.StatusHistoryEntry
		if err := rows.Scan(
			&h.ID, &h.AssetID, &h.OldStatus, &h.NewStatus, &h.ChangedBy,
			&h.ChangedByName, &h.ChangeReason, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}
