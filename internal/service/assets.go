package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/crucial707/asset-ledger/internal/metrics"
	"github.com/crucial707/asset-ledger/internal/models"
	"github.com/crucial707/asset-ledger/internal/repo"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// Actor identifies who performs a mutation, for the audit trail.
type Actor struct {
	UserID    int
	IPAddress string
	UserAgent string
}

// AssetInput carries the editable asset fields for create and update.
type AssetInput struct {
	Category string
	Brand    string
	Serial   string
	Quantity int
	Location string
	Notes    string
}

// AssetService runs asset mutations. Every mutation and its ledger writes
// (audit entry, and status-history entry where applicable) commit in one
// transaction: a failed ledger write rolls the mutation back.
type AssetService struct {
	db *sql.DB
}

func NewAssetService(db *sql.DB) *AssetService {
	return &AssetService{db: db}
}

// snapshot serializes an audit field snapshot.
func snapshot(fields map[string]any) (json.RawMessage, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal audit snapshot: %w", err)
	}
	return b, nil
}

func assetFields(a *models.Asset) map[string]any {
	return map[string]any{
		"category":         a.Category,
		"brand":            a.Brand,
		"serial":           a.Serial,
		"quantity":         a.Quantity,
		"location":         a.Location,
		"notes":            a.Notes,
		"condition_status": a.ConditionStatus,
	}
}

// withTx runs fn inside a transaction, rolling back on error or panic.
func (s *AssetService) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func validateInput(in AssetInput) error {
	switch {
	case strings.TrimSpace(in.Category) == "":
		return validationf("category is required")
	case strings.TrimSpace(in.Brand) == "":
		return validationf("brand is required")
	case strings.TrimSpace(in.Serial) == "":
		return validationf("serial is required")
	case in.Quantity < 1:
		return validationf("quantity must be at least 1")
	case strings.TrimSpace(in.Location) == "":
		return validationf("location is required")
	}
	return nil
}

// Create inserts an asset, writes the CREATE audit entry, and records the
// implicit initial status transition (nil -> Good, reason "Initial creation").
func (s *AssetService) Create(ctx context.Context, in AssetInput, actor Actor) (*models.Asset, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	a := &models.Asset{
		Category:  in.Category,
		Brand:     in.Brand,
		Serial:    in.Serial,
		Quantity:  in.Quantity,
		Location:  in.Location,
		Notes:     in.Notes,
		CreatedBy: &actor.UserID,
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		assets := repo.NewAssetRepo(tx)

		exists, err := assets.SerialExists(ctx, in.Serial, 0)
		if err != nil {
			return fmt.Errorf("check serial: %w", err)
		}
		if exists {
			return ErrDuplicateSerial
		}

		if err := assets.Create(ctx, a); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateSerial
			}
			return fmt.Errorf("insert asset: %w", err)
		}

		newVals, err := snapshot(assetFields(a))
		if err != nil {
			return err
		}
		if err := repo.NewAuditRepo(tx).Insert(ctx, &models.AuditEntry{
			UserID:    &actor.UserID,
			Action:    models.ActionCreate,
			TableName: "assets",
			RecordID:  a.ID,
			NewValues: newVals,
			IPAddress: actor.IPAddress,
			UserAgent: actor.UserAgent,
		}); err != nil {
			return fmt.Errorf("audit create: %w", err)
		}

		if err := repo.NewStatusHistoryRepo(tx).Insert(ctx, &models.StatusHistoryEntry{
			AssetID:      a.ID,
			NewStatus:    models.ConditionGood,
			ChangedBy:    &actor.UserID,
			ChangeReason: "Initial creation",
		}); err != nil {
			return fmt.Errorf("initial status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncAuditEntries(models.ActionCreate)
	return a, nil
}

// Update rewrites the editable fields, auditing full before/after snapshots.
func (s *AssetService) Update(ctx context.Context, id int, in AssetInput, actor Actor) (*models.Asset, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	updated := &models.Asset{
		ID:       id,
		Category: in.Category,
		Brand:    in.Brand,
		Serial:   in.Serial,
		Quantity: in.Quantity,
		Location: in.Location,
		Notes:    in.Notes,
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		assets := repo.NewAssetRepo(tx)

		old, err := assets.GetByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load asset: %w", err)
		}

		exists, err := assets.SerialExists(ctx, in.Serial, id)
		if err != nil {
			return fmt.Errorf("check serial: %w", err)
		}
		if exists {
			return ErrDuplicateSerial
		}

		if err := assets.Update(ctx, updated); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateSerial
			}
			if errors.Is(err, repo.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("update asset: %w", err)
		}
		updated.CreatedBy = old.CreatedBy

		oldVals, err := snapshot(assetFields(old))
		if err != nil {
			return err
		}
		newVals, err := snapshot(assetFields(updated))
		if err != nil {
			return err
		}
		if err := repo.NewAuditRepo(tx).Insert(ctx, &models.AuditEntry{
			UserID:    &actor.UserID,
			Action:    models.ActionUpdate,
			TableName: "assets",
			RecordID:  id,
			OldValues: oldVals,
			NewValues: newVals,
			IPAddress: actor.IPAddress,
			UserAgent: actor.UserAgent,
		}); err != nil {
			return fmt.Errorf("audit update: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncAuditEntries(models.ActionUpdate)
	return updated, nil
}

// Delete soft-deletes an asset and audits its final snapshot. The asset
// disappears from reads; both ledgers keep its rows.
func (s *AssetService) Delete(ctx context.Context, id int, actor Actor) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		assets := repo.NewAssetRepo(tx)

		old, err := assets.GetByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load asset: %w", err)
		}

		if err := assets.SoftDelete(ctx, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("delete asset: %w", err)
		}

		oldVals, err := snapshot(assetFields(old))
		if err != nil {
			return err
		}
		if err := repo.NewAuditRepo(tx).Insert(ctx, &models.AuditEntry{
			UserID:    &actor.UserID,
			Action:    models.ActionDelete,
			TableName: "assets",
			RecordID:  id,
			OldValues: oldVals,
			IPAddress: actor.IPAddress,
			UserAgent: actor.UserAgent,
		}); err != nil {
			return fmt.Errorf("audit delete: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.IncAuditEntries(models.ActionDelete)
	return nil
}

// ChangeStatus moves an asset to newStatus with a mandatory reason. It writes
// the asset update, one UPDATE_STATUS audit entry carrying only the
// condition_status field, and one status-history entry, atomically.
func (s *AssetService) ChangeStatus(ctx context.Context, assetID int, newStatus, reason string, actor Actor) error {
	if strings.TrimSpace(newStatus) == "" {
		return validationf("new status is required")
	}
	if strings.TrimSpace(reason) == "" {
		return validationf("change reason is required")
	}
	if !models.ValidConditionStatus(newStatus) {
		return validationf("unknown condition status %q", newStatus)
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		assets := repo.NewAssetRepo(tx)

		a, err := assets.GetByID(ctx, assetID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load asset: %w", err)
		}
		oldStatus := a.ConditionStatus

		if err := assets.UpdateConditionStatus(ctx, assetID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("update status: %w", err)
		}

		oldVals, err := snapshot(map[string]any{"condition_status": oldStatus})
		if err != nil {
			return err
		}
		newVals, err := snapshot(map[string]any{"condition_status": newStatus})
		if err != nil {
			return err
		}
		if err := repo.NewAuditRepo(tx).Insert(ctx, &models.AuditEntry{
			UserID:    &actor.UserID,
			Action:    models.ActionUpdateStatus,
			TableName: "assets",
			RecordID:  assetID,
			OldValues: oldVals,
			NewValues: newVals,
			IPAddress: actor.IPAddress,
			UserAgent: actor.UserAgent,
		}); err != nil {
			return fmt.Errorf("audit status change: %w", err)
		}

		if err := repo.NewStatusHistoryRepo(tx).Insert(ctx, &models.StatusHistoryEntry{
			AssetID:      assetID,
			OldStatus:    &oldStatus,
			NewStatus:    newStatus,
			ChangedBy:    &actor.UserID,
			ChangeReason: reason,
		}); err != nil {
			return fmt.Errorf("status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.IncAuditEntries(models.ActionUpdateStatus)
	metrics.IncStatusChanges(newStatus)
	return nil
}
