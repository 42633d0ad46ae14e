package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/asset-ledger/internal/models"
)

// AuditRepo persists audit log entries. Rows are append-only: there is no
// update or delete path.
type AuditRepo struct {
	db DBTX
}

func NewAuditRepo(db DBTX) *AuditRepo {
	return &AuditRepo{db: db}
}

// Insert records one audit entry. Nil OldValues/NewValues are stored as NULL.
func (r *AuditRepo) Insert(ctx context.Context, e *models.AuditEntry) error {
	var oldVals, newVals any
	if e.OldValues != nil {
		oldVals = []byte(e.OldValues)
	}
	if e.NewValues != nil {
		newVals = []byte(e.NewValues)
	}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO audit_log (user_id, action, table_name, record_id, old_values, new_values, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		e.UserID, e.Action, e.TableName, e.RecordID, oldVals, newVals, e.IPAddress, e.UserAgent,
	).Scan(&e.ID, &e.CreatedAt)
}

const auditSelect = `SELECT a.id, a.user_id, COALESCE(u.full_name, ''), a.action, a.table_name,
	a.record_id, a.old_values, a.new_values, a.ip_address, a.user_agent, a.created_at
	FROM audit_log a
	LEFT JOIN users u ON a.user_id = u.id`

// List returns audit entries newest first, joined with the actor's display name.
func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]models.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		auditSelect+` ORDER BY a.created_at DESC, a.id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var oldVals, newVals []byte
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.UserName, &e.Action, &e.TableName,
			&e.RecordID, &oldVals, &newVals, &e.IPAddress, &e.UserAgent, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.OldValues = oldVals
		e.NewValues = newVals
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns one audit entry by id.
func (r *AuditRepo) Get(ctx context.Context, id int) (*models.AuditEntry, error) {
	e := &models.AuditEntry{}
	var oldVals, newVals []byte
	err := r.db.QueryRowContext(ctx, auditSelect+` WHERE a.id = $1`, id).Scan(
		&e.ID, &e.UserID, &e.UserName, &e.Action, &e.TableName,
		&e.RecordID, &oldVals, &newVals, &e.IPAddress, &e.UserAgent, &e.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.OldValues = oldVals
	e.NewValues = newVals
	return e, nil
}
