package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/asset-ledger/internal/models"
)

// AssetRepo owns CRUD on inventory rows. Lifecycle-deleted rows are filtered
// from every read; the ledgers keep referencing them.
type AssetRepo struct {
	db DBTX
}

func NewAssetRepo(db DBTX) *AssetRepo {
	return &AssetRepo{db: db}
}

const assetColumns = `a.id, a.category, a.brand, a.serial, a.quantity, a.location, a.notes,
	a.condition_status, a.status, a.created_by, COALESCE(u.full_name, ''), a.created_at, a.updated_at`

func scanAsset(row *sql.Row) (*models.Asset, error) {
	a := &models.Asset{}
	err := row.Scan(
		&a.ID, &a.Category, &a.Brand, &a.Serial, &a.Quantity, &a.Location, &a.Notes,
		&a.ConditionStatus, &a.Status, &a.CreatedBy, &a.CreatedByName, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts an asset with condition "Good" and an active lifecycle.
func (r *AssetRepo) Create(ctx context.Context, a *models.Asset) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO assets (category, brand, serial, quantity, location, notes, condition_status, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, condition_status, status, created_at, updated_at`,
		a.Category, a.Brand, a.Serial, a.Quantity, a.Location, a.Notes, models.ConditionGood, a.CreatedBy,
	).Scan(&a.ID, &a.ConditionStatus, &a.Status, &a.CreatedAt, &a.UpdatedAt)
}

// GetByID returns one active asset joined with its creator's display name.
func (r *AssetRepo) GetByID(ctx context.Context, id int) (*models.Asset, error) {
	return scanAsset(r.db.QueryRowContext(ctx,
		`SELECT `+assetColumns+`
		 FROM assets a
		 LEFT JOIN users u ON a.created_by = u.id
		 WHERE a.id = $1 AND a.status = 'active'`,
		id,
	))
}

// SerialExists reports whether another active asset already uses serial.
// excludeID skips one row (the asset being updated); pass 0 on create.
func (r *AssetRepo) SerialExists(ctx context.Context, serial string, excludeID int) (bool, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM assets WHERE serial = $1 AND id != $2 AND status = 'active'`,
		serial, excludeID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update rewrites the editable fields and bumps updated_at.
func (r *AssetRepo) Update(ctx context.Context, a *models.Asset) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE assets
		 SET category = $1, brand = $2, serial = $3, quantity = $4, location = $5, notes = $6, updated_at = now()
		 WHERE id = $7 AND status = 'active'
		 RETURNING condition_status, status, created_at, updated_at`,
		a.Category, a.Brand, a.Serial, a.Quantity, a.Location, a.Notes, a.ID,
	).Scan(&a.ConditionStatus, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// UpdateConditionStatus sets the condition status and bumps updated_at.
func (r *AssetRepo) UpdateConditionStatus(ctx context.Context, id int, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assets SET condition_status = $1, updated_at = now() WHERE id = $2 AND status = 'active'`,
		status, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete marks an asset deleted. Its audit and history rows stay.
func (r *AssetRepo) SoftDelete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assets SET status = 'deleted', updated_at = now() WHERE id = $1 AND status = 'active'`,
		id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns active assets ordered by id with optional search and pagination.
// search matches category, brand, serial, location, and notes.
func (r *AssetRepo) List(ctx context.Context, search string, limit, offset int) ([]models.Asset, error) {
	query := `SELECT ` + assetColumns + `
		 FROM assets a
		 LEFT JOIN users u ON a.created_by = u.id
		 WHERE a.status = 'active'`
	args := []any{}
	if search != "" {
		query += ` AND (a.category ILIKE $1 OR a.brand ILIKE $1 OR a.serial ILIKE $1 OR a.location ILIKE $1 OR a.notes ILIKE $1)`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY a.id`
	if search != "" {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(
			&a.ID, &a.Category, &a.Brand, &a.Serial, &a.Quantity, &a.Location, &a.Notes,
			&a.ConditionStatus, &a.Status, &a.CreatedBy, &a.CreatedByName, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// Count returns the number of active assets matching search.
func (r *AssetRepo) Count(ctx context.Context, search string) (int, error) {
	query := `SELECT COUNT(*) FROM assets WHERE status = 'active'`
	args := []any{}
	if search != "" {
		query += ` AND (category ILIKE $1 OR brand ILIKE $1 OR serial ILIKE $1 OR location ILIKE $1 OR notes ILIKE $1)`
		args = append(args, "%"+search+"%")
	}
	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Stats computes the dashboard rollups over active assets.
func (r *AssetRepo) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0), COUNT(DISTINCT category), COUNT(DISTINCT location)
		 FROM assets WHERE status = 'active'`,
	).Scan(&stats.TotalQuantity, &stats.TotalCategories, &stats.TotalLocations)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(quantity) AS total FROM assets WHERE status = 'active'
		 GROUP BY category ORDER BY total DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Total); err != nil {
			return nil, err
		}
		stats.ByCategory = append(stats.ByCategory, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx,
		`SELECT location, SUM(quantity) AS total FROM assets WHERE status = 'active'
		 GROUP BY location ORDER BY total DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l models.LocationCount
		if err := rows.Scan(&l.Location, &l.Total); err != nil {
			return nil, err
		}
		stats.ByLocation = append(stats.ByLocation, l)
	}
	return stats, rows.Err()
}
