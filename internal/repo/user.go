package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/asset-ledger/internal/models"
)

// UserRepo reads user rows. Provisioning happens out of band; the only write
// here is the bootstrap password swap.
type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, password_hash, full_name, email, role, is_active`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.Role, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetActiveByUsername returns the active user with the given username
// (case-sensitive exact match). Inactive users are invisible here.
func (r *UserRepo) GetActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 AND is_active`,
		username,
	))
}

// GetActiveByID returns the active user with the given id.
func (r *UserRepo) GetActiveByID(ctx context.Context, id int) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND is_active`,
		id,
	))
}

// UpdatePasswordHash replaces the stored hash for one user.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id int, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
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
