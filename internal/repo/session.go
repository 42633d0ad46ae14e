package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/crucial707/asset-ledger/internal/models"
)

// SessionRepo persists login sessions. The session id is the opaque bearer
// token; expiry is enforced in the query so an expired row can never resolve.
type SessionRepo struct {
	db DBTX
}

func NewSessionRepo(db DBTX) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create inserts one session row.
func (r *SessionRepo) Create(ctx context.Context, s *models.Session) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO user_sessions (id, user_id, ip_address, user_agent, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		s.ID, s.UserID, s.IPAddress, s.UserAgent, s.ExpiresAt,
	).Scan(&s.CreatedAt)
}

// GetValid returns the session and its user when the session exists, expires
// strictly after now, and the user is active. Anything else is ErrNotFound.
func (r *SessionRepo) GetValid(ctx context.Context, token string, now time.Time) (*models.Session, *models.User, error) {
	s := &models.Session{}
	u := &models.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT s.id, s.user_id, s.ip_address, s.user_agent, s.expires_at, s.created_at,
		        u.id, u.username, u.full_name, u.email, u.role, u.is_active
		 FROM user_sessions s
		 JOIN users u ON s.user_id = u.id
		 WHERE s.id = $1 AND s.expires_at > $2 AND u.is_active`,
		token, now,
	).Scan(
		&s.ID, &s.UserID, &s.IPAddress, &s.UserAgent, &s.ExpiresAt, &s.CreatedAt,
		&u.ID, &u.Username, &u.FullName, &u.Email, &u.Role, &u.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return s, u, nil
}

// Delete removes a session row. Deleting an absent session is not an error.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE id = $1`, token)
	return err
}

// DeleteExpired removes all sessions at or past expiry and returns the count.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
