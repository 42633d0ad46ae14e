package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/crucial707/asset-ledger/internal/metrics"
	"github.com/crucial707/asset-ledger/internal/models"
	"github.com/crucial707/asset-ledger/internal/repo"
)

// tokenBytes is the entropy of a session token (hex-encoded to 64 chars).
const tokenBytes = 32

// SessionManager issues, resolves, and destroys opaque session tokens.
// Tokens are 256-bit random values stored as the session row's primary key;
// validity is decided entirely by the row (expiry + user active flag), so a
// destroyed or expired session can never resolve.
type SessionManager struct {
	sessions *repo.SessionRepo
	ttl      time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

func NewSessionManager(sessions *repo.SessionRepo, ttl time.Duration) *SessionManager {
	return &SessionManager{sessions: sessions, ttl: ttl, now: time.Now}
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Create mints a new session for userID with an absolute expiry of now+TTL
// and returns the opaque token. Each call creates an independent session;
// earlier sessions for the same user stay valid.
func (m *SessionManager) Create(ctx context.Context, userID int, ip, userAgent string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	s := &models.Session{
		ID:        token,
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
		ExpiresAt: m.now().Add(m.ttl),
	}
	if err := m.sessions.Create(ctx, s); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// Resolve returns the user and session bound to token. ErrUnauthenticated
// covers every failure mode a caller may see: empty token, unknown token,
// expired session, deactivated user.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*models.User, *models.Session, error) {
	if token == "" {
		return nil, nil, ErrUnauthenticated
	}
	s, u, err := m.sessions.GetValid(ctx, token, m.now())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, nil, fmt.Errorf("resolve session: %w", err)
	}
	return u, s, nil
}

// Destroy deletes the session row. Destroying an absent session is a no-op.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.sessions.Delete(ctx, token)
}

// Reap deletes all expired sessions and returns how many were removed.
// Expired sessions are already unresolvable; this only reclaims storage.
func (m *SessionManager) Reap(ctx context.Context) (int64, error) {
	n, err := m.sessions.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("reap sessions: %w", err)
	}
	metrics.AddSessionsReaped(n)
	return n, nil
}
