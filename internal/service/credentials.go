package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/crucial707/asset-ledger/internal/models"
	"github.com/crucial707/asset-ledger/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

// bootstrapHash is the placeholder the initial migration seeds for admin.
// It is not a valid bcrypt hash, so it can never match a password.
const bootstrapHash = "*bootstrap*"

// CredentialStore validates username/password pairs against stored bcrypt hashes.
type CredentialStore struct {
	users *repo.UserRepo
}

func NewCredentialStore(users *repo.UserRepo) *CredentialStore {
	return &CredentialStore{users: users}
}

// Verify returns the active user matching username whose password checks out.
// Unknown usernames and wrong passwords both come back as ErrInvalidCredentials;
// there are no side effects on failure.
func (s *CredentialStore) Verify(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.users.GetActiveByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// EnsureBootstrapPassword replaces the seeded admin placeholder hash with a
// bcrypt hash of password. A user whose hash is no longer the placeholder is
// left alone, so a changed admin password survives restarts.
func (s *CredentialStore) EnsureBootstrapPassword(ctx context.Context, username, password string) error {
	u, err := s.users.GetActiveByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if u.PasswordHash != bootstrapHash {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePasswordHash(ctx, u.ID, string(hash))
}
