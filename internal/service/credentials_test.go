package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/asset-ledger/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

func userRow(id int, username, hash string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "password_hash", "full_name", "email", "role", "is_active",
	}).AddRow(id, username, hash, "Alice A", "alice@example.com", "user", true)
}

func TestCredentialStore_Verify(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("alice").
		WillReturnRows(userRow(7, "alice", string(hash)))

	store := NewCredentialStore(repo.NewUserRepo(db))
	u, err := store.Verify(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if u.ID != 7 || u.Username != "alice" {
		t.Errorf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCredentialStore_Verify_WrongPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("alice").
		WillReturnRows(userRow(7, "alice", string(hash)))

	store := NewCredentialStore(repo.NewUserRepo(db))
	_, err = store.Verify(context.Background(), "alice", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCredentialStore_Verify_UnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	store := NewCredentialStore(repo.NewUserRepo(db))
	_, err = store.Verify(context.Background(), "ghost", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCredentialStore_EnsureBootstrapPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("admin").
		WillReturnRows(userRow(1, "admin", bootstrapHash))
	mock.ExpectExec(`UPDATE users SET password_hash = \$1`).
		WithArgs(sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewCredentialStore(repo.NewUserRepo(db))
	if err := store.EnsureBootstrapPassword(context.Background(), "admin", "changeme"); err != nil {
		t.Fatalf("EnsureBootstrapPassword: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCredentialStore_EnsureBootstrapPassword_AlreadySet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("admin").
		WillReturnRows(userRow(1, "admin", "$2a$10$already-rotated"))

	store := NewCredentialStore(repo.NewUserRepo(db))
	if err := store.EnsureBootstrapPassword(context.Background(), "admin", "changeme"); err != nil {
		t.Fatalf("EnsureBootstrapPassword: %v", err)
	}
	// No UPDATE expected: a rotated password must survive restarts.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
