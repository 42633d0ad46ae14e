package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/asset-ledger/internal/middleware"
	"github.com/crucial707/asset-ledger/internal/models"
	"github.com/crucial707/asset-ledger/internal/repo"
	"github.com/crucial707/asset-ledger/internal/service"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

// newTestAPI wires an API over a sqlmock database.
func newTestAPI(t *testing.T) (*API, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	userRepo := repo.NewUserRepo(db)
	sessionRepo := repo.NewSessionRepo(db)
	api := NewAPI(
		service.NewCredentialStore(userRepo),
		service.NewSessionManager(sessionRepo, 24*time.Hour),
		service.NewAssetService(db),
		repo.NewAssetRepo(db),
		repo.NewAuditRepo(db),
		repo.NewStatusHistoryRepo(db),
		nil,
	)
	return api, mock
}

func testUserRow(hash string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "password_hash", "full_name", "email", "role", "is_active",
	}).AddRow(7, "alice", hash, "Alice A", "alice@example.com", "user", true)
}

func TestLogin(t *testing.T) {
	api, mock := newTestAPI(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("alice").
		WillReturnRows(testUserRow(string(hash)))
	mock.ExpectQuery(`INSERT INTO user_sessions`).
		WithArgs(sqlmock.AnyArg(), 7, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`DELETE FROM user_sessions WHERE expires_at`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := httptest.NewRequest(http.MethodPost, "/api?action=login",
		strings.NewReader(`{"username":"alice","password":"s3cret"}`))
	w := httptest.NewRecorder()
	api.Handle(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			ID       int    `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success")
	}
	if len(resp.Token) != 64 {
		t.Errorf("expected 64-char token, got %d chars", len(resp.Token))
	}
	if resp.User.ID != 7 || resp.User.Username != "alice" {
		t.Errorf("unexpected user payload: %+v", resp.User)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	api, mock := newTestAPI(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("alice").
		WillReturnRows(testUserRow(string(hash)))

	r := httptest.NewRequest(http.MethodPost, "/api?action=login",
		strings.NewReader(`{"username":"alice","password":"wrong"}`))
	w := httptest.NewRecorder()
	api.Handle(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success || resp.Error != "Invalid credentials" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestLogin_BadJSON(t *testing.T) {
	api, _ := newTestAPI(t)

	r := httptest.NewRequest(http.MethodPost, "/api?action=login", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()
	api.Handle(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	api, _ := newTestAPI(t)

	r := httptest.NewRequest(http.MethodPost, "/api?action=login",
		strings.NewReader(`{"username":"alice"}`))
	w := httptest.NewRecorder()
	api.Handle(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	api, _ := newTestAPI(t)
	api.LoginLimiter = middleware.NewIPRateLimiter(rate.Limit(0), 0)

	r := httptest.NewRequest(http.MethodPost, "/api?action=login",
		strings.NewReader(`{"username":"alice","password":"s3cret"}`))
	w := httptest.NewRecorder()
	api.Handle(w, r)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestLogout(t *testing.T) {
	api, mock := newTestAPI(t)

	mock.ExpectExec(`DELETE FROM user_sessions WHERE id = \$1`).
		WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := httptest.NewRequest(http.MethodGet, "/api?action=logout", nil)
	r.Header.Set("Authorization", "Bearer tok-1")
	w := httptest.NewRecorder()
	api.Handle(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestLogout_NoToken(t *testing.T) {
	api, mock := newTestAPI(t)

	r := httptest.NewRequest(http.MethodGet, "/api?action=logout", nil)
	w := httptest.NewRecorder()
	api.Handle(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 even without a session, got %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCheckAuth(t *testing.T) {
	api, _ := newTestAPI(t)

	// No session resolved.
	r := httptest.NewRequest(http.MethodGet, "/api?action=check_auth", nil)
	w := httptest.NewRecorder()
	api.Handle(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Authenticated bool         `json:"authenticated"`
		User          *models.User `json:"user"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Authenticated {
		t.Error("expected authenticated=false without a session")
	}

	// Resolved session.
	r = httptest.NewRequest(http.MethodGet, "/api?action=check_auth", nil)
	r = r.WithContext(middleware.WithAuth(r.Context(), &middleware.AuthContext{
		User:    &models.User{ID: 7, Username: "alice"},
		Session: &models.Session{ID: "tok-1", UserID: 7},
	}))
	w = httptest.NewRecorder()
	api.Handle(w, r)
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Authenticated || resp.User == nil || resp.User.Username != "alice" {
		t.Errorf("unexpected response: %+v", resp)
	}
}
