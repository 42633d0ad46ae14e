package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crucial707/asset-ledger/internal/metrics"
	"github.com/crucial707/asset-ledger/internal/middleware"
	"github.com/crucial707/asset-ledger/internal/service"
)

// Login verifies credentials and mints a session token. Unknown usernames and
// wrong passwords get the same response.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	ip := middleware.ClientIP(r)
	if a.LoginLimiter != nil && !a.LoginLimiter.Allow(ip) {
		JSONFail(w, "Too many login attempts", http.StatusTooManyRequests)
		return
	}

	var input struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONFail(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := a.validate.Struct(input); err != nil {
		JSONFail(w, "Username and password required", http.StatusBadRequest)
		return
	}

	user, err := a.Credentials.Verify(r.Context(), input.Username, input.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		metrics.IncLogins("failure")
		JSONFail(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		JSONFail(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	token, err := a.Sessions.Create(r.Context(), user.ID, ip, r.UserAgent())
	if err != nil {
		slog.Error("create session failed", "error", err)
		JSONFail(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	// Opportunistic reap; failure here must not fail the login.
	if _, err := a.Sessions.Reap(r.Context()); err != nil {
		slog.Warn("opportunistic session reap failed", "error", err)
	}

	metrics.IncLogins("success")
	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user": map[string]any{
			"id":        user.ID,
			"username":  user.Username,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}

// Logout destroys the ambient session. Always succeeds: a missing or already
// destroyed session leaves nothing to do.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.BearerToken(r); token != "" {
		if err := a.Sessions.Destroy(r.Context(), token); err != nil {
			slog.Error("destroy session failed", "error", err)
			JSONFail(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
	}
	JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out successfully"})
}

// CheckAuth reports whether the ambient session resolves to a user.
func (a *API) CheckAuth(w http.ResponseWriter, r *http.Request) {
	auth, ok := middleware.AuthFrom(r.Context())
	if !ok {
		JSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          auth.User,
	})
}
