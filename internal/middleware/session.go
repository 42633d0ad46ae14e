package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/crucial707/asset-ledger/internal/models"
	"github.com/crucial707/asset-ledger/internal/service"
)

type ctxKey int

const authCtxKey ctxKey = iota

// AuthContext is the resolved identity for one request. Session.ID is the
// bearer token that resolved it.
type AuthContext struct {
	User    *models.User
	Session *models.Session
}

// BearerToken extracts the session token from the Authorization header.
// Returns "" when the header is missing or not a bearer scheme.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	token := strings.TrimPrefix(h, "Bearer ")
	if token == h {
		return ""
	}
	return strings.TrimSpace(token)
}

// SessionAuth resolves the bearer token once per request and, when it maps to
// a valid session, stores an AuthContext in the request context. It never
// rejects on its own: the action dispatcher decides which actions require a
// resolved user, since login/logout/check_auth must pass through.
func SessionAuth(sm *service.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token != "" {
				if user, session, err := sm.Resolve(r.Context(), token); err == nil {
					ctx := context.WithValue(r.Context(), authCtxKey, &AuthContext{User: user, Session: session})
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthFrom returns the request's resolved AuthContext, if any.
func AuthFrom(ctx context.Context) (*AuthContext, bool) {
	a, ok := ctx.Value(authCtxKey).(*AuthContext)
	return a, ok
}

// WithAuth returns a context carrying the given AuthContext. Used by tests and
// by anything that invokes handlers outside the middleware chain.
func WithAuth(ctx context.Context, a *AuthContext) context.Context {
	return context.WithValue(ctx, authCtxKey, a)
}

// ClientIP returns the client IP from X-Forwarded-For, X-Real-IP, or RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
