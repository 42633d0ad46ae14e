package handlers

import (
	"net/http"

	"github.com/crucial707/asset-ledger/internal/middleware"
	"github.com/crucial707/asset-ledger/internal/repo"
	"github.com/crucial707/asset-ledger/internal/service"
	"github.com/go-playground/validator/v10"
)

// publicActions bypass the auth gate. Everything else requires a resolved
// session before any repository access.
var publicActions = map[string]bool{
	"login":      true,
	"logout":     true,
	"check_auth": true,
}

// API is the action-multiplexed JSON endpoint. One path (/api), dispatched on
// the "action" query parameter and HTTP method, matching the contract the
// frontend already consumes.
type API struct {
	Credentials *service.CredentialStore
	Sessions    *service.SessionManager
	Assets      *service.AssetService
	AssetRepo   *repo.AssetRepo
	AuditRepo   *repo.AuditRepo
	HistoryRepo *repo.StatusHistoryRepo

	// LoginLimiter throttles the login action per client IP. Optional.
	LoginLimiter *middleware.IPRateLimiter

	validate *validator.Validate
}

func NewAPI(
	credentials *service.CredentialStore,
	sessions *service.SessionManager,
	assets *service.AssetService,
	assetRepo *repo.AssetRepo,
	auditRepo *repo.AuditRepo,
	historyRepo *repo.StatusHistoryRepo,
	loginLimiter *middleware.IPRateLimiter,
) *API {
	return &API{
		Credentials:  credentials,
		Sessions:     sessions,
		Assets:       assets,
		AssetRepo:    assetRepo,
		AuditRepo:    auditRepo,
		HistoryRepo:  historyRepo,
		LoginLimiter: loginLimiter,
		validate:     validator.New(),
	}
}

// Handle dispatches one request. The auth gate runs first: a non-public
// action without a resolved user is rejected before any business logic.
func (a *API) Handle(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")

	if !publicActions[action] {
		if _, ok := middleware.AuthFrom(r.Context()); !ok {
			JSONError(w, "Authentication required", http.StatusUnauthorized)
			return
		}
	}

	switch r.Method {
	case http.MethodGet:
		switch action {
		case "login":
			JSON(w, http.StatusOK, map[string]string{"message": "Login form"})
		case "logout":
			a.Logout(w, r)
		case "check_auth":
			a.CheckAuth(w, r)
		case "stats":
			a.Stats(w, r)
		case "asset_history":
			a.AssetHistory(w, r)
		case "audit_log":
			a.ListAudit(w, r)
		case "audit_detail":
			a.AuditDetail(w, r)
		default:
			// "asset" and the bare GET both serve asset reads.
			a.GetAssets(w, r)
		}
	case http.MethodPost:
		switch action {
		case "login":
			a.Login(w, r)
		case "change_status":
			a.ChangeStatus(w, r)
		default:
			a.CreateAsset(w, r)
		}
	case http.MethodPut:
		a.UpdateAsset(w, r)
	case http.MethodDelete:
		a.DeleteAsset(w, r)
	default:
		JSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// actor builds the audit actor for the authenticated request.
func actor(r *http.Request) (service.Actor, bool) {
	auth, ok := middleware.AuthFrom(r.Context())
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{
		UserID:    auth.User.ID,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}, true
}
