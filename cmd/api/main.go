package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/crucial707/asset-ledger/internal/config"
	"github.com/crucial707/asset-ledger/internal/db"
	"github.com/crucial707/asset-ledger/internal/handlers"
	mw "github.com/crucial707/asset-ledger/internal/middleware"
	"github.com/crucial707/asset-ledger/internal/repo"
	"github.com/crucial707/asset-ledger/internal/scheduler"
	"github.com/crucial707/asset-ledger/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg.LogFormat)

	database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	database.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Run(db.URL(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	r, credentials, sessions := newRouter(database, cfg)

	ctx := context.Background()
	if cfg.AdminPassword != "" {
		if err := credentials.EnsureBootstrapPassword(ctx, "admin", cfg.AdminPassword); err != nil {
			slog.Error("admin bootstrap failed", "error", err)
			os.Exit(1)
		}
	} else if cfg.Env == "prod" {
		slog.Warn("ADMIN_PASSWORD not set; bootstrap admin cannot log in")
	}

	useTLS := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""

	if cfg.SessionReapCron != "" {
		c, err := scheduler.RunReaper(cfg.SessionReapCron, sessions)
		if err != nil {
			slog.Error("invalid SESSION_REAP_CRON", "expr", cfg.SessionReapCron, "error", err)
			os.Exit(1)
		}
		defer c.Stop()
	}

	addr := ":" + cfg.Port
	slog.Info("starting api", "addr", addr, "tls", useTLS)
	if useTLS {
		err = http.ListenAndServeTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, r)
	} else {
		err = http.ListenAndServe(addr, r)
	}
	slog.Error("server stopped", "error", err)
	os.Exit(1)
}

// newRouter wires repositories, services, and middleware into the API router.
// The credential store and session manager are returned for the bootstrap
// password swap and the reaper.
func newRouter(database *sql.DB, cfg config.Config) (*chi.Mux, *service.CredentialStore, *service.SessionManager) {
	userRepo := repo.NewUserRepo(database)
	sessionRepo := repo.NewSessionRepo(database)
	assetRepo := repo.NewAssetRepo(database)
	auditRepo := repo.NewAuditRepo(database)
	historyRepo := repo.NewStatusHistoryRepo(database)

	credentials := service.NewCredentialStore(userRepo)
	sessions := service.NewSessionManager(sessionRepo, time.Duration(cfg.SessionTTLHours)*time.Hour)
	assets := service.NewAssetService(database)

	api := handlers.NewAPI(
		credentials, sessions, assets,
		assetRepo, auditRepo, historyRepo,
		mw.LoginRateLimiter(),
	)

	useTLS := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.Recoverer)
	r.Use(mw.SecurityHeaders(useTLS))
	r.Use(mw.CORS(cfg.CORSAllowedOrigins))
	r.Use(mw.Prometheus)
	r.Use(mw.RequestLog)
	r.Use(mw.MaxBytes(mw.DefaultMaxBodyBytes))
	r.Use(mw.SessionAuth(sessions))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/api", api.Handle)

	return r, credentials, sessions
}

func setupLogger(format string) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
