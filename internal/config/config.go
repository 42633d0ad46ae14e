package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	// SessionTTLHours is the session lifetime in hours (default 24). Set via SESSION_TTL_HOURS.
	SessionTTLHours int

	// SessionReapCron is the cron expression for the expired-session reaper
	// (default every 15 minutes). Empty disables the scheduled reaper;
	// login-time reaping still runs.
	SessionReapCron string

	// AdminPassword replaces the bootstrap admin placeholder hash on first boot.
	// When empty and the placeholder is still in place, admin cannot log in.
	AdminPassword string

	// Env is "dev" (default) or "prod". When "prod", ADMIN_PASSWORD must be set
	// while the bootstrap placeholder is in place.
	Env string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// When empty, the API listens with plain HTTP.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// CORSAllowedOrigins is a list of origins allowed for CORS.
	// Set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are sent (same-origin only).
	CORSAllowedOrigins []string
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "assetledger"),
		DBUser: getEnv("DB_USER", "ledger"),
		DBPass: getEnv("DB_PASS", "ledger"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 24),
		SessionReapCron: getEnv("SESSION_REAP_CRON", "*/15 * * * *"),

		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		Env:           getEnv("ENV", "dev"),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
