package middleware

import (
	"net/http"
	"time"

	"github.com/crucial707/asset-ledger/internal/metrics"
)

// Prometheus records request duration and count for each request.
// Wrap after recovery and request ID so metrics reflect the actual request.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		statusW := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(statusW, r)
		if r.URL.Path == "/metrics" {
			return
		}
		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		// The API multiplexes on ?action=; fold it into the path label so the
		// metric distinguishes actions without exploding cardinality.
		if action := r.URL.Query().Get("action"); action != "" {
			path += "?action=" + action
		}
		metrics.RecordRequest(r.Method, path, statusW.status, time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
