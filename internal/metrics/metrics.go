package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LoginsTotal counts login attempts by result (success, failure).
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	// AuditEntriesTotal counts committed audit entries by action.
	AuditEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Total number of audit log entries written by action",
		},
		[]string{"action"},
	)

	// StatusChangesTotal counts committed condition-status changes by new status.
	StatusChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_changes_total",
			Help: "Total number of asset condition-status changes by new status",
		},
		[]string{"status"},
	)

	// SessionsReapedTotal counts expired sessions removed by the reaper.
	SessionsReapedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_reaped_total",
			Help: "Total number of expired sessions deleted",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestDuration, RequestTotal,
			LoginsTotal, AuditEntriesTotal, StatusChangesTotal, SessionsReapedTotal,
		)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncLogins counts one login attempt; result is "success" or "failure".
func IncLogins(result string) {
	LoginsTotal.WithLabelValues(result).Inc()
}

// IncAuditEntries counts one committed audit entry for the given action.
func IncAuditEntries(action string) {
	AuditEntriesTotal.WithLabelValues(action).Inc()
}

// IncStatusChanges counts one committed status change to the given status.
func IncStatusChanges(status string) {
	StatusChangesTotal.WithLabelValues(status).Inc()
}

// AddSessionsReaped adds n reaped sessions to the counter.
func AddSessionsReaped(n int64) {
	if n > 0 {
		SessionsReapedTotal.Add(float64(n))
	}
}
