package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/crucial707/asset-ledger/internal/service"
	"github.com/robfig/cron/v3"
)

// reapTimeout bounds one reaper run.
const reapTimeout = 30 * time.Second

// RunReaper starts a cron-driven expired-session reaper and returns the
// running cron so the caller can Stop it. Reaping is storage reclamation only;
// expired sessions are already unresolvable.
func RunReaper(cronExpr string, sessions *service.SessionManager) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reapTimeout)
		defer cancel()
		n, err := sessions.Reap(ctx)
		if err != nil {
			slog.Error("session reap failed", "error", err)
			return
		}
		if n > 0 {
			slog.Info("reaped expired sessions", "count", n)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
