package orchestrators

import (
	"context"
	"log/slog"
	"time"
)

// SessionPurger defines the store interface needed by PurgeSessions.
type SessionPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PurgeSessionsDeps holds dependencies for PurgeSessions.
type PurgeSessionsDeps struct {
	Sessions SessionPurger
	Now      func() time.Time
}

// ExecutePurgeSessions deletes sessions past their 24h lifetime.
// Run on a schedule; Get already ignores expired rows, this only reclaims space.
func ExecutePurgeSessions(ctx context.Context, deps PurgeSessionsDeps) (int64, error) {
	n, err := deps.Sessions.DeleteExpired(ctx, deps.Now())
	if err != nil {
		slog.Error("session_purge_failed", "error", err)
		return 0, err
	}
	if n > 0 {
		slog.Info("session_purge", "deleted", n)
	}
	return n, nil
}
