package session

import (
	"context"
	"time"

	domain "llavedesol/internal/domain/session"
)

// Store persists portal sessions between requests and restarts.
type Store interface {
	Create(ctx context.Context, sess domain.Context) error
	// Get returns domain.ErrNotFound for unknown, expired or unreadable sessions.
	Get(ctx context.Context, id string, now time.Time) (domain.Context, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
