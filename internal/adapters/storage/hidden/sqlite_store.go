package hidden

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"llavedesol/internal/adapters/storage"
	"llavedesol/internal/domain/account"
	domain "llavedesol/internal/domain/hidden"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Load returns the user's set for role.
// POST: a missing row or a corrupt value yields an empty set
func (s *SQLiteStore) Load(ctx context.Context, username string, role account.Role) (domain.Set, error) {
	var ids string
	err := s.db.QueryRowContext(ctx,
		`SELECT ids FROM hidden_message WHERE username = ? AND role = ?`,
		username, role.String()).Scan(&ids)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.New(role), nil
	}
	if err != nil {
		return domain.Set{}, fmt.Errorf("load hidden messages: %w", err)
	}
	set, err := domain.Deserialize(role, ids)
	if err != nil {
		slog.Warn("hidden_set_corrupt", "username", username, "role", role.String(), "error", err)
		return domain.New(role), nil
	}
	return set, nil
}

// Save replaces the stored set for the set's role.
func (s *SQLiteStore) Save(ctx context.Context, username string, set domain.Set) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hidden_message (username, role, ids, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(username, role) DO UPDATE SET
		   ids=excluded.ids, updated_at=excluded.updated_at`,
		username, set.Role().String(), set.Serialize(), s.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save hidden messages: %w", err)
	}
	return nil
}
