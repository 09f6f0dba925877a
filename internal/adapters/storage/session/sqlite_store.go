package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"llavedesol/internal/adapters/storage"
	domain "llavedesol/internal/domain/session"
)

// fixed width so stored UTC timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite. Tokens are sealed at rest.
type SQLiteStore struct {
	db     storage.SQLDB
	sealer *Sealer
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore loads the install's key salt, creating it on first run.
// PRE: db is migrated, secret is non-empty
// POST: sessions sealed before a secret change can no longer be opened
func NewSQLiteStore(ctx context.Context, db storage.SQLDB, secret string) (*SQLiteStore, error) {
	salt, err := loadSalt(ctx, db)
	if err != nil {
		return nil, err
	}
	sealer, err := NewSealer(secret, salt)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, sealer: sealer}, nil
}

func loadSalt(ctx context.Context, db storage.SQLDB) ([]byte, error) {
	var salt []byte
	err := db.QueryRowContext(ctx, `SELECT salt FROM session_key WHERE id = 1`).Scan(&salt)
	if err == nil {
		return salt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load session salt: %w", err)
	}
	fresh, err := GenerateSalt()
	if err != nil {
		return nil, err
	}
	// a concurrent first run may win the insert; reread either way
	if _, err := db.ExecContext(ctx,
		`INSERT INTO session_key (id, salt) VALUES (1, ?) ON CONFLICT(id) DO NOTHING`, fresh); err != nil {
		return nil, fmt.Errorf("store session salt: %w", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT salt FROM session_key WHERE id = 1`).Scan(&salt); err != nil {
		return nil, fmt.Errorf("reload session salt: %w", err)
	}
	return salt, nil
}

// Create persists sess.
// PRE: sess was built by domain.New
// POST: the row expires at sess.ExpiresAt()
func (s *SQLiteStore) Create(ctx context.Context, sess domain.Context) error {
	plain, err := json.Marshal(sess.Tokens)
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}
	sealed, err := s.sealer.Seal(plain)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session (id, username, role, tokens, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Username(), sess.Role.String(), sealed,
		sess.CreatedAt.UTC().Format(timeLayout), sess.ExpiresAt().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get loads and decrypts a session.
// POST: expired and undecryptable rows are deleted and reported as domain.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, id string, now time.Time) (domain.Context, error) {
	var (
		sealed    []byte
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT tokens, created_at FROM session WHERE id = ?`, id).Scan(&sealed, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Context{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Context{}, fmt.Errorf("load session: %w", err)
	}

	sess, err := s.rebuild(id, sealed, createdAt)
	if err != nil {
		slog.Warn("session_unreadable", "error", err)
		s.Delete(ctx, id)
		return domain.Context{}, domain.ErrNotFound
	}
	if sess.Expired(now) {
		s.Delete(ctx, id)
		return domain.Context{}, domain.ErrNotFound
	}
	return sess, nil
}

func (s *SQLiteStore) rebuild(id string, sealed []byte, createdAt string) (domain.Context, error) {
	created, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.Context{}, fmt.Errorf("parse created_at: %w", err)
	}
	plain, err := s.sealer.Open(sealed)
	if err != nil {
		return domain.Context{}, err
	}
	var tokens domain.Tokens
	if err := json.Unmarshal(plain, &tokens); err != nil {
		return domain.Context{}, fmt.Errorf("decode tokens: %w", err)
	}
	return domain.New(id, tokens, created)
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired purges every session past its expiry.
// POST: returns the number of rows removed
func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM session WHERE expires_at <= ?`, now.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
