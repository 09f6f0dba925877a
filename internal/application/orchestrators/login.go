package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"llavedesol/internal/adapters/backend"
	"llavedesol/internal/domain/account"
	"llavedesol/internal/domain/session"
)

// TokenIssuer exchanges credentials for a token pair.
type TokenIssuer interface {
	Login(ctx context.Context, username, password string) (session.Tokens, error)
}

// SessionCreator defines the store interface needed by Login.
type SessionCreator interface {
	Create(ctx context.Context, c session.Context) error
}

// SessionDeleter defines the store interface needed by Logout.
type SessionDeleter interface {
	Delete(ctx context.Context, id string) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Username string
	Password string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Backend  TokenIssuer
	Sessions SessionCreator
	NewID    func() string
	Now      func() time.Time
}

// ExecuteLogin obtains tokens from the backend and opens a portal session.
// PRE: Username and Password are non-empty
// POST: Returns the persisted session; ErrInvalidCredentials on a 401,
// account.ErrNoRole when the token carries no role flag
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (session.Context, error) {
	username := strings.TrimSpace(input.Username)
	if err := account.ValidateCredentials(username, input.Password); err != nil {
		return session.Context{}, err
	}

	tokens, err := deps.Backend.Login(ctx, username, input.Password)
	if err != nil {
		if backend.IsUnauthorized(err) {
			slog.Info("auth_event", "event", "login_failed", "username", username, "reason", "rejected")
			return session.Context{}, account.ErrInvalidCredentials
		}
		return session.Context{}, fmt.Errorf("login: %w", err)
	}

	sess, err := session.New(deps.NewID(), tokens, deps.Now())
	if err != nil {
		if errors.Is(err, account.ErrNoRole) {
			slog.Info("auth_event", "event", "login_blocked", "username", username, "reason", "no_role")
		}
		return session.Context{}, err
	}

	if err := deps.Sessions.Create(ctx, sess); err != nil {
		return session.Context{}, fmt.Errorf("store session: %w", err)
	}

	slog.Info("auth_event", "event", "login_success", "username", sess.Username(), "role", sess.Role.String())
	return sess, nil
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Sessions SessionDeleter
}

// ExecuteLogout drops the session. An empty id is a no-op.
func ExecuteLogout(ctx context.Context, sess session.Context, deps LogoutDeps) error {
	if sess.ID == "" {
		return nil
	}
	if err := deps.Sessions.Delete(ctx, sess.ID); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "logout", "username", sess.Username())
	return nil
}
