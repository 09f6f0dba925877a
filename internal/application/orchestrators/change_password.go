package orchestrators

import (
	"context"
	"log/slog"

	"llavedesol/internal/domain/account"
)

// PasswordChanger defines the backend interface needed by ChangePassword.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, current, next string) error
}

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	Username        string
	CurrentPassword string
	NewPassword     string
	Confirmation    string
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	Backend PasswordChanger
}

// ExecuteChangePassword validates the form and forwards the change to the backend.
// PRE: the backend caller carries the user's access token
// POST: nothing reaches the backend unless account.ValidatePasswordChange passes
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if err := account.ValidatePasswordChange(input.CurrentPassword, input.NewPassword, input.Confirmation); err != nil {
		return err
	}
	if err := deps.Backend.ChangePassword(ctx, input.CurrentPassword, input.NewPassword); err != nil {
		slog.Info("auth_event", "event", "password_change_failed", "username", input.Username, "error", err)
		return err
	}
	slog.Info("auth_event", "event", "password_changed", "username", input.Username)
	return nil
}
