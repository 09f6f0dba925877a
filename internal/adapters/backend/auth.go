package backend

import (
	"context"
	"net/http"

	"llavedesol/internal/domain/session"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token pair.
// POST: a 401 APIError means the credentials were rejected
func (cl *Caller) Login(ctx context.Context, username, password string) (session.Tokens, error) {
	r, err := jsonRequest(http.MethodPost, "/api/token/", "/api/token/", credentials{username, password})
	if err != nil {
		return session.Tokens{}, err
	}
	var tokens session.Tokens
	if err := cl.do(ctx, r, &tokens); err != nil {
		return session.Tokens{}, err
	}
	return tokens, nil
}

type passwordChange struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword updates the caller's password.
// PRE: caller is authenticated
func (cl *Caller) ChangePassword(ctx context.Context, current, next string) error {
	r, err := jsonRequest(http.MethodPost, "/api/cambiar-password/", "/api/cambiar-password/",
		passwordChange{OldPassword: current, NewPassword: next})
	if err != nil {
		return err
	}
	return cl.do(ctx, r, nil)
}
