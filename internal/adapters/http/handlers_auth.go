package web

import (
	"errors"
	"log/slog"
	"net/http"

	"llavedesol/internal/adapters/backend"
	"llavedesol/internal/adapters/http/middleware"
	sessionStore "llavedesol/internal/adapters/storage/session"
	"llavedesol/internal/application/orchestrators"
	"llavedesol/internal/domain/account"
)

// handleLogin handles GET and POST /login
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, sess.Role.Home(), http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulario inválido", http.StatusBadRequest)
		return
	}
	input := orchestrators.LoginInput{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}

	id, err := sessionStore.NewID()
	if err != nil {
		internalError(w, err)
		return
	}
	sess, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		Backend:  s.Backend.Anonymous(),
		Sessions: s.Sessions,
		NewID:    func() string { return id },
		Now:      s.Now,
	})
	if err != nil {
		renderTemplate(w, r, "login.html", map[string]any{
			"Username": input.Username,
			"Error":    loginMessage(err),
			"Status":   loginStatus(err),
		})
		return
	}

	middleware.SetSessionCookie(w, sess.ID, s.Secure)
	http.Redirect(w, r, sess.Role.Home(), http.StatusSeeOther)
}

// loginMessage maps a login failure to the text shown on the form.
func loginMessage(err error) string {
	switch {
	case errors.Is(err, account.ErrEmptyCredentials),
		errors.Is(err, account.ErrInvalidCredentials),
		errors.Is(err, account.ErrNoRole):
		return err.Error()
	}
	if msg, ok := backendMessage(err); ok {
		return msg
	}
	slog.Error("login_failed", "error", err)
	return "No pudimos iniciar sesión. Intenta nuevamente en unos minutos."
}

func loginStatus(err error) int {
	switch {
	case errors.Is(err, account.ErrEmptyCredentials):
		return http.StatusUnprocessableEntity
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, account.ErrNoRole):
		return http.StatusForbidden
	case backend.IsBackendError(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// handleLogout handles POST /logout
func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	if err := orchestrators.ExecuteLogout(r.Context(), sess, orchestrators.LogoutDeps{Sessions: s.Sessions}); err != nil {
		slog.Error("logout_failed", "error", err)
	}
	middleware.ClearSessionCookie(w, s.Secure)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleChangePassword handles GET and POST /cambiar-password
func (s *server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "change_password.html", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulario inválido", http.StatusBadRequest)
		return
	}

	sess := currentSession(r)
	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		Username:        sess.Username(),
		CurrentPassword: r.FormValue("current_password"),
		NewPassword:     r.FormValue("new_password"),
		Confirmation:    r.FormValue("confirm_password"),
	}, orchestrators.ChangePasswordDeps{Backend: s.caller(r)})
	if err == nil {
		redirectFlash(w, r, sess.Role.Home(), "password")
		return
	}
	msg, status, handled := s.submitFailed(w, r, err)
	if handled {
		return
	}
	renderTemplate(w, r, "change_password.html", map[string]any{"Error": msg, "Status": status})
}
