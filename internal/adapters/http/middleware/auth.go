package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"llavedesol/internal/domain/account"
	"llavedesol/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionCookieName is the cookie holding the opaque session id.
const SessionCookieName = "llave_session"

// SessionLookup resolves a cookie value to a live session.
type SessionLookup interface {
	Get(ctx context.Context, id string, now time.Time) (session.Context, error)
}

// Auth returns middleware that loads the session named by the cookie and puts it in the context.
// It does NOT block unauthenticated requests; use RequireAuth or RequireRole for that.
// A cookie naming an unknown or expired session is cleared.
func Auth(sessions SessionLookup, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				sess, err := sessions.Get(r.Context(), cookie.Value, now())
				switch {
				case err == nil:
					r = r.WithContext(ContextWithSession(r.Context(), sess))
				case errors.Is(err, session.ErrNotFound):
					ClearSessionCookie(w, false)
				default:
					slog.Error("session_lookup_failed", "error", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns middleware that blocks unauthenticated requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that admits only sessions with the given role.
// PRE: none
// POST: anonymous users go to /login; users with another role go to their own Home()
func RequireRole(role account.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := GetSessionFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if sess.Role != role {
				slog.Info("auth_denied", "username", sess.Username(), "role", sess.Role.String(), "path", r.URL.Path)
				http.Redirect(w, r, sess.Role.Home(), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (session.Context, bool) {
	sess, ok := ctx.Value(sessionContextKey).(session.Context)
	return sess, ok
}

// ContextWithSession returns a context carrying sess.
func ContextWithSession(ctx context.Context, sess session.Context) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// IsRole reports whether the request belongs to a session with role.
func IsRole(ctx context.Context, role account.Role) bool {
	sess, ok := GetSessionFromContext(ctx)
	return ok && sess.Role == role
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, id string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(session.MaxAge / time.Second),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
