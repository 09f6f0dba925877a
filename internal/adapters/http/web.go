package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"llavedesol/internal/adapters/backend"
	"llavedesol/internal/adapters/email"
	"llavedesol/internal/adapters/http/middleware"
	"llavedesol/internal/adapters/http/perf"
	"llavedesol/internal/adapters/realtime"
	hiddenStore "llavedesol/internal/adapters/storage/hidden"
	sessionStore "llavedesol/internal/adapters/storage/session"
	"llavedesol/internal/domain/calendar"
	"llavedesol/internal/domain/ledger"
	"llavedesol/internal/domain/notice"
	"llavedesol/internal/domain/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// DefaultRateLimitPerSecond is the per-IP budget for form submissions.
const DefaultRateLimitPerSecond = 5

// Deps holds everything the handlers need.
type Deps struct {
	Sessions sessionStore.Store
	Hidden   hiddenStore.Store
	Backend  *backend.Client
	Hub      *realtime.Hub
	Perf     *perf.Collector
	Email    email.Sender
	Inbox    string              // receives contact-form notifications
	Demo     *calendar.DemoStore // non-nil runs the calendar without the backend
	Ping     func(ctx context.Context) error

	CSRFKey            []byte
	Secure             bool     // production: Secure cookies, https-only CSRF origin checks
	TrustedOrigins     []string // extra hosts allowed to post forms
	Host               string   // domain used in iCalendar UIDs
	SlowRequest        time.Duration
	RateLimitPerSecond int
	Now                func() time.Time
}

// server carries the request-independent state of the portal.
type server struct {
	Deps
}

// NewMux wires HTTP handlers for the portal.
// PRE: d.Sessions, d.Hidden, d.Backend and d.Hub are set; d.CSRFKey is 32 bytes
// POST: ctx bounds background goroutines started for the handler (rate limiter sweeps)
func NewMux(ctx context.Context, d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Email == nil {
		d.Email = email.NewNoopSender()
	}
	if d.Host == "" {
		d.Host = "llavedesol.cl"
	}
	if d.RateLimitPerSecond <= 0 {
		d.RateLimitPerSecond = DefaultRateLimitPerSecond
	}
	s := &server{Deps: d}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	s.registerRoutes(mux)

	limiter := middleware.NewRateLimiter(ctx, d.RateLimitPerSecond, time.Second)

	return middleware.Chain(mux,
		middleware.Timing(d.Perf, d.SlowRequest),
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
		middleware.CSRF(d.CSRFKey, d.Secure, d.TrustedOrigins),
		middleware.Auth(d.Sessions, d.Now),
	)
}

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

var funcs = template.FuncMap{
	"markdown": renderMarkdown,
	"excerpt":  notice.Truncate,
	"fecha": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006")
	},
	"fechaHora": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006 15:04")
	},
	"monthName":  func(t time.Time) string { return calendar.MonthName(t.Month()) },
	"isoDate":    calendar.FormatDate,
	"monthParam": func(t time.Time) string { return t.Format("2006-01") },
	"weekdays":   func() []string { return calendar.WeekdayLabels },
	"categories": func() []calendar.Category { return calendar.Categories },
	"kinds":      func() []ledger.Kind { return ledger.Kinds },
	"add":        func(a, b int) int { return a + b },
	"sub":        func(a, b int) int { return a - b },
}

// pageFiles lists each page with the partials it includes.
var pageFiles = map[string][]string{
	"home.html":            nil,
	"notice.html":          nil,
	"login.html":           nil,
	"change_password.html": nil,
	"contact.html":         nil,
	"admission.html":       nil,
	"donate.html":          nil,
	"admin.html":           nil,
	"notice_form.html":     nil,
	"calendar.html":        nil,
	"messages.html":        {"message_list.html"},
	"perf.html":            nil,
	"treasurer.html":       {"document_fields.html"},
	"document_form.html":   {"document_fields.html"},
	"donations.html":       nil,
	"member.html":          nil,
}

var pages = parsePages()

func parsePages() map[string]*template.Template {
	out := make(map[string]*template.Template, len(pageFiles))
	for page, partials := range pageFiles {
		files := []string{"templates/layout.html", "templates/" + page}
		for _, p := range partials {
			files = append(files, "templates/"+p)
		}
		out[page] = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS, files...))
	}
	return out
}

// flashes maps the aviso query parameter set by post-redirect-get to its message.
var flashes = map[string]string{
	"guardado":   "Cambios guardados.",
	"eliminado":  "Elemento eliminado.",
	"enviado":    "Mensaje enviado.",
	"oculto":     "Mensaje ocultado de tu bandeja.",
	"password":   "Contraseña actualizada.",
	"contacto":   "¡Gracias! Recibimos tu mensaje y te responderemos pronto.",
	"solicitud":  "¡Gracias! Recibimos tu solicitud. Revisa tu correo para la confirmación.",
	"expirada":   "Tu sesión expiró. Ingresa nuevamente.",
	"demo":       "Modo demostración: los cambios no se guardan en el servidor.",
	"sin-cambio": "No hubo cambios.",
}

// renderTemplate executes page inside the layout with the common fields filled in:
// CSRFField, User (the session or nil) and Flash.
func renderTemplate(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	tpl, ok := pages[page]
	if !ok {
		internalError(w, errors.New("unknown template "+page))
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["CSRFField"] = csrf.TemplateField(r)
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		data["User"] = &sess
	}
	if _, set := data["Flash"]; !set {
		data["Flash"] = flashes[r.URL.Query().Get("aviso")]
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status, ok := data["Status"].(int); ok {
		w.WriteHeader(status)
	}
	_, _ = buf.WriteTo(w)
}

// renderPartial executes a named block of page without the layout.
func renderPartial(w http.ResponseWriter, page, block string, data any) {
	var buf bytes.Buffer
	if err := pages[page].ExecuteTemplate(&buf, block, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "Error interno del servidor", http.StatusInternalServerError)
}

// currentSession returns the authenticated session. Routes behind RequireRole always have one.
func currentSession(r *http.Request) session.Context {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return sess
}

// caller returns a backend caller carrying the user's access token.
func (s *server) caller(r *http.Request) *backend.Caller {
	return s.Backend.As(currentSession(r).Tokens.Access)
}

// backendFailed reports a failed backend call. A 401 means the access token is no
// longer accepted: the session is destroyed and the user is sent to /login.
// PRE: err came from a backend call
func (s *server) backendFailed(w http.ResponseWriter, r *http.Request, err error) {
	if backend.IsUnauthorized(err) {
		sess := currentSession(r)
		if sess.ID != "" {
			if derr := s.Sessions.Delete(r.Context(), sess.ID); derr != nil {
				slog.Error("session_delete_failed", "error", derr)
			}
		}
		slog.Info("auth_event", "event", "token_rejected", "username", sess.Username())
		middleware.ClearSessionCookie(w, s.Secure)
		http.Redirect(w, r, "/login?aviso=expirada", http.StatusSeeOther)
		return
	}
	slog.Error("backend_failed", "path", r.URL.Path, "error", err)
	http.Error(w, "No pudimos contactar al servidor de Llave de Sol. Intenta nuevamente en unos minutos.", http.StatusBadGateway)
}

// backendMessage extracts a user-facing reason from a 4xx backend response.
// POST: ok is false for anything that is not a client error with a readable body
func backendMessage(err error) (string, bool) {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Status < 400 || apiErr.Status >= 500 || apiErr.Status == http.StatusUnauthorized {
		return "", false
	}
	if msg := apiErr.Message(); msg != "" {
		return msg, true
	}
	return "El servidor rechazó la solicitud.", true
}

// submitFailed classifies a failed form submission. A rejected token ends the
// session and handled is true; otherwise msg and status describe what to render.
func (s *server) submitFailed(w http.ResponseWriter, r *http.Request, err error) (msg string, status int, handled bool) {
	if backend.IsUnauthorized(err) {
		s.backendFailed(w, r, err)
		return "", 0, true
	}
	if msg, ok := backendMessage(err); ok {
		return msg, http.StatusBadRequest, false
	}
	if !backend.IsBackendError(err) {
		return err.Error(), http.StatusUnprocessableEntity, false
	}
	slog.Error("submit_failed", "path", r.URL.Path, "error", err)
	return "No pudimos contactar al servidor. Intenta nuevamente en unos minutos.", http.StatusBadGateway, false
}

// redirectFlash redirects to path with an aviso code.
func redirectFlash(w http.ResponseWriter, r *http.Request, path, code string) {
	http.Redirect(w, r, path+"?aviso="+code, http.StatusSeeOther)
}
