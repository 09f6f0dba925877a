package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"llavedesol/internal/adapters/backend"
	"llavedesol/internal/application/listutil"
	"llavedesol/internal/application/orchestrators"
	"llavedesol/internal/domain/admission"
	"llavedesol/internal/domain/contact"
	"llavedesol/internal/domain/donation"
)

// NoticesPerPage is the landing page's page size.
const NoticesPerPage = 6

// handleHome renders the landing page with the paginated announcement feed.
// A backend outage still renders the page, with an empty feed.
func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	notices, err := s.Backend.Anonymous().ListNotices(r.Context())
	feedErr := ""
	if err != nil {
		slog.Warn("notice_feed_unavailable", "error", err)
		feedErr = "No pudimos cargar los anuncios en este momento."
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	info := listutil.NewPageInfo(page, NoticesPerPage, len(notices))
	renderTemplate(w, r, "home.html", map[string]any{
		"Notices":  listutil.Slice(notices, info),
		"Page":     info,
		"FeedErr":  feedErr,
		"BasePath": "/",
	})
}

// handleNoticeDetail renders one announcement.
func (s *server) handleNoticeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	n, err := s.Backend.Anonymous().GetNotice(r.Context(), id)
	if backend.IsNotFound(err) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.backendFailed(w, r, err)
		return
	}
	renderTemplate(w, r, "notice.html", map[string]any{"Notice": n})
}

// handleContact handles GET (form) and POST (submit) for /contacto.
func (s *server) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "contact.html", map[string]any{"Form": contact.Message{}})
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulario inválido", http.StatusBadRequest)
		return
	}
	form := contact.Message{
		Name:    r.FormValue("nombre"),
		Email:   r.FormValue("correo"),
		Content: r.FormValue("mensaje"),
	}
	err := orchestrators.ExecuteSubmitContact(r.Context(), form, orchestrators.ContactDeps{
		Backend: s.Backend.Anonymous(),
		Sender:  s.Email,
		Inbox:   s.Inbox,
	})
	if err != nil {
		s.formFailed(w, r, "contact.html", form, err)
		return
	}
	redirectFlash(w, r, "/contacto", "contacto")
}

// handleAdmission handles GET (form) and POST (submit) for /admision.
func (s *server) handleAdmission(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "admission.html", map[string]any{"Form": admission.Application{}})
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulario inválido", http.StatusBadRequest)
		return
	}
	form := admission.Application{
		FullName:   r.FormValue("nombre_completo"),
		NationalID: r.FormValue("rut_dni"),
		BirthDate:  r.FormValue("fecha_nacimiento"),
		Email:      r.FormValue("email"),
		Phone:      r.FormValue("telefono"),
		Profession: r.FormValue("profesion"),
		Motivation: r.FormValue("motivacion"),
	}
	err := orchestrators.ExecuteSubmitApplication(r.Context(), form, orchestrators.AdmissionDeps{
		Backend: s.Backend.Anonymous(),
		Sender:  s.Email,
		Now:     s.Now,
	})
	if err != nil {
		s.formFailed(w, r, "admission.html", form, err)
		return
	}
	redirectFlash(w, r, "/admision", "solicitud")
}

// handleDonate handles GET (form) and POST (checkout redirect) for /donaciones.
func (s *server) handleDonate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "donate.html", map[string]any{"Form": donation.Pledge{Amount: 5000}})
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulario inválido", http.StatusBadRequest)
		return
	}
	amount, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("monto")))
	form := donation.Pledge{Amount: amount, DonorName: r.FormValue("nombre")}
	checkout, err := orchestrators.ExecuteDonate(r.Context(), form, orchestrators.DonateDeps{Backend: s.Backend.Anonymous()})
	if err != nil {
		slog.Error("donation_failed", "error", err)
		renderTemplate(w, r, "donate.html", map[string]any{
			"Form":   form,
			"Error":  "No pudimos iniciar el pago. Intenta nuevamente más tarde.",
			"Status": http.StatusBadGateway,
		})
		return
	}
	http.Redirect(w, r, checkout, http.StatusSeeOther)
}

// handleHealth reports whether the local database answers.
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.Ping != nil {
		if err := s.Ping(r.Context()); err != nil {
			slog.Error("health_check_failed", "error", err)
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// formFailed re-renders a public form page with the validation or backend error.
func (s *server) formFailed(w http.ResponseWriter, r *http.Request, page string, form any, err error) {
	msg, status, handled := s.submitFailed(w, r, err)
	if handled {
		return
	}
	renderTemplate(w, r, page, map[string]any{"Form": form, "Error": msg, "Status": status})
}
