package web

import (
	"net/http"
	"strconv"
	"time"

	"llavedesol/internal/adapters/backend"
	"llavedesol/internal/adapters/http/perf"
	"llavedesol/internal/application/orchestrators"
	"llavedesol/internal/domain/notice"
)

// PerfWindow is how far back the performance page aggregates.
const PerfWindow = time.Hour

// handleAdminDashboard lists the announcements with their edit actions.
func (s *server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	notices, err := s.caller(r).ListNotices(r.Context())
	if err != nil {
		s.backendFailed(w, r, err)
		return
	}
	renderTemplate(w, r, "admin.html", map[string]any{"Notices": notices})
}

// handleNoticeForm renders the create form, or the edit form when the path has an id.
func (s *server) handleNoticeForm(w http.ResponseWriter, r *http.Request) {
	var n notice.Notice
	if raw := r.PathValue("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		n, err = s.caller(r).GetNotice(r.Context(), id)
		if backend.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			s.backendFailed(w, r, err)
			return
		}
	}
	renderTemplate(w, r, "notice_form.html", map[string]any{"Form": n})
}

// handleNoticeSave creates (POST /admin/anuncios) or updates (POST /admin/anuncios/{id}).
func (s *server) handleNoticeSave(w http.ResponseWriter, r *http.Request) {
	var id int64
	if raw := r.PathValue("id"); raw != "" {
		var err error
		if id, err = strconv.ParseInt(raw, 10, 64); err != nil {
			http.NotFound(w, r)
			return
		}
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulario inválido", http.StatusBadRequest)
		return
	}

	input := orchestrators.SaveNoticeInput{
		ID:       id,
		Title:    r.FormValue("titulo"),
		Content:  r.FormValue("contenido"),
		ImageURL: r.FormValue("imagen_url"),
		Author:   currentSession(r).Username(),
	}
	_, err := orchestrators.ExecuteSaveNotice(r.Context(), input, orchestrators.SaveNoticeDeps{Backend: s.caller(r)})
	if err != nil {
		msg, status, handled := s.submitFailed(w, r, err)
		if handled {
			return
		}
		renderTemplate(w, r, "notice_form.html", map[string]any{
			"Form":   notice.Notice{ID: id, Title: input.Title, Content: input.Content, ImageURL: input.ImageURL},
			"Error":  msg,
			"Status": status,
		})
		return
	}
	redirectFlash(w, r, "/admin", "guardado")
}

// handleNoticeDelete handles POST /admin/anuncios/{id}/eliminar
func (s *server) handleNoticeDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	err = orchestrators.ExecuteDeleteNotice(r.Context(), orchestrators.DeleteNoticeInput{
		ID:     id,
		Author: currentSession(r).Username(),
	}, orchestrators.SaveNoticeDeps{Backend: s.caller(r)})
	if err != nil && !backend.IsNotFound(err) {
		s.backendFailed(w, r, err)
		return
	}
	redirectFlash(w, r, "/admin", "eliminado")
}

type perfSection struct {
	Title string
	Stats []perf.Stat
}

// handlePerf renders the request, query and backend timings of the last PerfWindow.
func (s *server) handlePerf(w http.ResponseWriter, r *http.Request) {
	if s.Perf == nil {
		renderTemplate(w, r, "perf.html", nil)
		return
	}
	snap := s.Perf.Snapshot(s.Now().Add(-PerfWindow), 10)
	renderTemplate(w, r, "perf.html", map[string]any{
		"Snapshot": snap,
		"Sections": []perfSection{
			{"Rutas más lentas", snap.Requests},
			{"Consultas SQLite", snap.Queries},
			{"Llamadas al servidor", snap.Backend},
		},
	})
}
