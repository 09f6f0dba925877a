package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"llavedesol/internal/adapters/icalfeed"
	"llavedesol/internal/application/orchestrators"
	"llavedesol/internal/domain/account"
	"llavedesol/internal/domain/calendar"
)

// calendarBase returns the calendar path and mode for the signed-in role.
func calendarBase(r *http.Request) (string, calendar.Mode) {
	if currentSession(r).Role == account.RoleAdmin {
		return "/admin/calendario", calendar.ModeAdmin
	}
	return "/socio/calendario", calendar.ModeMember
}

// calendarInput reads the month cursor and the replayed click from values.
// Unknown or malformed values are ignored.
func calendarInput(values url.Values, mode calendar.Mode) orchestrators.CalendarInput {
	in := orchestrators.CalendarInput{Mode: mode}
	if m, err := time.Parse("2006-01", values.Get("mes")); err == nil {
		in.Month = m
	}
	if id, err := strconv.ParseInt(values.Get("evento"), 10, 64); err == nil && id > 0 {
		in.EventID = id
	}
	in.Day = values.Get("dia")
	in.New = values.Get("nuevo") == "1"
	return in
}

func (s *server) calendarDeps(r *http.Request) orchestrators.CalendarDeps {
	deps := orchestrators.CalendarDeps{Demo: s.Demo, Now: s.Now}
	if s.Demo == nil {
		deps.Backend = s.caller(r)
	}
	return deps
}

// handleCalendar handles GET /admin/calendario and GET /socio/calendario.
// ?mes=YYYY-MM picks the month; ?dia, ?evento and ?nuevo open the event form.
func (s *server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	base, mode := calendarBase(r)
	res, err := orchestrators.ExecuteLoadCalendar(r.Context(), calendarInput(r.URL.Query(), mode), s.calendarDeps(r))
	if err != nil {
		s.backendFailed(w, r, err)
		return
	}
	renderCalendar(w, r, base, res, "", 0)
}

// handleCalendarSave handles POST /admin/calendario: create, edit or delete one event.
func (s *server) handleCalendarSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulario inválido", http.StatusBadRequest)
		return
	}
	base, mode := calendarBase(r)
	input := orchestrators.SaveEventInput{
		CalendarInput: calendarInput(r.PostForm, mode),
		Draft: calendar.Draft{
			Title:       r.PostFormValue("titulo"),
			Description: r.PostFormValue("descripcion"),
			Date:        r.PostFormValue("fecha"),
			StartTime:   r.PostFormValue("hora_inicio"),
			EndTime:     r.PostFormValue("hora_fin"),
			Category:    calendar.Category(r.PostFormValue("categoria")),
		},
		Delete: r.PostFormValue("accion") == "eliminar",
	}

	res, err := orchestrators.ExecuteSaveEvent(r.Context(), input, s.calendarDeps(r))
	if errors.Is(err, orchestrators.ErrEventRejected) {
		reason := strings.TrimPrefix(err.Error(), orchestrators.ErrEventRejected.Error()+": ")
		renderCalendar(w, r, base, res, reason, http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		if res.View == nil {
			s.backendFailed(w, r, err)
			return
		}
		msg, status, handled := s.submitFailed(w, r, err)
		if handled {
			return
		}
		renderCalendar(w, r, base, res, msg, status)
		return
	}

	code := "guardado"
	switch {
	case s.Demo != nil:
		code = "demo"
	case input.Delete:
		code = "eliminado"
	}
	q := url.Values{"aviso": {code}}
	if !input.Month.IsZero() {
		q.Set("mes", input.Month.Format("2006-01"))
	}
	http.Redirect(w, r, base+"?"+q.Encode(), http.StatusSeeOther)
}

func renderCalendar(w http.ResponseWriter, r *http.Request, base string, res orchestrators.CalendarResult, errMsg string, status int) {
	month := res.View.Month()
	data := map[string]any{
		"Base":   base,
		"View":   res.View,
		"Grid":   res.View.Grid(),
		"Form":   res.View.Form(),
		"Prev":   month.AddDate(0, -1, 0),
		"Next":   month.AddDate(0, 1, 0),
		"Notice": res.Notice,
		"Error":  errMsg,
		"Admin":  res.View.Mode() == calendar.ModeAdmin,
	}
	if sel, ok := res.View.Form().Selected(); ok {
		data["Selected"] = sel
	}
	if status != 0 {
		data["Status"] = status
	}
	renderTemplate(w, r, "calendar.html", data)
}

// handleCalendarFeed serves the events as an iCalendar file for subscription.
func (s *server) handleCalendarFeed(w http.ResponseWriter, r *http.Request) {
	var (
		events []calendar.Event
		err    error
	)
	if s.Demo != nil {
		events = s.Demo.Events()
	} else {
		events, err = s.caller(r).ListEvents(r.Context())
	}
	if err != nil {
		s.backendFailed(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="llavedesol.ics"`)
	if err := icalfeed.Write(w, events, s.Now(), s.Host); err != nil {
		internalError(w, err)
	}
}
