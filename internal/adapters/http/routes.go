package web

import (
	"net/http"

	"llavedesol/internal/adapters/http/middleware"
	"llavedesol/internal/adapters/realtime"
	"llavedesol/internal/domain/account"
)

func (s *server) registerRoutes(mux *http.ServeMux) {
	admin := middleware.RequireRole(account.RoleAdmin)
	treasurer := middleware.RequireRole(account.RoleTreasurer)
	member := middleware.RequireRole(account.RoleMember)
	h := func(f http.HandlerFunc) http.Handler { return f }

	// Public
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /anuncios/{id}", s.handleNoticeDetail)
	mux.HandleFunc("GET /contacto", s.handleContact)
	mux.HandleFunc("POST /contacto", s.handleContact)
	mux.HandleFunc("GET /admision", s.handleAdmission)
	mux.HandleFunc("POST /admision", s.handleAdmission)
	mux.HandleFunc("GET /donaciones", s.handleDonate)
	mux.HandleFunc("POST /donaciones", s.handleDonate)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Authentication
	mux.HandleFunc("GET /login", s.handleLogin)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.Handle("GET /cambiar-password", middleware.RequireAuth(h(s.handleChangePassword)))
	mux.Handle("POST /cambiar-password", middleware.RequireAuth(h(s.handleChangePassword)))

	// Administration
	mux.Handle("GET /admin", admin(h(s.handleAdminDashboard)))
	mux.Handle("GET /admin/anuncios/nuevo", admin(h(s.handleNoticeForm)))
	mux.Handle("GET /admin/anuncios/{id}/editar", admin(h(s.handleNoticeForm)))
	mux.Handle("POST /admin/anuncios", admin(h(s.handleNoticeSave)))
	mux.Handle("POST /admin/anuncios/{id}", admin(h(s.handleNoticeSave)))
	mux.Handle("POST /admin/anuncios/{id}/eliminar", admin(h(s.handleNoticeDelete)))
	mux.Handle("GET /admin/calendario", admin(h(s.handleCalendar)))
	mux.Handle("POST /admin/calendario", admin(h(s.handleCalendarSave)))
	mux.Handle("GET /admin/rendimiento", admin(h(s.handlePerf)))
	s.registerMessageRoutes(mux, "/admin", admin)

	// Treasury
	mux.Handle("GET /tesorero", treasurer(h(s.handleTreasurerDashboard)))
	mux.Handle("POST /tesorero/documentos", treasurer(h(s.handleDocumentSave)))
	mux.Handle("GET /tesorero/documentos/{id}/editar", treasurer(h(s.handleDocumentForm)))
	mux.Handle("POST /tesorero/documentos/{id}", treasurer(h(s.handleDocumentSave)))
	mux.Handle("POST /tesorero/documentos/{id}/eliminar", treasurer(h(s.handleDocumentDelete)))
	mux.Handle("GET /tesorero/donaciones", treasurer(h(s.handleDonations)))
	mux.Handle("GET /tesorero/donaciones/exportar", treasurer(h(s.handleDonationsExport)))
	s.registerMessageRoutes(mux, "/tesorero", treasurer)

	// Members
	mux.Handle("GET /socio", member(h(s.handleMemberDashboard)))
	mux.Handle("GET /socio/calendario", member(h(s.handleCalendar)))
	mux.Handle("GET /socio/calendario.ics", member(h(s.handleCalendarFeed)))

	// Live updates for the messaging panels
	mux.Handle("GET /ws/mensajes", middleware.RequireAuth(realtime.Handler(s.Hub, messageParty)))
}

func (s *server) registerMessageRoutes(mux *http.ServeMux, prefix string, guard func(http.Handler) http.Handler) {
	mux.Handle("GET "+prefix+"/mensajes", guard(http.HandlerFunc(s.handleMessages)))
	mux.Handle("GET "+prefix+"/mensajes/lista", guard(http.HandlerFunc(s.handleMessageList)))
	mux.Handle("POST "+prefix+"/mensajes", guard(http.HandlerFunc(s.handleMessageSend)))
	mux.Handle("POST "+prefix+"/mensajes/{id}/ocultar", guard(http.HandlerFunc(s.handleMessageHide)))
}

// messageParty resolves the messaging side of the authenticated user.
func messageParty(r *http.Request) (account.Party, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		return "", false
	}
	return sess.Role.MessageParty()
}
