package web

import (
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"

	"llavedesol/internal/application/orchestrators"
)

func messagesBase(r *http.Request) string {
	return currentSession(r).Role.Home() + "/mensajes"
}

func (s *server) loadPanel(r *http.Request) (orchestrators.MessagePanel, error) {
	sess := currentSession(r)
	return orchestrators.ExecuteListMessages(r.Context(), orchestrators.MessagesInput{
		Username: sess.Username(),
		Role:     sess.Role,
	}, orchestrators.MessagesDeps{Backend: s.caller(r), Hidden: s.Hidden})
}

// handleMessages renders the messaging panel: inbox plus compose form.
func (s *server) handleMessages(w http.ResponseWriter, r *http.Request) {
	panel, err := s.loadPanel(r)
	if err != nil {
		s.backendFailed(w, r, err)
		return
	}
	renderTemplate(w, r, "messages.html", map[string]any{
		"Panel": panel,
		"Base":  messagesBase(r),
	})
}

// handleMessageList renders only the inbox, for the panel's periodic refresh.
func (s *server) handleMessageList(w http.ResponseWriter, r *http.Request) {
	panel, err := s.loadPanel(r)
	if err != nil {
		s.backendFailed(w, r, err)
		return
	}
	renderPartial(w, "messages.html", "message_list", map[string]any{
		"Panel":     panel,
		"Base":      messagesBase(r),
		"CSRFField": csrf.TemplateField(r),
	})
}

// handleMessageSend posts the compose form to the other party.
func (s *server) handleMessageSend(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulario inválido", http.StatusBadRequest)
		return
	}
	sess := currentSession(r)
	input := orchestrators.SendMessageInput{
		Username: sess.Username(),
		Role:     sess.Role,
		Subject:  r.FormValue("asunto"),
		Content:  r.FormValue("contenido"),
	}
	deps := orchestrators.SendMessageDeps{Backend: s.caller(r)}
	if s.Hub != nil {
		deps.Notifier = s.Hub
	}

	if _, err := orchestrators.ExecuteSendMessage(r.Context(), input, deps); err != nil {
		msg, status, handled := s.submitFailed(w, r, err)
		if handled {
			return
		}
		panel, perr := s.loadPanel(r)
		if perr != nil {
			s.backendFailed(w, r, perr)
			return
		}
		renderTemplate(w, r, "messages.html", map[string]any{
			"Panel":   panel,
			"Base":    messagesBase(r),
			"Subject": input.Subject,
			"Content": input.Content,
			"Error":   msg,
			"Status":  status,
		})
		return
	}
	redirectFlash(w, r, messagesBase(r), "enviado")
}

// handleMessageHide hides one message from the viewer's panel.
func (s *server) handleMessageHide(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sess := currentSession(r)
	err = orchestrators.ExecuteHideMessage(r.Context(), orchestrators.HideMessageInput{
		Username:  sess.Username(),
		Role:      sess.Role,
		MessageID: id,
	}, orchestrators.HideMessageDeps{Hidden: s.Hidden})
	if err != nil {
		internalError(w, err)
		return
	}
	redirectFlash(w, r, messagesBase(r), "oculto")
}
