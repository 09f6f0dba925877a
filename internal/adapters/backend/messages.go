package backend

import (
	"context"
	"net/http"
	"net/url"

	"llavedesol/internal/domain/account"
	"llavedesol/internal/domain/message"
)

const messagesPath = "/api/mensajes/"

// ListMessagesFrom returns the messages sent by party.
func (cl *Caller) ListMessagesFrom(ctx context.Context, from account.Party) ([]message.Message, error) {
	r := request{
		method: http.MethodGet,
		path:   messagesPath + "?emisor_tipo=" + url.QueryEscape(string(from)),
		label:  messagesPath,
	}
	var wire []messageWire
	if err := cl.do(ctx, r, &wire); err != nil {
		return nil, err
	}
	out := make([]message.Message, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// SendMessage posts a draft.
// PRE: d.Validate() == nil
func (cl *Caller) SendMessage(ctx context.Context, d message.Draft) (message.Message, error) {
	r, err := jsonRequest(http.MethodPost, messagesPath, messagesPath, messageDraftWire{
		EmisorTipo:       string(d.From),
		DestinatarioTipo: string(d.To),
		Asunto:           d.Subject,
		Mensaje:          d.Content,
	})
	if err != nil {
		return message.Message{}, err
	}
	var w messageWire
	if err := cl.do(ctx, r, &w); err != nil {
		return message.Message{}, err
	}
	return w.toDomain(), nil
}
