package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"llavedesol/internal/adapters/realtime"
	"llavedesol/internal/domain/account"
	"llavedesol/internal/domain/hidden"
	"llavedesol/internal/domain/message"
)

// MessageLister defines the backend interface for reading the board.
type MessageLister interface {
	ListMessagesFrom(ctx context.Context, from account.Party) ([]message.Message, error)
}

// MessageSender defines the backend interface for posting to the board.
type MessageSender interface {
	SendMessage(ctx context.Context, d message.Draft) (message.Message, error)
}

// HiddenStore defines the store interface for soft-hidden message ids.
type HiddenStore interface {
	Load(ctx context.Context, username string, role account.Role) (hidden.Set, error)
	Save(ctx context.Context, username string, set hidden.Set) error
}

// Notifier pushes events to connected panels of one party.
type Notifier interface {
	Notify(to account.Party, e realtime.Event) int
}

// --- List Messages ---

// MessagesInput identifies the viewer of the messaging panel.
type MessagesInput struct {
	Username string
	Role     account.Role
}

// MessagesDeps holds dependencies for ListMessages.
type MessagesDeps struct {
	Backend MessageLister
	Hidden  HiddenStore
}

// MessagePanel is the inbox of one party.
type MessagePanel struct {
	Party    account.Party
	Messages []message.Message
	NewCount int
	Hidden   int
}

// ExecuteListMessages loads messages sent by the counterpart, minus the viewer's hidden ids.
// PRE: Role participates in messaging
// POST: message.ErrNoMessagingRole for members
func ExecuteListMessages(ctx context.Context, input MessagesInput, deps MessagesDeps) (MessagePanel, error) {
	party, ok := input.Role.MessageParty()
	if !ok {
		return MessagePanel{}, message.ErrNoMessagingRole
	}

	list, err := deps.Backend.ListMessagesFrom(ctx, party.Counterpart())
	if err != nil {
		return MessagePanel{}, fmt.Errorf("list messages: %w", err)
	}
	set, err := deps.Hidden.Load(ctx, input.Username, input.Role)
	if err != nil {
		return MessagePanel{}, fmt.Errorf("load hidden messages: %w", err)
	}

	visible := hidden.Visible(set, list, func(m message.Message) int64 { return m.ID })
	return MessagePanel{
		Party:    party,
		Messages: visible,
		NewCount: message.CountNew(visible, party),
		Hidden:   len(list) - len(visible),
	}, nil
}

// --- Send Message ---

// SendMessageInput carries the compose form.
type SendMessageInput struct {
	Username string
	Role     account.Role
	Subject  string
	Content  string
}

// SendMessageDeps holds dependencies for SendMessage.
type SendMessageDeps struct {
	Backend  MessageSender
	Notifier Notifier // may be nil
}

// ExecuteSendMessage posts a message to the counterpart and notifies its open panels.
// PRE: Role participates in messaging
// POST: the draft is addressed from the viewer's party to the other one
func ExecuteSendMessage(ctx context.Context, input SendMessageInput, deps SendMessageDeps) (message.Message, error) {
	party, ok := input.Role.MessageParty()
	if !ok {
		return message.Message{}, message.ErrNoMessagingRole
	}
	draft := message.NewDraft(party, input.Subject, input.Content)
	if err := draft.Validate(); err != nil {
		return message.Message{}, err
	}

	sent, err := deps.Backend.SendMessage(ctx, draft)
	if err != nil {
		return message.Message{}, err
	}

	delivered := 0
	if deps.Notifier != nil {
		delivered = deps.Notifier.Notify(draft.To, realtime.NewMessageEvent(sent.ID, draft.From))
	}
	slog.Info("message_event", "event", "message_sent", "message_id", sent.ID,
		"from", string(draft.From), "to", string(draft.To), "username", input.Username, "pushed", delivered)
	return sent, nil
}

// --- Hide Message ---

// HideMessageInput identifies the message to hide from one user's panel.
type HideMessageInput struct {
	Username  string
	Role      account.Role
	MessageID int64
}

// HideMessageDeps holds dependencies for HideMessage.
type HideMessageDeps struct {
	Hidden HiddenStore
}

// ExecuteHideMessage adds the id to the viewer's hidden set. Hiding twice is a no-op.
// POST: the backend is never called
func ExecuteHideMessage(ctx context.Context, input HideMessageInput, deps HideMessageDeps) error {
	if _, ok := input.Role.MessageParty(); !ok {
		return message.ErrNoMessagingRole
	}
	set, err := deps.Hidden.Load(ctx, input.Username, input.Role)
	if err != nil {
		return fmt.Errorf("load hidden messages: %w", err)
	}
	if set.Contains(input.MessageID) {
		return nil
	}
	set.Add(input.MessageID)
	if err := deps.Hidden.Save(ctx, input.Username, set); err != nil {
		return fmt.Errorf("save hidden messages: %w", err)
	}
	slog.Info("message_event", "event", "message_hidden", "message_id", input.MessageID, "username", input.Username)
	return nil
}
