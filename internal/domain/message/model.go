package message

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"llavedesol/internal/domain/account"
	"llavedesol/internal/domain/notice"
)

// PreviewLength is how many runes of the body the panel shows.
const PreviewLength = 80

// MaxSubjectLength matches the backend column.
const MaxSubjectLength = 200

// Domain errors
var (
	ErrEmptySubject    = errors.New("el asunto es obligatorio")
	ErrSubjectTooLong  = errors.New("el asunto no puede superar los 200 caracteres")
	ErrEmptyContent    = errors.New("el mensaje no puede estar vacío")
	ErrInvalidParty    = errors.New("emisor o destinatario inválido")
	ErrSameParty       = errors.New("el destinatario debe ser la otra área")
	ErrNoMessagingRole = errors.New("este rol no participa en la mensajería interna")
)

// Message is a note between the administration and the treasury.
type Message struct {
	ID            int64
	From          account.Party
	To            account.Party
	Subject       string
	Content       string
	Read          bool
	CreatedAt     time.Time
	AttachmentURL string
}

// Preview returns the first PreviewLength runes of the content.
// INVARIANT: Message fields are not mutated
func (m Message) Preview() string {
	return notice.Truncate(m.Content, PreviewLength)
}

// IsNewFor reports whether viewer should see the "NUEVO" badge.
func (m Message) IsNewFor(viewer account.Party) bool {
	return !m.Read && m.From != viewer
}

// Draft is a message being composed.
type Draft struct {
	From    account.Party
	To      account.Party
	Subject string
	Content string
}

// NewDraft addresses a draft from party to its counterpart.
func NewDraft(from account.Party, subject, content string) Draft {
	return Draft{
		From:    from,
		To:      from.Counterpart(),
		Subject: strings.TrimSpace(subject),
		Content: strings.TrimSpace(content),
	}
}

// Validate checks if the Draft has valid data.
// PRE: Draft struct is populated
// POST: Returns nil if valid, error otherwise
func (d *Draft) Validate() error {
	if !validParty(d.From) || !validParty(d.To) {
		return ErrInvalidParty
	}
	if d.From == d.To {
		return ErrSameParty
	}
	if d.Subject == "" {
		return ErrEmptySubject
	}
	if utf8.RuneCountInString(d.Subject) > MaxSubjectLength {
		return ErrSubjectTooLong
	}
	if d.Content == "" {
		return ErrEmptyContent
	}
	return nil
}

// CountNew returns how many messages carry the "NUEVO" badge for viewer.
func CountNew(list []Message, viewer account.Party) int {
	n := 0
	for _, m := range list {
		if m.IsNewFor(viewer) {
			n++
		}
	}
	return n
}

func validParty(p account.Party) bool {
	return p == account.PartyAdmin || p == account.PartyTreasurer
}
