package contact

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength caps the message body.
const MaxMessageLength = 500

// MaxNameLength matches the backend column.
const MaxNameLength = 100

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Domain errors
var (
	ErrMissingFields  = errors.New("Todos los campos son obligatorios.")
	ErrInvalidEmail   = errors.New("Por favor ingresa un correo electrónico válido.")
	ErrNameTooLong    = errors.New("El nombre no puede superar los 100 caracteres.")
	ErrMessageTooLong = errors.New("El mensaje no puede superar los 500 caracteres.")
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Message is a public contact-form submission.
type Message struct {
	Name    string
	Email   string
	Content string
}

// Validate trims and checks the submission.
// PRE: none
// POST: Returns nil if valid, error otherwise; fields are trimmed
func (m *Message) Validate() error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Content = strings.TrimSpace(m.Content)
	if m.Name == "" || m.Email == "" || m.Content == "" {
		return ErrMissingFields
	}
	if !ValidEmail(m.Email) {
		return ErrInvalidEmail
	}
	if utf8.RuneCountInString(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if utf8.RuneCountInString(m.Content) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}
