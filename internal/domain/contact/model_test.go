package contact_test

import (
	"strings"
	"testing"

	"llavedesol/internal/domain/contact"
)

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     contact.Message
		wantErr error
	}{
		{"valid", contact.Message{Name: "Ana", Email: "ana@correo.cl", Content: "Hola"}, nil},
		{"blank name", contact.Message{Name: " ", Email: "ana@correo.cl", Content: "Hola"}, contact.ErrMissingFields},
		{"blank content", contact.Message{Name: "Ana", Email: "ana@correo.cl"}, contact.ErrMissingFields},
		{"no domain dot", contact.Message{Name: "Ana", Email: "ana@correo", Content: "Hola"}, contact.ErrInvalidEmail},
		{"space in email", contact.Message{Name: "Ana", Email: "a na@correo.cl", Content: "Hola"}, contact.ErrInvalidEmail},
		{"long message", contact.Message{Name: "Ana", Email: "ana@correo.cl", Content: strings.Repeat("é", 501)}, contact.ErrMessageTooLong},
		{"exactly 500", contact.Message{Name: "Ana", Email: "ana@correo.cl", Content: strings.Repeat("é", 500)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.msg
			if err := m.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
