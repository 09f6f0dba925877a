package email

import (
	"context"
	"time"
)

// SendRequest is one outbound notification.
type SendRequest struct {
	To      []string
	From    string // empty uses the sender's default
	Subject string
	HTML    string
	Text    string
	ReplyTo string // empty uses the sender's default
	// Category groups sends in the provider dashboard: "contacto", "admision".
	Category string
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
