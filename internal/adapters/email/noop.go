package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender stands in when no Resend key is configured: sends are logged and
// reported as delivered so the public forms keep working in development.
type NoopSender struct {
	now func() time.Time
}

// NewNoopSender returns a sender that only logs.
func NewNoopSender() *NoopSender {
	return &NoopSender{now: time.Now}
}

// Send logs the recipients and category of req.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	if len(req.To) == 0 {
		return SendResult{}, ErrNoRecipients
	}
	now := s.now()
	slog.Info("email_sent", "provider", "noop", "to", req.To, "category", req.Category, "subject", req.Subject)
	return SendResult{MessageID: fmt.Sprintf("noop-%d", now.UnixNano()), SentAt: now}, nil
}
