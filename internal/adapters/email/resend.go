package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// ErrNoRecipients is returned for a request without any address.
var ErrNoRecipients = errors.New("email has no recipients")

// ResendSender sends the portal's notifications through the Resend API.
type ResendSender struct {
	client  *resend.Client
	from    string
	replyTo string
}

// NewResendSender creates a sender with apiKey, a default from address and a
// default reply-to (the organisation inbox, so answers to confirmations reach a person).
// PRE: apiKey is a valid Resend API key
func NewResendSender(apiKey, from, replyTo string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from, replyTo: replyTo}
}

// Send queues one email.
// PRE: len(req.To) > 0
// POST: returns the Resend message id
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if len(req.To) == 0 {
		return SendResult{}, ErrNoRecipients
	}
	params := &resend.SendEmailRequest{
		From:    firstNonEmpty(req.From, s.from),
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		Text:    req.Text,
		ReplyTo: firstNonEmpty(req.ReplyTo, s.replyTo),
	}
	if req.Category != "" {
		params.Tags = []resend.Tag{{Name: "categoria", Value: req.Category}}
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		slog.Error("email_send_failed", "provider", "resend", "category", req.Category, "error", err)
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}
	slog.Info("email_sent", "provider", "resend", "message_id", sent.Id, "category", req.Category)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
