package orchestrators

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	emailAdapter "llavedesol/internal/adapters/email"
	"llavedesol/internal/domain/admission"
	"llavedesol/internal/domain/contact"
)

// ContactSubmitter defines the backend interface needed by SubmitContact.
type ContactSubmitter interface {
	SubmitContact(ctx context.Context, m contact.Message) error
}

// ApplicationSubmitter defines the backend interface needed by SubmitApplication.
type ApplicationSubmitter interface {
	SubmitApplication(ctx context.Context, a admission.Application) error
}

var (
	contactHTML = template.Must(template.New("contact").Parse(
		`<p><strong>{{.Name}}</strong> ({{.Email}}) escribió desde el formulario de contacto:</p><blockquote>{{.Content}}</blockquote>`))
	admissionHTML = template.Must(template.New("admission").Parse(
		`<p>Hola {{.FullName}},</p><p>Recibimos tu solicitud de ingreso a Llave de Sol. Te contactaremos pronto al correo {{.Email}} o al teléfono {{.Phone}}.</p><p>Gracias por tu interés.</p>`))
)

// --- Contact ---

// ContactDeps holds dependencies for SubmitContact.
type ContactDeps struct {
	Backend ContactSubmitter
	Sender  emailAdapter.Sender
	Inbox   string // organisation address notified of each submission; empty disables the email
}

// ExecuteSubmitContact validates the form, stores it in the backend and notifies the inbox.
// PRE: none
// POST: the backend receives only valid submissions; a failed notification is logged, not returned
func ExecuteSubmitContact(ctx context.Context, input contact.Message, deps ContactDeps) error {
	if err := input.Validate(); err != nil {
		return err
	}
	if err := deps.Backend.SubmitContact(ctx, input); err != nil {
		return fmt.Errorf("submit contact: %w", err)
	}
	slog.Info("public_form", "event", "contact_submitted", "email", input.Email)

	if deps.Sender == nil || deps.Inbox == "" {
		return nil
	}
	var html bytes.Buffer
	if err := contactHTML.Execute(&html, input); err != nil {
		return fmt.Errorf("render contact email: %w", err)
	}
	_, err := deps.Sender.Send(ctx, emailAdapter.SendRequest{
		To:       []string{deps.Inbox},
		Subject:  "Nuevo mensaje de contacto: " + input.Name,
		HTML:     html.String(),
		Text:     fmt.Sprintf("%s <%s> escribió:\n\n%s", input.Name, input.Email, input.Content),
		ReplyTo:  input.Email,
		Category: "contacto",
	})
	if err != nil {
		slog.Warn("email_failed", "kind", "contact", "error", err)
	}
	return nil
}

// --- Admission ---

// AdmissionDeps holds dependencies for SubmitApplication.
type AdmissionDeps struct {
	Backend ApplicationSubmitter
	Sender  emailAdapter.Sender
	Now     func() time.Time
}

// ExecuteSubmitApplication validates a membership application, stores it and confirms receipt to the applicant.
// PRE: none
// POST: the birth date is checked against the local date; a failed confirmation is logged, not returned
func ExecuteSubmitApplication(ctx context.Context, input admission.Application, deps AdmissionDeps) error {
	if err := input.Validate(deps.Now()); err != nil {
		return err
	}
	if err := deps.Backend.SubmitApplication(ctx, input); err != nil {
		return fmt.Errorf("submit application: %w", err)
	}
	slog.Info("public_form", "event", "application_submitted", "email", input.Email)

	if deps.Sender == nil {
		return nil
	}
	var html bytes.Buffer
	if err := admissionHTML.Execute(&html, input); err != nil {
		return fmt.Errorf("render admission email: %w", err)
	}
	_, err := deps.Sender.Send(ctx, emailAdapter.SendRequest{
		To:       []string{input.Email},
		Subject:  "Recibimos tu solicitud de ingreso",
		HTML:     html.String(),
		Text:     fmt.Sprintf("Hola %s,\n\nRecibimos tu solicitud de ingreso a Llave de Sol. Te contactaremos pronto.", input.FullName),
		Category: "admision",
	})
	if err != nil {
		slog.Warn("email_failed", "kind", "admission", "error", err)
	}
	return nil
}
