package service

import (
	"context"
	"log/slog"

	"github.com/discoveruz/edge/internal/edge/domain"
	"github.com/discoveruz/edge/internal/edge/mail"
	"github.com/discoveruz/edge/internal/edge/sanitize"
)

// ContactService forwards sanitized contact submissions to the site
// inbox. It never persists the message; delivery failure is logged and
// swallowed so the visitor still gets a success response.
type ContactService struct {
	Mailer  mail.Mailer
	InboxTo string
	Log     *slog.Logger
}

// Outbound byte caps. Validation enforces tighter character bounds at
// the HTTP layer; these hold even when a caller skips validation.
const (
	maxNameBytes    = 400
	maxEmailBytes   = 255
	maxSubjectBytes = 100
	maxMessageBytes = 8000
)

// Submit sanitizes every field once more before it leaves the process
// and hands the message to the mailer. The input is expected to be
// validated already; sanitization here is the last line, not the first.
func (s *ContactService) Submit(ctx context.Context, form domain.ContactMessage) {
	msg := domain.ContactMessage{
		Name:    sanitize.EnforceMaxBytes(sanitize.Sanitize(form.Name), maxNameBytes),
		Email:   sanitize.EnforceMaxBytes(sanitize.SanitizeEmail(form.Email), maxEmailBytes),
		Subject: sanitize.EnforceMaxBytes(sanitize.Sanitize(form.Subject), maxSubjectBytes),
		Message: sanitize.EnforceMaxBytes(sanitize.Sanitize(form.Message), maxMessageBytes),
	}

	if err := s.Mailer.Send(ctx, mail.ContactNotification(s.InboxTo, msg.Name, msg.Email, msg.Subject, msg.Message)); err != nil {
		s.Log.Error("failed to deliver contact notification", "error", err, "subject", msg.Subject)
	}
}

// Subscribe forwards a newsletter signup to the inbox. There is no list
// provider integration yet; staff add subscribers by hand.
func (s *ContactService) Subscribe(ctx context.Context, email string) {
	addr := sanitize.EnforceMaxBytes(sanitize.SanitizeEmail(email), maxEmailBytes)

	if err := s.Mailer.Send(ctx, mail.NewsletterSignup(s.InboxTo, addr)); err != nil {
		s.Log.Error("failed to deliver newsletter signup", "error", err)
	}
}
