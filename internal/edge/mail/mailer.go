// Package mail is the outbound email collaborator: a structured message
// in, success or an error out. Delivery failures are the caller's policy
// decision; non-critical notifications log and move on.
package mail

import (
	"context"
	"log/slog"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

// Mailer sends a message or fails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer is the dev-mode implementation: instead of delivering, it
// logs the message so verification links can be followed from the
// terminal. Used whenever no API key is configured.
type LogMailer struct {
	Log *slog.Logger
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.Log.Info("email not sent (no mail API key configured)",
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}
