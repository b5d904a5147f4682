package mail

import (
	"fmt"

	"github.com/discoveruz/edge/internal/edge/sanitize"
)

// Templates here embed user-supplied values only after EscapeHTML; the
// sanitizer has already run, this is belt-and-suspenders for the HTML
// context.

// VerificationEmail builds the email-verification message.
func VerificationEmail(to, name, verifyURL string) Message {
	safeName := sanitize.EscapeHTML(name)

	return Message{
		To:      to,
		Subject: "Verify your email - DiscoverUz",
		Text: fmt.Sprintf(
			"Hi %s,\n\nPlease verify your email address by opening this link:\n\n%s\n\n"+
				"The link expires in 24 hours. If you didn't create an account, ignore this email.\n",
			name, verifyURL,
		),
		HTML: fmt.Sprintf(
			`<div style="font-family:sans-serif;max-width:600px;margin:0 auto">
<h1 style="color:#1E3A8A">Welcome to DiscoverUz!</h1>
<p>Hi %s,</p>
<p>Thank you for signing up! Please verify your email address to activate your account.</p>
<p><a href="%s" style="display:inline-block;background:#f2cc0d;color:#1E3A8A;padding:16px 32px;text-decoration:none;border-radius:10px;font-weight:700">Verify Email Address</a></p>
<p style="color:#6B7280;font-size:14px">This verification link expires in 24 hours. If you didn't create an account with DiscoverUz, please ignore this email.</p>
</div>`,
			safeName, verifyURL,
		),
	}
}

// PasswordResetEmail builds the password-reset message.
func PasswordResetEmail(to, name, resetURL string) Message {
	safeName := sanitize.EscapeHTML(name)

	return Message{
		To:      to,
		Subject: "Reset your password - DiscoverUz",
		Text: fmt.Sprintf(
			"Hi %s,\n\nOpen this link to reset your password:\n\n%s\n\n"+
				"The link expires in 1 hour. If you didn't request a reset, ignore this email.\n",
			name, resetURL,
		),
		HTML: fmt.Sprintf(
			`<div style="font-family:sans-serif;max-width:600px;margin:0 auto">
<h1 style="color:#1E3A8A">Password Reset</h1>
<p>Hi %s,</p>
<p>We received a request to reset your password.</p>
<p><a href="%s" style="display:inline-block;background:#f2cc0d;color:#1E3A8A;padding:16px 32px;text-decoration:none;border-radius:10px;font-weight:700">Reset Password</a></p>
<p style="color:#6B7280;font-size:14px">This link expires in 1 hour. If you didn't request a password reset, please ignore this email.</p>
</div>`,
			safeName, resetURL,
		),
	}
}

// NewsletterSignup notifies staff about a new subscriber.
func NewsletterSignup(inbox, email string) Message {
	return Message{
		To:      inbox,
		Subject: "[Newsletter] New subscriber",
		Text:    fmt.Sprintf("New newsletter subscriber: %s\n", email),
		HTML: fmt.Sprintf(
			`<p>New newsletter subscriber: <strong>%s</strong></p>`,
			sanitize.EscapeHTML(email),
		),
	}
}

// ContactNotification builds the internal notification for a contact form
// submission. ReplyTo is the submitter so staff can answer directly.
func ContactNotification(inbox, name, email, subject, message string) Message {
	return Message{
		To:      inbox,
		ReplyTo: email,
		Subject: fmt.Sprintf("[Contact] %s: %s", subject, name),
		Text: fmt.Sprintf(
			"New contact form submission\n\nName: %s\nEmail: %s\nSubject: %s\n\n%s\n",
			name, email, subject, message,
		),
		HTML: fmt.Sprintf(
			`<div style="font-family:sans-serif;max-width:600px;margin:0 auto">
<h2 style="color:#1E3A8A">New contact form submission</h2>
<p><strong>Name:</strong> %s<br/><strong>Email:</strong> %s<br/><strong>Subject:</strong> %s</p>
<p style="white-space:pre-wrap">%s</p>
</div>`,
			sanitize.EscapeHTML(name), sanitize.EscapeHTML(email),
			sanitize.EscapeHTML(subject), sanitize.EscapeHTML(message),
		),
	}
}
