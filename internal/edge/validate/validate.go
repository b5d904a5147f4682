// Package validate holds the form schemas guarding the contact and auth
// endpoints. Validation is pure and synchronous; each schema is an
// explicit struct with a Validate method returning field-keyed messages.
package validate

import (
	"regexp"
	"strings"
)

// FieldErrors maps a field name to the first violated constraint's
// human-readable message. Only the first message per field is retained,
// so error payloads are deterministic.
type FieldErrors map[string]string

// set records a message for a field unless one is already present.
func (fe FieldErrors) set(field, message string) {
	if _, ok := fe[field]; !ok {
		fe[field] = message
	}
}

// Ok reports whether no field failed.
func (fe FieldErrors) Ok() bool { return len(fe) == 0 }

var (
	// Same signature set the sanitizer checks; duplicated as a schema
	// refinement because validation is the authoritative gate.
	xssPattern     = regexp.MustCompile(`(?i)<script|javascript:|onerror=|onload=|<iframe|eval\(|expression\(`)
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

	// Pragmatic email shape check; the mailbox is the real validator.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	digitsOnly  = regexp.MustCompile(`^\d+$`)
	dateCharset = regexp.MustCompile(`^[\d\s\-\/,.]*$`)
)

func noXSS(v string) bool      { return !xssPattern.MatchString(v) }
func noHTMLTags(v string) bool { return !htmlTagPattern.MatchString(v) }

// checkEmail validates a normalized (trimmed, lowercased) email address
// and records the first violation against field.
func checkEmail(fe FieldErrors, field, email string) {
	switch {
	case !emailPattern.MatchString(email):
		fe.set(field, "Please enter a valid email address")
	case len(email) > 255:
		fe.set(field, "Email must be less than 255 characters")
	case !noXSS(email):
		fe.set(field, "Invalid characters detected")
	}
}

// passwordSymbols is the fixed punctuation set accepted as the "symbol"
// character class.
const passwordSymbols = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?`~"

// checkPassword enforces the password policy: 8..128 chars with at least
// one uppercase, one lowercase, one digit and one symbol.
func checkPassword(fe FieldErrors, field, password string) {
	switch {
	case len(password) < 8:
		fe.set(field, "Password must be at least 8 characters")
	case len(password) > 128:
		fe.set(field, "Password must be less than 128 characters")
	case !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }):
		fe.set(field, "Password must contain an uppercase letter")
	case !strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }):
		fe.set(field, "Password must contain a lowercase letter")
	case !strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }):
		fe.set(field, "Password must contain a digit")
	case !strings.ContainsAny(password, passwordSymbols):
		fe.set(field, "Password must contain a symbol")
	}
}
