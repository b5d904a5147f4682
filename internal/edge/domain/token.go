package domain

import "time"

// VerificationToken is a single-use, time-boxed email verification token.
// Deleted immediately on successful use or on detected expiry.
type VerificationToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// PasswordResetToken mirrors VerificationToken with a shorter lifetime.
type PasswordResetToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
