package domain

import "time"

// Session is the server-side record backing a signed session token.
// Deleting the record revokes the session even while the token itself is
// still cryptographically valid.
type Session struct {
	ID        string
	UserID    string
	Token     string // the raw signed token; unique lookup key
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionData is the minimal identity projection handed to downstream
// consumers. Never carries the raw token or any secret material.
type SessionData struct {
	UserID string
	Email  string
	Role   string
}
