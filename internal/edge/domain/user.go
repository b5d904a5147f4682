package domain

import "time"

// Role values stored on users. Plain strings in the database; typed here
// so handlers can't invent new ones.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            string
	Name          string
	Email         string // stored lowercased
	PasswordHash  string // argon2id encoded
	Role          string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
