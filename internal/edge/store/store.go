package store

import (
	"context"
	"errors"

	"github.com/discoveruz/edge/internal/edge/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. It exposes sub-repositories to keep concerns tidy
// and testable.
type Store interface {
	Users() Users
	Sessions() Sessions
	VerificationTokens() VerificationTokens
	PasswordResetTokens() PasswordResetTokens

	ApplyMigrations() error

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store exposing the same repos plus Commit/Rollback.
type Tx interface {
	Users() Users
	Sessions() Sessions
	VerificationTokens() VerificationTokens
	PasswordResetTokens() PasswordResetTokens

	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is the unique lookup used by login and signup
	// duplicate checks. Email is matched lowercased.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// MarkEmailVerified flips email_verified and bumps updated_at.
	MarkEmailVerified(ctx context.Context, userID string) error

	// UpdatePasswordHash sets the password_hash (argon2id) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
}

type Sessions interface {
	// CreateSession stores a new server-side session record.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByToken looks up a session by the raw token value.
	// Expiry is NOT filtered here; the verifier decides what expired means.
	GetSessionByToken(ctx context.Context, token string) (domain.Session, error)

	// DeleteSessionByToken revokes a single session (logout).
	DeleteSessionByToken(ctx context.Context, token string) error

	// DeleteUserSessions revokes every session for a user (password reset).
	DeleteUserSessions(ctx context.Context, userID string) error

	// DeleteExpiredSessions is housekeeping.
	DeleteExpiredSessions(ctx context.Context) error
}

type VerificationTokens interface {
	CreateVerificationToken(ctx context.Context, t domain.VerificationToken) error
	GetVerificationToken(ctx context.Context, token string) (domain.VerificationToken, error)

	// DeleteVerificationToken removes a token after use or on detected
	// expiry (single-use contract).
	DeleteVerificationToken(ctx context.Context, token string) error
	DeleteExpiredVerificationTokens(ctx context.Context) error
}

type PasswordResetTokens interface {
	CreatePasswordResetToken(ctx context.Context, t domain.PasswordResetToken) error
	GetPasswordResetToken(ctx context.Context, token string) (domain.PasswordResetToken, error)
	DeletePasswordResetToken(ctx context.Context, token string) error
	DeleteExpiredPasswordResetTokens(ctx context.Context) error
}
