package service

import (
	"context"
	"errors"
	"time"

	"github.com/discoveruz/edge/internal/edge/domain"
	"github.com/discoveruz/edge/internal/edge/store"
	"github.com/discoveruz/edge/pkg/cryptox"
	"github.com/discoveruz/edge/pkg/idx"
	"github.com/discoveruz/edge/pkg/jwtx"
)

// Session lifetimes. Remembered logins get the long duration.
const (
	SessionTTL         = 24 * time.Hour
	SessionTTLRemember = 30 * 24 * time.Hour
)

var (
	// ErrUnauthorized is the explicit failure for privileged operations
	// that must not silently continue without a session.
	ErrUnauthorized = errors.New("service: unauthorized")

	// ErrInvalidCredentials covers unknown email AND wrong password, so
	// responses never reveal which one it was.
	ErrInvalidCredentials = errors.New("service: invalid email or password")

	// ErrEmailNotVerified blocks login until the verification link is used.
	ErrEmailNotVerified = errors.New("service: email not verified")
)

// SessionService verifies and manages signed sessions. Validity always
// requires both the cryptographic signature AND a live server-side
// record: deleting the record revokes an otherwise valid token.
type SessionService struct {
	Store store.Store
	Codec *jwtx.Codec
}

// GetSession resolves a raw session token to its identity projection.
// Read-only contract: it never mutates cookies or records, and it never
// returns an error to the caller — every failure is nil. Cleanup of
// stale cookies belongs to the edge gate.
func (s *SessionService) GetSession(ctx context.Context, rawToken string) *domain.SessionData {
	if rawToken == "" {
		return nil
	}

	claims, err := s.Codec.Verify(rawToken)
	if err != nil {
		return nil
	}

	record, err := s.Store.Sessions().GetSessionByToken(ctx, rawToken)
	if err != nil || time.Now().After(record.ExpiresAt) {
		return nil
	}

	return &domain.SessionData{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}
}

// RequireSession is the privileged-path wrapper: a missing or invalid
// session becomes an explicit ErrUnauthorized instead of a nil that a
// write path might ignore.
func (s *SessionService) RequireSession(ctx context.Context, rawToken string) (*domain.SessionData, error) {
	data := s.GetSession(ctx, rawToken)
	if data == nil {
		return nil, ErrUnauthorized
	}
	return data, nil
}

// Login authenticates credentials and mints a session. The returned
// session carries the signed token the handler sets as a cookie.
func (s *SessionService) Login(ctx context.Context, email, password string, remember bool) (domain.Session, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrInvalidCredentials
		}
		return domain.Session{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.Session{}, ErrInvalidCredentials
		}
		return domain.Session{}, err
	}

	if !user.EmailVerified {
		return domain.Session{}, ErrEmailNotVerified
	}

	ttl := SessionTTL
	if remember {
		ttl = SessionTTLRemember
	}

	now := time.Now().UTC()
	sessionID := idx.New().String()
	token, err := s.Codec.Sign(jwtx.NewSessionClaims(sessionID, user.ID, user.Email, user.Role, ttl, now))
	if err != nil {
		return domain.Session{}, err
	}

	session := domain.Session{
		ID:        sessionID,
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// Logout revokes the server-side record. Idempotent: an unknown token is
// not an error, the session is gone either way.
func (s *SessionService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	return s.Store.Sessions().DeleteSessionByToken(ctx, rawToken)
}

// RevokeAll drops every session for a user (used after password reset).
func (s *SessionService) RevokeAll(ctx context.Context, userID string) error {
	return s.Store.Sessions().DeleteUserSessions(ctx, userID)
}
