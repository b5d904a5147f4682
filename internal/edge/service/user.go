package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/discoveruz/edge/internal/edge/domain"
	"github.com/discoveruz/edge/internal/edge/mail"
	"github.com/discoveruz/edge/internal/edge/store"
	"github.com/discoveruz/edge/pkg/cryptox"
	"github.com/discoveruz/edge/pkg/idx"
)

// Single-use token lifetimes.
const (
	VerificationTokenTTL  = 24 * time.Hour
	PasswordResetTokenTTL = 1 * time.Hour
)

var (
	ErrEmailTaken   = errors.New("service: email already registered")
	ErrInvalidToken = errors.New("service: invalid or expired token")
)

// UserService owns account lifecycle: signup, email verification and
// password reset. Both token flows are single-use; the token row is
// deleted the moment it is consumed or found expired.
type UserService struct {
	Store    store.Store
	Sessions *SessionService
	Mailer   mail.Mailer
	BaseURL  string
	Log      *slog.Logger
}

// Signup creates an unverified account and emails the verification link.
// A mail failure does not roll back the account: the user can request
// another link, while a duplicate email surfaces as ErrEmailTaken.
func (s *UserService) Signup(ctx context.Context, name, email, password string) (domain.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	if err := s.sendVerification(ctx, user); err != nil {
		s.Log.Error("failed to send verification email", "error", err, "user_id", user.ID)
	}
	return user, nil
}

func (s *UserService) sendVerification(ctx context.Context, user domain.User) error {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}

	record := domain.VerificationToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(VerificationTokenTTL),
	}
	if err := s.Store.VerificationTokens().CreateVerificationToken(ctx, record); err != nil {
		return err
	}

	link := s.BaseURL + "/verify-email?token=" + token
	return s.Mailer.Send(ctx, mail.VerificationEmail(user.Email, user.Name, link))
}

// VerifyEmail consumes a verification token. The row is removed whether
// the token succeeded or turned out expired, so a link never works twice.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	record, err := s.Store.VerificationTokens().GetVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	if err := s.Store.VerificationTokens().DeleteVerificationToken(ctx, token); err != nil {
		return err
	}

	if time.Now().After(record.ExpiresAt) {
		return ErrInvalidToken
	}
	return s.Store.Users().MarkEmailVerified(ctx, record.UserID)
}

// RequestPasswordReset issues a reset token for a known account. It
// reports success for unknown emails too; the caller must not be able to
// probe which addresses exist.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}

	record := domain.PasswordResetToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(PasswordResetTokenTTL),
	}
	if err := s.Store.PasswordResetTokens().CreatePasswordResetToken(ctx, record); err != nil {
		return err
	}

	link := s.BaseURL + "/reset-password?token=" + token
	if err := s.Mailer.Send(ctx, mail.PasswordResetEmail(user.Email, user.Name, link)); err != nil {
		s.Log.Error("failed to send password reset email", "error", err, "user_id", user.ID)
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token, rewrites the password
// hash and revokes every live session for the account.
func (s *UserService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	record, err := s.Store.PasswordResetTokens().GetPasswordResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	if err := s.Store.PasswordResetTokens().DeletePasswordResetToken(ctx, token); err != nil {
		return err
	}

	if time.Now().After(record.ExpiresAt) {
		return ErrInvalidToken
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, record.UserID, hash); err != nil {
		return err
	}
	return s.Sessions.RevokeAll(ctx, record.UserID)
}
