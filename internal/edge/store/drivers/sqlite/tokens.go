package sqlite

import (
	"context"
	"time"

	"github.com/discoveruz/edge/internal/edge/domain"
)

type verificationRepo struct {
	q queryer
}

func (r *verificationRepo) CreateVerificationToken(ctx context.Context, t domain.VerificationToken) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO verification_tokens (token, user_id, expires_at, created_at)
		 VALUES (?, ?, ?, ?)`,
		t.Token, t.UserID, t.ExpiresAt.UTC(), time.Now().UTC(),
	)
	return mapConflict(err)
}

func (r *verificationRepo) GetVerificationToken(ctx context.Context, token string) (domain.VerificationToken, error) {
	var t domain.VerificationToken
	err := r.q.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at
		 FROM verification_tokens WHERE token = ?`, token,
	).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.VerificationToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *verificationRepo) DeleteVerificationToken(ctx context.Context, token string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM verification_tokens WHERE token = ?`, token)
	return err
}

func (r *verificationRepo) DeleteExpiredVerificationTokens(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE expires_at <= ?`, time.Now().UTC())
	return err
}

type resetRepo struct {
	q queryer
}

func (r *resetRepo) CreatePasswordResetToken(ctx context.Context, t domain.PasswordResetToken) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (token, user_id, expires_at, created_at)
		 VALUES (?, ?, ?, ?)`,
		t.Token, t.UserID, t.ExpiresAt.UTC(), time.Now().UTC(),
	)
	return mapConflict(err)
}

func (r *resetRepo) GetPasswordResetToken(ctx context.Context, token string) (domain.PasswordResetToken, error) {
	var t domain.PasswordResetToken
	err := r.q.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at
		 FROM password_reset_tokens WHERE token = ?`, token,
	).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.PasswordResetToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *resetRepo) DeletePasswordResetToken(ctx context.Context, token string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE token = ?`, token)
	return err
}

func (r *resetRepo) DeleteExpiredPasswordResetTokens(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
