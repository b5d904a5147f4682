package sqlite

import (
	"context"
	"time"

	"github.com/discoveruz/edge/internal/edge/domain"
)

type sessionsRepo struct {
	q queryer
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, token, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Token, s.ExpiresAt.UTC(), time.Now().UTC(),
	)
	return mapConflict(err)
}

func (r *sessionsRepo) GetSessionByToken(ctx context.Context, token string) (domain.Session, error) {
	var s domain.Session
	err := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, token, expires_at, created_at
		 FROM sessions WHERE token = ?`, token,
	).Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) DeleteSessionByToken(ctx context.Context, token string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

func (r *sessionsRepo) DeleteUserSessions(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
