package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/discoveruz/edge/internal/edge/store"
)

// HousekeepingService periodically removes expired sessions and
// single-use tokens so the tables do not accumulate dead rows.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService builds the service. A zero interval falls back
// to hourly.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the cleanup loop. One immediate pass runs at startup so
// a restart after downtime does not wait a full interval.
func (s *HousekeepingService) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop signals the loop and waits for the in-flight pass to finish.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *HousekeepingService) run(ctx context.Context) {
	defer close(s.doneCh)

	s.cleanup(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// cleanup runs each deletion independently so one failing table does not
// starve the others.
func (s *HousekeepingService) cleanup(ctx context.Context) {
	if err := s.Store.Sessions().DeleteExpiredSessions(ctx); err != nil {
		s.Logger.Error("failed to delete expired sessions", "error", err)
	}
	if err := s.Store.VerificationTokens().DeleteExpiredVerificationTokens(ctx); err != nil {
		s.Logger.Error("failed to delete expired verification tokens", "error", err)
	}
	if err := s.Store.PasswordResetTokens().DeleteExpiredPasswordResetTokens(ctx); err != nil {
		s.Logger.Error("failed to delete expired password reset tokens", "error", err)
	}
}
