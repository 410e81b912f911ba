package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/fairworkhq/payday/internal/auth/store"
)

// HousekeepingService periodically deletes expired rows so mfa_tickets,
// email_codes and totp_enrollments don't grow without bound. Expiry is always
// enforced at read time too; this just keeps the tables small.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the worker. An interval of 0 or less
// defaults to 15 minutes.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep once on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup deletes each category independently; one failure doesn't stop the
// others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()

	if err := s.Store.MFATickets().DeleteExpiredTickets(ctx); err != nil {
		s.Logger.Error("failed to delete expired login tickets", "error", err)
	}

	if err := s.Store.EmailCodes().DeleteExpiredEmailCodes(ctx); err != nil {
		s.Logger.Error("failed to delete expired email codes", "error", err)
	}

	if err := s.Store.TOTPEnrollments().DeleteExpiredEnrollments(ctx); err != nil {
		s.Logger.Error("failed to delete expired enrollments", "error", err)
	}

	s.Logger.Debug("housekeeping sweep completed")
}
