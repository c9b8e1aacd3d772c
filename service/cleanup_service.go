package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type cleanupService struct {
	uowFactory       UnitOfWorkFactory
	pendingTTL       time.Duration
	unconfirmedGrace time.Duration
}

// NewCleanupService creates the periodic expiry sweep. pendingTTL bounds how
// long a confirmed bet may sit unresolved; unconfirmedGrace bounds how long
// an unposted slip may linger.
func NewCleanupService(uowFactory UnitOfWorkFactory, pendingTTL, unconfirmedGrace time.Duration) CleanupService {
	return &cleanupService{
		uowFactory:       uowFactory,
		pendingTTL:       pendingTTL,
		unconfirmedGrace: unconfirmedGrace,
	}
}

// SweepOnce deletes pending bets past their expiry window and unconfirmed
// bets older than the grace window. Confirmed non-pending bets are never
// touched.
func (s *cleanupService) SweepOnce(ctx context.Context) (int64, int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	expired, err := uow.BetRepository().DeleteExpiredPending(ctx, s.pendingTTL)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete expired pending bets: %w", err)
	}

	unconfirmed, err := uow.BetRepository().DeleteUnconfirmed(ctx, s.unconfirmedGrace)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete unconfirmed bets: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit cleanup sweep: %w", err)
	}

	if expired > 0 || unconfirmed > 0 {
		log.WithFields(log.Fields{
			"expired":     expired,
			"unconfirmed": unconfirmed,
		}).Info("Cleanup sweep removed stale bets")
	}

	return expired, unconfirmed, nil
}
