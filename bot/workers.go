package bot

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// StartCleanupWorker runs the expiry sweep on a fixed interval and returns a
// stop function. The sweep removes pending bets past their resolution window
// and unconfirmed slips past the grace period.
func (b *Bot) StartCleanupWorker(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	stop := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.runSweep()
			case <-stop:
				return
			}
		}
	}()

	log.WithField("interval", interval).Info("Cleanup worker started")
	return func() { close(stop) }
}

func (b *Bot) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, unconfirmed, err := b.cleanupService.SweepOnce(ctx)
	if err != nil {
		log.Errorf("Cleanup sweep failed: %v", err)
		return
	}

	if expired > 0 {
		b.metrics.SweepDeleted.WithLabelValues("expired").Add(float64(expired))
	}
	if unconfirmed > 0 {
		b.metrics.SweepDeleted.WithLabelValues("unconfirmed").Add(float64(unconfirmed))
	}
	if expired > 0 || unconfirmed > 0 {
		log.WithFields(log.Fields{
			"expired":     expired,
			"unconfirmed": unconfirmed,
		}).Info("Cleanup sweep removed stale bets")
	}
}
