package bot

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// BoostSyncInterval is how often boost counts are reconciled with Discord
const BoostSyncInterval = time.Hour

// StartBoostSyncWorker reconciles boost counts now and then periodically
func (b *Bot) StartBoostSyncWorker(ctx context.Context, interval time.Duration) func() {
	stopChan := make(chan struct{})
	if interval <= 0 {
		interval = BoostSyncInterval
	}

	go func() {
		log.WithField("interval", interval).Info("Boost sync worker started")
		for {
			b.syncBoosts(ctx)

			select {
			case <-ctx.Done():
				log.Info("Boost sync worker shutting down (context cancelled)")
				return
			case <-stopChan:
				log.Info("Boost sync worker shutting down (stop requested)")
				return
			case <-time.After(interval):
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

func (b *Bot) syncBoosts(ctx context.Context) {
	if b.services.Membership == nil {
		return
	}
	live, err := b.LiveBoosts(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to list guild boosters")
		return
	}
	if _, err := b.services.Membership.SyncBoosts(ctx, live); err != nil {
		log.WithError(err).Error("Failed to sync boost counts")
	}
}
