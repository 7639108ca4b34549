package application

import (
	"context"
	"time"

	"economy/domain/interfaces"
	"economy/domain/utils"

	log "github.com/sirupsen/logrus"
)

// RolloverWorker runs the monthly archive check once a day
type RolloverWorker struct {
	rollover    interfaces.RolloverService
	leaderboard LeaderboardRefresher
	location    *time.Location
	hour        int
	now         func() time.Time
}

// NewRolloverWorker creates a worker that checks at hour:00 in location
func NewRolloverWorker(rollover interfaces.RolloverService, leaderboard LeaderboardRefresher, location *time.Location, hour int) *RolloverWorker {
	if location == nil {
		location = time.UTC
	}
	return &RolloverWorker{
		rollover:    rollover,
		leaderboard: leaderboard,
		location:    location,
		hour:        hour,
		now:         time.Now,
	}
}

// Start checks immediately, then once per day
func (w *RolloverWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.WithFields(log.Fields{
			"hour":     w.hour,
			"location": w.location.String(),
		}).Info("Rollover worker started")

		if err := w.rollover.RecomputeArchivedTotals(ctx); err != nil {
			log.WithError(err).Error("Failed to load archived rating totals")
		}

		for {
			w.RunOnce(ctx)

			now := w.now().In(w.location)
			next := utils.NextDailyCheck(now, w.hour)
			log.WithField("next", next).Debug("Next rollover check scheduled")

			select {
			case <-ctx.Done():
				log.Info("Rollover worker shutting down (context cancelled)")
				return
			case <-stopChan:
				log.Info("Rollover worker shutting down (stop requested)")
				return
			case <-time.After(next.Sub(now)):
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// RunOnce performs a single rollover check; reports whether a month was archived
func (w *RolloverWorker) RunOnce(ctx context.Context) bool {
	rolled, err := w.rollover.CheckAndRollover(ctx, w.now().In(w.location))
	if err != nil {
		log.WithError(err).Error("Rollover check failed")
		return false
	}
	if rolled && w.leaderboard != nil {
		w.leaderboard.Trigger()
	}
	return rolled
}
