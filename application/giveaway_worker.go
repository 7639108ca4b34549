package application

import (
	"context"
	"time"

	"economy/domain/entities"
	"economy/domain/interfaces"
	"economy/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// idleRecheck bounds how long the worker sleeps when nothing is scheduled
const idleRecheck = time.Hour

// GiveawayWorker announces giveaways on schedule and finalizes expired rounds.
// Work missed during downtime is processed on startup.
type GiveawayWorker struct {
	giveaways interfaces.GiveawayService
	poster    GiveawayPoster
	pool      int64
	now       func() time.Time
}

// NewGiveawayWorker creates a new giveaway worker. pool is only used for the
// announcement text and must match the service's pool.
func NewGiveawayWorker(giveaways interfaces.GiveawayService, poster GiveawayPoster, pool int64) *GiveawayWorker {
	if pool <= 0 {
		pool = entities.GiveawayPool
	}
	return &GiveawayWorker{
		giveaways: giveaways,
		poster:    poster,
		pool:      pool,
		now:       time.Now,
	}
}

// Start begins the worker loop and returns a stop function
func (w *GiveawayWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Info("Giveaway worker started")

		for {
			wake := w.RunOnce(ctx)
			wait := time.Until(wake)
			if wait < 0 {
				wait = 0
			}
			if wait > idleRecheck {
				wait = idleRecheck
			}

			select {
			case <-ctx.Done():
				log.Info("Giveaway worker shutting down (context cancelled)")
				return
			case <-stopChan:
				log.Info("Giveaway worker shutting down (stop requested)")
				return
			case <-time.After(wait):
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// RunOnce finalizes expired rounds, fires a due announcement and returns the
// next time there is work to do
func (w *GiveawayWorker) RunOnce(ctx context.Context) time.Time {
	now := w.now()
	wake := now.Add(idleRecheck)

	rounds, err := w.giveaways.PendingRounds(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load pending giveaway rounds")
		return wake
	}
	for _, round := range rounds {
		if now.Before(round.ExpiresAt) {
			if round.ExpiresAt.Before(wake) {
				wake = round.ExpiresAt
			}
			continue
		}
		if err := w.finalize(ctx, round); err != nil {
			log.WithError(err).WithField("messageID", round.MessageID).Error("Failed to finalize giveaway")
		}
	}

	schedule, err := w.giveaways.NextSchedule(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load giveaway schedule")
		return wake
	}
	if schedule == nil {
		at, err := w.giveaways.ScheduleNext(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to schedule giveaway")
			return wake
		}
		schedule = &at
	}

	if now.Before(*schedule) {
		if schedule.Before(wake) {
			wake = *schedule
		}
		return wake
	}

	round, err := w.announce(ctx, *schedule)
	if err != nil {
		log.WithError(err).Error("Failed to announce giveaway")
		return wake
	}
	if round.ExpiresAt.Before(wake) {
		wake = round.ExpiresAt
	}
	if next, err := w.giveaways.NextSchedule(ctx); err == nil && next != nil && next.Before(wake) {
		wake = *next
	}
	return wake
}

// HandleJoin registers a join button press
func (w *GiveawayWorker) HandleJoin(ctx context.Context, messageID, userID int64, displayName string) (bool, error) {
	return w.giveaways.Join(ctx, messageID, userID, displayName)
}

func (w *GiveawayWorker) announce(ctx context.Context, scheduledAt time.Time) (*entities.GiveawayRound, error) {
	channelID, messageID, err := w.poster.AnnounceGiveaway(ctx, w.pool, entities.GiveawayWindow)
	if err != nil {
		return nil, err
	}

	round, err := w.giveaways.Announce(ctx, messageID, channelID, scheduledAt)
	if err != nil {
		// without a round the button would accept nobody
		if delErr := w.poster.DeleteMessage(ctx, channelID, messageID); delErr != nil {
			log.WithError(delErr).Warn("Failed to remove orphaned giveaway announcement")
		}
		return nil, err
	}
	return round, nil
}

func (w *GiveawayWorker) finalize(ctx context.Context, round *entities.GiveawayRound) error {
	result, err := w.giveaways.Finalize(ctx, round.MessageID)
	if err != nil {
		return err
	}
	if result.AlreadyFinalized {
		return nil
	}

	if err := w.poster.DeleteMessage(ctx, round.ChannelID, round.MessageID); err != nil {
		log.WithError(err).WithField("messageID", round.MessageID).Warn("Failed to delete giveaway announcement, removing join button")
		if err := w.poster.StripJoinButton(ctx, round.ChannelID, round.MessageID); err != nil {
			log.WithError(err).Warn("Failed to remove giveaway join button")
		}
	}

	var paid int64
	for _, share := range result.Shares {
		paid += share.Amount
	}
	observability.GetMetrics().RecordGiveawayPayout(paid)

	if len(result.Shares) == 0 {
		return nil
	}
	return w.poster.PostGiveawayResult(ctx, round.ChannelID, result)
}
