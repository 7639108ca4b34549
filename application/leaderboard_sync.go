package application

import (
	"context"
	"fmt"
	"time"

	"economy/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// LeaderboardSync rebuilds the cached leaderboard from the live ranking.
// Triggers arriving while a rebuild is pending are coalesced.
type LeaderboardSync struct {
	ratings     interfaces.RatingService
	leaderboard interfaces.Leaderboard
	minInterval time.Duration
	trigger     chan struct{}
}

// NewLeaderboardSync creates a leaderboard sync that rebuilds at most once per minInterval
func NewLeaderboardSync(ratings interfaces.RatingService, leaderboard interfaces.Leaderboard, minInterval time.Duration) *LeaderboardSync {
	return &LeaderboardSync{
		ratings:     ratings,
		leaderboard: leaderboard,
		minInterval: minInterval,
		trigger:     make(chan struct{}, 1),
	}
}

// Trigger requests a rebuild without blocking
func (s *LeaderboardSync) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Rebuild replaces the cached leaderboard with the current ranking
func (s *LeaderboardSync) Rebuild(ctx context.Context) error {
	ranking, err := s.ratings.Ranking(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute ranking: %w", err)
	}
	if err := s.leaderboard.Replace(ctx, ranking); err != nil {
		return err
	}
	log.WithField("entries", len(ranking)).Debug("Leaderboard rebuilt")
	return nil
}

// Start rebuilds once, then on every trigger until ctx is done or stop is called
func (s *LeaderboardSync) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		if err := s.Rebuild(ctx); err != nil {
			log.WithError(err).Warn("Initial leaderboard rebuild failed")
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-stopChan:
				return
			case <-s.trigger:
			}

			if err := s.Rebuild(ctx); err != nil {
				log.WithError(err).Warn("Leaderboard rebuild failed")
			}

			select {
			case <-ctx.Done():
				return
			case <-stopChan:
				return
			case <-time.After(s.minInterval):
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}
