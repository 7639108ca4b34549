package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"economy/domain/entities"
	"economy/domain/events"
	"economy/domain/interfaces"
	"economy/domain/utils"

	log "github.com/sirupsen/logrus"
)

type giveawayService struct {
	uowFactory interfaces.UnitOfWorkFactory
	pool       int64
	now        func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGiveawayService creates a new giveaway service. pool <= 0 uses GiveawayPool.
func NewGiveawayService(uowFactory interfaces.UnitOfWorkFactory, pool int64) interfaces.GiveawayService {
	if pool <= 0 {
		pool = entities.GiveawayPool
	}
	return &giveawayService{
		uowFactory: uowFactory,
		pool:       pool,
		now:        time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ScheduleNext picks a random delay and replaces the pending schedule
func (s *giveawayService) ScheduleNext(ctx context.Context) (time.Time, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return time.Time{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	at, err := s.scheduleNext(ctx, uow)
	if err != nil {
		return time.Time{}, err
	}

	if err := uow.Commit(); err != nil {
		return time.Time{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return at, nil
}

func (s *giveawayService) NextSchedule(ctx context.Context) (*time.Time, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	at, err := uow.GiveawayRepository().GetSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway schedule: %w", err)
	}
	return at, nil
}

// Announce opens a round for the posted announcement and schedules the next one
func (s *giveawayService) Announce(ctx context.Context, messageID, channelID int64, scheduledAt time.Time) (*entities.GiveawayRound, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	now := s.now()
	round := &entities.GiveawayRound{
		MessageID:   messageID,
		ChannelID:   channelID,
		State:       entities.GiveawayStateOpen,
		Pool:        s.pool,
		ScheduledAt: scheduledAt,
		AnnouncedAt: now,
		ExpiresAt:   now.Add(entities.GiveawayWindow),
	}
	if err := uow.GiveawayRepository().CreateRound(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to create giveaway round: %w", err)
	}

	next, err := s.scheduleNext(ctx, uow)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"roundID":   round.ID,
		"messageID": messageID,
		"expiresAt": round.ExpiresAt,
		"next":      next,
	}).Info("Giveaway announced")
	return round, nil
}

// Join adds a participant while the window is open. Returns false for a repeat join.
func (s *giveawayService) Join(ctx context.Context, messageID, userID int64, displayName string) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.GiveawayRepository().GetRoundByMessageIDForUpdate(ctx, messageID)
	if err != nil {
		return false, fmt.Errorf("failed to get giveaway round: %w", err)
	}
	if round == nil {
		return false, &entities.NotFoundError{Resource: "giveaway", ID: messageID}
	}
	now := s.now()
	if !round.AcceptsJoinsAt(now) {
		return false, entities.ErrRoundClosed
	}

	added, err := uow.GiveawayRepository().AddParticipant(ctx, &entities.GiveawayParticipant{
		RoundID:     round.ID,
		UserID:      userID,
		DisplayName: displayName,
		JoinedAt:    now,
	})
	if err != nil {
		return false, fmt.Errorf("failed to add participant: %w", err)
	}
	if !added {
		return false, nil
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// Finalize splits the pool among participants. Calling it again for the same
// announcement is a no-op.
func (s *giveawayService) Finalize(ctx context.Context, messageID int64) (*entities.GiveawayResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.GiveawayRepository()
	round, err := repo.GetRoundByMessageIDForUpdate(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway round: %w", err)
	}
	if round == nil {
		return nil, &entities.NotFoundError{Resource: "giveaway", ID: messageID}
	}
	if round.IsFinalized() {
		return &entities.GiveawayResult{Round: round, AlreadyFinalized: true}, nil
	}

	participants, err := repo.GetParticipants(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}

	result := &entities.GiveawayResult{Round: round}
	if len(participants) > 0 {
		s.mu.Lock()
		shares := SplitPool(round.Pool, len(participants), s.rng)
		s.mu.Unlock()

		for i, p := range participants {
			if shares[i] > 0 {
				if _, err := utils.AdjustAndRecord(ctx, uow, p.UserID, shares[i], entities.TransactionTypeGiveaway, map[string]any{
					"round_id": round.ID,
				}); err != nil {
					return nil, fmt.Errorf("failed to credit participant %d: %w", p.UserID, err)
				}
			}
			result.Shares = append(result.Shares, entities.GiveawayShare{
				UserID:      p.UserID,
				DisplayName: p.DisplayName,
				Amount:      shares[i],
			})
		}
		sort.SliceStable(result.Shares, func(i, j int) bool {
			return result.Shares[i].Amount > result.Shares[j].Amount
		})
	}

	finalizedAt := s.now()
	if err := repo.MarkFinalized(ctx, round.ID, finalizedAt); err != nil {
		return nil, fmt.Errorf("failed to finalize round: %w", err)
	}
	round.State = entities.GiveawayStateFinalized
	round.FinalizedAt = &finalizedAt

	if err := uow.EventBus().Publish(events.GiveawayFinalizedEvent{
		RoundID:      round.ID,
		MessageID:    messageID,
		Participants: len(participants),
		Pool:         round.Pool,
	}); err != nil {
		log.WithError(err).Error("Failed to publish giveaway finalized event")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"roundID":      round.ID,
		"participants": len(participants),
		"pool":         round.Pool,
	}).Info("Giveaway finalized")
	return result, nil
}

func (s *giveawayService) PendingRounds(ctx context.Context) ([]*entities.GiveawayRound, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rounds, err := uow.GiveawayRepository().GetOpenRounds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open rounds: %w", err)
	}
	return rounds, nil
}

func (s *giveawayService) scheduleNext(ctx context.Context, uow interfaces.UnitOfWork) (time.Time, error) {
	s.mu.Lock()
	minutes := entities.GiveawayMinDelayMinutes + s.rng.Intn(entities.GiveawayMaxDelayMinutes-entities.GiveawayMinDelayMinutes)
	s.mu.Unlock()

	at := s.now().Add(time.Duration(minutes) * time.Minute)
	if err := uow.GiveawayRepository().ReplaceSchedule(ctx, at); err != nil {
		return time.Time{}, fmt.Errorf("failed to store giveaway schedule: %w", err)
	}
	return at, nil
}

// SplitPool divides pool into n non-negative integer shares that sum to pool.
// Shares follow random weights; the floor remainder goes one unit at a time to
// a random subset of participants.
func SplitPool(pool int64, n int, rng *rand.Rand) []int64 {
	if n <= 0 {
		return nil
	}
	shares := make([]int64, n)
	if pool <= 0 {
		return shares
	}

	weights := make([]float64, n)
	var total float64
	for i := range weights {
		weights[i] = rng.Float64()
		total += weights[i]
	}
	if total == 0 {
		for i := range weights {
			weights[i] = 1
		}
		total = float64(n)
	}

	var assigned int64
	for i, w := range weights {
		shares[i] = int64(math.Floor(float64(pool) * w / total))
		assigned += shares[i]
	}

	remainder := pool - assigned
	order := rng.Perm(n)
	for i := 0; remainder > 0; i++ {
		shares[order[i%n]]++
		remainder--
	}
	// float rounding can overshoot by a unit; take it back from the largest share
	for remainder < 0 {
		largest := 0
		for i := range shares {
			if shares[i] > shares[largest] {
				largest = i
			}
		}
		shares[largest]--
		remainder++
	}
	return shares
}
