package application

import (
	"context"
	"fmt"
	"time"

	"economy/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// MembershipHandler tracks chat joins, leaves and boost counts
type MembershipHandler struct {
	uowFactory  interfaces.UnitOfWorkFactory
	ratings     interfaces.RatingService
	leaderboard LeaderboardRefresher
}

// NewMembershipHandler creates a new membership handler; leaderboard may be nil
func NewMembershipHandler(uowFactory interfaces.UnitOfWorkFactory, ratings interfaces.RatingService, leaderboard LeaderboardRefresher) *MembershipHandler {
	return &MembershipHandler{
		uowFactory:  uowFactory,
		ratings:     ratings,
		leaderboard: leaderboard,
	}
}

func (h *MembershipHandler) HandleJoin(ctx context.Context, userID int64, joinedAt time.Time) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().MarkJoined(ctx, userID, joinedAt); err != nil {
		return fmt.Errorf("failed to record join: %w", err)
	}
	return uow.Commit()
}

func (h *MembershipHandler) HandleLeave(ctx context.Context, userID int64) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().IncrementLeftCount(ctx, userID); err != nil {
		return fmt.Errorf("failed to record leave: %w", err)
	}
	return uow.Commit()
}

// SyncBoosts overwrites boost counts from the live member list. Ledger users
// missing from live drop to zero boosts. Returns the number of changed users.
func (h *MembershipHandler) SyncBoosts(ctx context.Context, live map[int64]int64) (int, error) {
	ranking, err := h.ratings.Ranking(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load ranking: %w", err)
	}

	targets := make(map[int64]int64, len(live)+len(ranking))
	for _, entry := range ranking {
		targets[entry.UserID] = 0
	}
	for userID, count := range live {
		targets[userID] = count
	}

	changed := 0
	for userID, count := range targets {
		ok, err := h.ratings.SyncBoosts(ctx, userID, count)
		if err != nil {
			return changed, fmt.Errorf("failed to sync boosts for user %d: %w", userID, err)
		}
		if ok {
			changed++
		}
	}

	if changed > 0 {
		log.WithField("changed", changed).Info("Boost counts synced")
		if h.leaderboard != nil {
			h.leaderboard.Trigger()
		}
	}
	return changed, nil
}

// StoredJoinDirectory resolves join dates from the live transport first and
// falls back to the chat_joined column.
type StoredJoinDirectory struct {
	live       interfaces.MembershipDirectory
	uowFactory interfaces.UnitOfWorkFactory
}

// NewStoredJoinDirectory wraps live; live may be nil
func NewStoredJoinDirectory(live interfaces.MembershipDirectory, uowFactory interfaces.UnitOfWorkFactory) *StoredJoinDirectory {
	return &StoredJoinDirectory{live: live, uowFactory: uowFactory}
}

func (d *StoredJoinDirectory) GetJoinDate(ctx context.Context, userID int64) (*time.Time, error) {
	if d.live != nil {
		joined, err := d.live.GetJoinDate(ctx, userID)
		if err != nil {
			log.WithError(err).WithField("userID", userID).Debug("Live join date lookup failed, using stored date")
		} else if joined != nil {
			return joined, nil
		}
	}

	uow := d.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if account == nil {
		return nil, nil
	}
	return account.ChatJoined, nil
}
