package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"economy/domain/entities"
	"economy/domain/events"
	"economy/domain/interfaces"
	"economy/domain/utils"

	log "github.com/sirupsen/logrus"
)

// reactionRateLimits are checked against the reactor's recent gated reactions,
// newest first. minHistory is compared with the lifetime counter when
// lifetime is set, otherwise with the retained window.
var reactionRateLimits = []struct {
	nth        int
	window     time.Duration
	minHistory int64
	lifetime   bool
}{
	{nth: 3, window: 30 * time.Second, minHistory: 3},
	{nth: 5, window: 5 * time.Minute, minHistory: 20, lifetime: true},
	// The retained window never holds 60 entries, so this limit never fires.
	{nth: 10, window: 30 * time.Minute, minHistory: 60},
}

// WeightResolver sums emoji weights
type WeightResolver interface {
	Sum(keys []string) int64
}

type reactionService struct {
	ledger     interfaces.RatingLedger
	uowFactory interfaces.UnitOfWorkFactory
	weights    WeightResolver
	identities *entities.IdentityResolver
	membership interfaces.MembershipDirectory
	now        func() time.Time
}

// NewReactionService creates a new reaction service
func NewReactionService(
	ledger interfaces.RatingLedger,
	uowFactory interfaces.UnitOfWorkFactory,
	weights WeightResolver,
	identities *entities.IdentityResolver,
	membership interfaces.MembershipDirectory,
) interfaces.ReactionService {
	return &reactionService{
		ledger:     ledger,
		uowFactory: uowFactory,
		weights:    weights,
		identities: identities,
		membership: membership,
		now:        time.Now,
	}
}

// Process scores a reaction change. The join date is fetched first; every gate
// and mutation then runs inside a single ledger update so concurrent events for
// the same users cannot interleave between check and write.
func (s *reactionService) Process(ctx context.Context, change *entities.ReactionChange) (*entities.ReactionOutcome, error) {
	author := s.identities.ResolveAuthor(change.AuthorID)
	reactor := s.identities.Resolve(change.ReactorID)

	if author.ID == reactor.ID {
		return s.reject(change, entities.RejectSelfReaction), nil
	}

	var joinedAt *time.Time
	if !reactor.IsOrigin() {
		var err error
		joinedAt, err = s.joinDate(ctx, reactor.ID)
		if err != nil {
			return nil, err
		}
	}

	var outcome *entities.ReactionOutcome
	var credited bool
	err := s.ledger.Update(ctx, func(tx interfaces.RatingTx) error {
		now := s.now()

		if !reactor.IsOrigin() {
			if tx.TotalRating(reactor.ID) < entities.MinReactorRating {
				outcome = entities.Rejected(entities.RejectLowRating)
				return nil
			}
			if joinedAt == nil || now.Sub(*joinedAt) <= entities.MinMembershipAge {
				outcome = entities.Rejected(entities.RejectNewMember)
				return nil
			}
		}

		delta := s.weights.Sum(change.Added) - s.weights.Sum(change.Removed)
		if delta == 0 {
			outcome = entities.Rejected(entities.RejectZeroDelta)
			return nil
		}

		rule := entities.ScoringRuleFor(author, reactor)
		if rule.Gated {
			if reason := checkReactionGates(tx, author.ID, reactor.ID, now); reason != entities.RejectNone {
				outcome = entities.Rejected(reason)
				return nil
			}
			authorRec := tx.Record(author.ID)
			authorRec.Tally(reactor.ID).Count++
			authorRec.TotalReacts++
			tx.Record(reactor.ID).PushReactorDate(now)
		}

		authorRec := tx.Record(author.ID)
		switch rule.Category {
		case entities.CategoryNeri:
			authorRec.AdditionalNeri += delta
		case entities.CategorySelf:
			authorRec.AdditionalSelf += delta
		default:
			authorRec.Tally(reactor.ID).Value += delta
		}

		coins := delta * rule.Multiplier
		if err := s.creditAuthor(ctx, change, author.ID, reactor.ID, rule.Category, delta, coins); err != nil {
			return err
		}
		credited = true

		outcome = &entities.ReactionOutcome{
			Accepted: true,
			AuthorID: author.ID,
			Delta:    delta,
			Coins:    coins,
			Category: rule.Category,
		}
		return nil
	})
	if err != nil {
		// The coin credit is already committed and cannot be rolled back
		if credited {
			log.WithFields(log.Fields{
				"messageID":   change.MessageID,
				"authorID":    outcome.AuthorID,
				"reactorID":   change.ReactorID,
				"category":    outcome.Category,
				"ratingDelta": outcome.Delta,
				"coinDelta":   outcome.Coins,
				"error":       err,
			}).Error("Reaction coins credited but rating change was not saved")
		}
		return nil, fmt.Errorf("failed to apply reaction: %w", err)
	}

	if !outcome.Accepted {
		return s.reject(change, outcome.Reason), nil
	}

	log.WithFields(log.Fields{
		"messageID": change.MessageID,
		"authorID":  outcome.AuthorID,
		"reactorID": change.ReactorID,
		"added":     len(change.Added),
		"removed":   len(change.Removed),
		"delta":     outcome.Delta,
		"category":  outcome.Category,
	}).Info("Reaction scored")
	return outcome, nil
}

// checkReactionGates applies the rate limit and the anti-brigading cap
func checkReactionGates(tx interfaces.RatingView, authorID, reactorID int64, now time.Time) entities.RejectReason {
	if reactorRec, ok := tx.Lookup(reactorID); ok {
		for _, limit := range reactionRateLimits {
			history := int64(len(reactorRec.ReactorDates))
			if limit.lifetime {
				history = reactorRec.ReactorTotal
			}
			if history < limit.minHistory {
				continue
			}
			at, ok := reactorRec.RecentReaction(limit.nth)
			if ok && now.Sub(at) < limit.window {
				return entities.RejectRateLimited
			}
		}
	}

	if authorRec, ok := tx.Lookup(authorID); ok {
		total := authorRec.CountedReacts()
		if total >= entities.BrigadingThreshold {
			limit := int64(math.Floor(entities.BrigadingShare * float64(total)))
			if authorRec.PriorCount(reactorID) > limit {
				return entities.RejectBrigading
			}
		}
	}

	return entities.RejectNone
}

func (s *reactionService) creditAuthor(ctx context.Context, change *entities.ReactionChange, authorID, reactorID int64, category entities.RatingCategory, delta, coins int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := utils.AdjustAndRecord(ctx, uow, authorID, coins, entities.TransactionTypeReaction, map[string]any{
		"reactor_id": reactorID,
		"message_id": change.MessageID,
		"category":   string(category),
		"delta":      delta,
	}); err != nil {
		return err
	}

	if err := uow.EventBus().Publish(events.ReactionScoredEvent{
		AuthorID:  authorID,
		ReactorID: reactorID,
		Category:  category,
		Delta:     delta,
		Coins:     coins,
	}); err != nil {
		log.WithError(err).Error("Failed to publish reaction scored event")
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// joinDate asks the transport first and falls back to the stored join date
func (s *reactionService) joinDate(ctx context.Context, userID int64) (*time.Time, error) {
	joinedAt, err := s.membership.GetJoinDate(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("userID", userID).Warn("Failed to resolve join date from transport")
	}
	if err == nil && joinedAt != nil {
		return joinedAt, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil
	}
	return user.ChatJoined, nil
}

func (s *reactionService) reject(change *entities.ReactionChange, reason entities.RejectReason) *entities.ReactionOutcome {
	log.WithFields(log.Fields{
		"messageID": change.MessageID,
		"reactorID": change.ReactorID,
		"reason":    reason,
	}).Debug("Reaction dropped")
	return entities.Rejected(reason)
}
