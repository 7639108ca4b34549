package services

import (
	"context"
	"fmt"
	"sort"

	"economy/domain/entities"
	"economy/domain/events"
	"economy/domain/interfaces"
	"economy/domain/utils"

	log "github.com/sirupsen/logrus"
)

type ratingService struct {
	ledger         interfaces.RatingLedger
	uowFactory     interfaces.UnitOfWorkFactory
	archived       interfaces.ArchivedTotals
	eventPublisher interfaces.EventPublisher
}

// NewRatingService creates a new rating service
func NewRatingService(ledger interfaces.RatingLedger, uowFactory interfaces.UnitOfWorkFactory, archived interfaces.ArchivedTotals, eventPublisher interfaces.EventPublisher) interfaces.RatingService {
	return &ratingService{
		ledger:         ledger,
		uowFactory:     uowFactory,
		archived:       archived,
		eventPublisher: eventPublisher,
	}
}

func (s *ratingService) GetOrCreate(ctx context.Context, userID int64) (*entities.RatingRecord, error) {
	var rec *entities.RatingRecord
	err := s.ledger.View(ctx, func(v interfaces.RatingView) error {
		if existing, ok := v.Lookup(userID); ok {
			rec = existing.Clone()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read rating: %w", err)
	}
	if rec != nil {
		return rec, nil
	}

	err = s.ledger.Update(ctx, func(tx interfaces.RatingTx) error {
		rec = tx.Record(userID).Clone()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}
	return rec, nil
}

func (s *ratingService) TotalRating(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := s.ledger.View(ctx, func(v interfaces.RatingView) error {
		total = v.TotalRating(userID)
		return nil
	})
	return total, err
}

func (s *ratingService) NeriRating(ctx context.Context, userID int64) (int64, error) {
	var neri int64
	err := s.ledger.View(ctx, func(v interfaces.RatingView) error {
		neri = v.NeriRating(userID)
		return nil
	})
	return neri, err
}

func (s *ratingService) GlobalRating(ctx context.Context, userID int64) (int64, error) {
	total, err := s.TotalRating(ctx, userID)
	if err != nil {
		return 0, err
	}
	return total + s.archived.ArchivedTotal(userID), nil
}

// SetBanned only applies to users already present in the ledger
func (s *ratingService) SetBanned(ctx context.Context, userID int64, banned bool) error {
	var total int64
	err := s.ledger.Update(ctx, func(tx interfaces.RatingTx) error {
		if _, ok := tx.Lookup(userID); !ok {
			return &entities.NotFoundError{Resource: "rating user", ID: userID}
		}
		tx.Record(userID).Banned = banned
		total = tx.TotalRating(userID)
		return nil
	})
	if err != nil {
		return err
	}

	reason := "unbanned"
	if banned {
		reason = "banned"
	}
	s.publish(events.RatingChangedEvent{UserID: userID, Reason: reason, TotalRating: total})
	return nil
}

// AdjustManual moves the manual rating and credits the same amount of coins.
// The rating change is dropped if the coin credit fails to commit. A ledger
// write that fails after the credit committed is logged for reconciliation.
func (s *ratingService) AdjustManual(ctx context.Context, userID int64, delta int64) (*entities.RatingEntry, error) {
	var entry entities.RatingEntry
	var credited bool
	err := s.ledger.Update(ctx, func(tx interfaces.RatingTx) error {
		tx.Record(userID).ManualRating += delta

		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback()

		if _, err := utils.AdjustAndRecord(ctx, uow, userID, delta, entities.TransactionTypeManualRating, map[string]any{
			"manual_delta": delta,
		}); err != nil {
			return err
		}

		entry = entities.RatingEntry{
			UserID:      userID,
			TotalRating: tx.TotalRating(userID),
			NeriRating:  tx.NeriRating(userID),
		}
		if err := uow.EventBus().Publish(events.RatingChangedEvent{
			UserID:      userID,
			Reason:      "manual",
			TotalRating: entry.TotalRating,
		}); err != nil {
			log.WithError(err).Error("Failed to publish rating changed event")
		}

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		credited = true
		return nil
	})
	if err != nil {
		if credited {
			log.WithFields(log.Fields{
				"userID":      userID,
				"ratingDelta": delta,
				"coinDelta":   delta,
				"error":       err,
			}).Error("Manual rating coins credited but rating change was not saved")
		}
		return nil, err
	}

	entry.GlobalTotal = entry.TotalRating + s.archived.ArchivedTotal(userID)
	return &entry, nil
}

// SyncBoosts overwrites the boost count; nothing is written when it is unchanged
func (s *ratingService) SyncBoosts(ctx context.Context, userID int64, liveCount int64) (bool, error) {
	changed := false
	var total int64
	err := s.ledger.Update(ctx, func(tx interfaces.RatingTx) error {
		current, ok := tx.Lookup(userID)
		if (ok && current.Boosts == liveCount) || (!ok && liveCount == 0) {
			return nil
		}
		tx.Record(userID).Boosts = liveCount
		total = tx.TotalRating(userID)
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if changed {
		s.publish(events.RatingChangedEvent{UserID: userID, Reason: "boosts", TotalRating: total})
	}
	return changed, nil
}

func (s *ratingService) Ranking(ctx context.Context) ([]entities.RatingEntry, error) {
	var entries []entities.RatingEntry
	err := s.ledger.View(ctx, func(v interfaces.RatingView) error {
		for _, userID := range v.Users() {
			entries = append(entries, entities.RatingEntry{
				UserID:      userID,
				TotalRating: v.TotalRating(userID),
				NeriRating:  v.NeriRating(userID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].GlobalTotal = entries[i].TotalRating + s.archived.ArchivedTotal(entries[i].UserID)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalRating != entries[j].TotalRating {
			return entries[i].TotalRating > entries[j].TotalRating
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries, nil
}

func (s *ratingService) publish(event events.Event) {
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).WithField("event", event.Type()).Error("Failed to publish event")
	}
}
