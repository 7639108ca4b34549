package services

import (
	"context"
	"fmt"
	"time"

	"economy/domain/entities"
	"economy/domain/events"
	"economy/domain/interfaces"
	"economy/domain/utils"

	log "github.com/sirupsen/logrus"
)

type rolloverService struct {
	ledger         interfaces.RatingLedger
	archives       interfaces.ArchiveStore
	totals         *ArchivedTotalsCache
	eventPublisher interfaces.EventPublisher
}

// NewRolloverService creates a new monthly rollover service
func NewRolloverService(ledger interfaces.RatingLedger, archives interfaces.ArchiveStore, totals *ArchivedTotalsCache, eventPublisher interfaces.EventPublisher) interfaces.RolloverService {
	return &rolloverService{
		ledger:         ledger,
		archives:       archives,
		totals:         totals,
		eventPublisher: eventPublisher,
	}
}

// CheckAndRollover archives the live ledger under the previous month and clears
// it. It only acts on the first day of a month and only once per period.
func (s *rolloverService) CheckAndRollover(ctx context.Context, now time.Time) (bool, error) {
	if !utils.IsFirstDayOfMonth(now) {
		return false, nil
	}

	period := utils.ArchivePeriod(now)
	existing, err := s.archives.GetArchive(ctx, period)
	if err != nil {
		return false, fmt.Errorf("failed to check archive %s: %w", period, err)
	}
	if existing != nil {
		log.WithField("period", period).Debug("Rating period already archived")
		return false, nil
	}

	users := 0
	err = s.ledger.Rotate(ctx, func(records map[int64]*entities.RatingRecord) error {
		users = len(records)
		return s.archives.SaveArchive(ctx, &entities.RatingArchive{
			Period:     period,
			ArchivedAt: now,
			Records:    records,
		})
	})
	if err != nil {
		return false, fmt.Errorf("failed to archive ratings: %w", err)
	}

	if err := s.RecomputeArchivedTotals(ctx); err != nil {
		return true, err
	}

	if err := s.eventPublisher.Publish(events.RatingArchivedEvent{Period: period, Users: users}); err != nil {
		log.WithError(err).Error("Failed to publish rating archived event")
	}

	log.WithFields(log.Fields{
		"period": period,
		"users":  users,
	}).Info("Monthly rating rollover complete")
	return true, nil
}

func (s *rolloverService) RecomputeArchivedTotals(ctx context.Context) error {
	return s.totals.Recompute(ctx, s.archives)
}

func (s *rolloverService) ArchivedTotal(userID int64) int64 {
	return s.totals.ArchivedTotal(userID)
}
