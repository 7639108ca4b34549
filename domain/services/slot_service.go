package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"economy/domain/entities"
	"economy/domain/events"
	"economy/domain/interfaces"
	"economy/domain/utils"

	log "github.com/sirupsen/logrus"
)

type slotService struct {
	uowFactory   interfaces.UnitOfWorkFactory
	defaultStake int64
	draw         func() int
	now          func() time.Time
}

// NewSlotService creates a new slot machine service. defaultStake <= 0 uses DefaultSlotStake.
func NewSlotService(uowFactory interfaces.UnitOfWorkFactory, defaultStake int64) interfaces.SlotService {
	if defaultStake <= 0 {
		defaultStake = entities.DefaultSlotStake
	}
	return &slotService{
		uowFactory:   uowFactory,
		defaultStake: defaultStake,
		draw:         func() int { return rand.Intn(entities.SlotValueRange) },
		now:          time.Now,
	}
}

func (s *slotService) Roll(ctx context.Context, userID int64, stake int64) (*entities.SlotSpin, error) {
	if stake <= 0 {
		stake = s.defaultStake
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings := uow.SettingsRepository()
	enabled, err := settings.IsSlotEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read slot setting: %w", err)
	}
	if !enabled {
		return nil, entities.ErrSlotDisabled
	}

	now := s.now()
	helper, err := settings.IsHelper(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check helper: %w", err)
	}
	if !helper {
		recent, err := uow.SlotRollRepository().GetRecent(ctx, userID, entities.SlotMaxRolls)
		if err != nil {
			return nil, fmt.Errorf("failed to get recent rolls: %w", err)
		}
		if limited, wait := entities.SlotRateLimited(recent, now); limited {
			return nil, &entities.RateLimitedError{Operation: "slot", RetryAfter: wait}
		}
	}

	balance, err := utils.DebitStake(ctx, uow, userID, stake, entities.TransactionTypeSlotStake, nil)
	if err != nil {
		return nil, err
	}

	if err := uow.SlotRollRepository().Record(ctx, userID, now, entities.SlotMaxRolls); err != nil {
		return nil, fmt.Errorf("failed to record roll: %w", err)
	}

	spin := entities.DecodeSlotValue(s.draw(), stake)
	if spin.Won {
		balance, err = utils.AdjustAndRecord(ctx, uow, userID, spin.Payout, entities.TransactionTypeSlotPayout, map[string]any{
			"reels":      spin.Reels,
			"multiplier": spin.Multiplier,
		})
		if err != nil {
			return nil, err
		}
	}
	spin.NewBalance = balance

	if err := uow.EventBus().Publish(events.SlotRolledEvent{
		UserID:     userID,
		Reels:      spin.Reels,
		Stake:      stake,
		Payout:     spin.Payout,
		Multiplier: spin.Multiplier,
	}); err != nil {
		log.WithError(err).Error("Failed to publish slot rolled event")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"reels":  spin.Reels,
		"stake":  stake,
		"payout": spin.Payout,
	}).Debug("Slot rolled")
	return spin, nil
}

func (s *slotService) SetEnabled(ctx context.Context, enabled bool) error {
	return s.withSettings(ctx, func(settings interfaces.SettingsRepository) error {
		return settings.SetSlotEnabled(ctx, enabled)
	})
}

func (s *slotService) AddHelper(ctx context.Context, userID int64) error {
	return s.withSettings(ctx, func(settings interfaces.SettingsRepository) error {
		return settings.AddHelper(ctx, userID)
	})
}

func (s *slotService) RemoveHelper(ctx context.Context, userID int64) error {
	return s.withSettings(ctx, func(settings interfaces.SettingsRepository) error {
		return settings.RemoveHelper(ctx, userID)
	})
}

func (s *slotService) withSettings(ctx context.Context, fn func(interfaces.SettingsRepository) error) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow.SettingsRepository()); err != nil {
		return fmt.Errorf("failed to update slot settings: %w", err)
	}
	return uow.Commit()
}
