package utils

import (
	"context"
	"fmt"

	"economy/domain/entities"
	"economy/domain/events"
	"economy/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange records a balance history entry and emits a balance change event.
// Every coin ledger mutation goes through here.
func RecordBalanceChange(ctx context.Context, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, history *entities.BalanceHistory) error {
	if err := balanceHistoryRepo.Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	event := events.BalanceChangeEvent{
		UserID:          history.UserID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	}
	log.WithFields(log.Fields{
		"userID":          event.UserID,
		"oldBalance":      event.OldBalance,
		"newBalance":      event.NewBalance,
		"transactionType": event.TransactionType,
		"changeAmount":    event.ChangeAmount,
	}).Debug("Publishing BalanceChangeEvent")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return nil
}

// AdjustAndRecord applies delta through the coin ledger and records the change
func AdjustAndRecord(ctx context.Context, uow interfaces.UnitOfWork, userID, delta int64, txType entities.TransactionType, metadata map[string]any) (int64, error) {
	newBalance, err := uow.UserRepository().AdjustBalance(ctx, userID, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance: %w", err)
	}

	history := &entities.BalanceHistory{
		UserID:              userID,
		BalanceBefore:       newBalance - delta,
		BalanceAfter:        newBalance,
		ChangeAmount:        delta,
		TransactionType:     txType,
		TransactionMetadata: metadata,
	}
	if err := RecordBalanceChange(ctx, uow.BalanceHistoryRepository(), uow.EventBus(), history); err != nil {
		return 0, err
	}

	return newBalance, nil
}

// DeductAndRecord debits amount only if covered and records the change
func DeductAndRecord(ctx context.Context, uow interfaces.UnitOfWork, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (int64, error) {
	newBalance, err := uow.UserRepository().DeductBalance(ctx, userID, amount)
	if err != nil {
		return 0, err
	}

	history := &entities.BalanceHistory{
		UserID:              userID,
		BalanceBefore:       newBalance + amount,
		BalanceAfter:        newBalance,
		ChangeAmount:        -amount,
		TransactionType:     txType,
		TransactionMetadata: metadata,
	}
	if err := RecordBalanceChange(ctx, uow.BalanceHistoryRepository(), uow.EventBus(), history); err != nil {
		return 0, err
	}

	return newBalance, nil
}

// DebitStake is DeductAndRecord for wagers. A user without an account has a
// balance of 0, so a missing account is reported as insufficient funds.
func DebitStake(ctx context.Context, uow interfaces.UnitOfWork, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (int64, error) {
	balance, err := DeductAndRecord(ctx, uow, userID, amount, txType, metadata)
	if entities.IsNotFound(err) {
		return 0, &entities.InsufficientFundsError{Balance: 0, Required: amount}
	}
	return balance, err
}
