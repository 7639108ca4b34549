package services

import (
	"context"
	"fmt"

	"economy/domain/entities"
	"economy/domain/interfaces"
	"economy/domain/utils"
)

type coinService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewCoinService creates a new coin service
func NewCoinService(uowFactory interfaces.UnitOfWorkFactory) interfaces.CoinService {
	return &coinService{uowFactory: uowFactory}
}

func (s *coinService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := uow.UserRepository().GetBalance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (s *coinService) AdjustBalance(ctx context.Context, userID int64, delta int64, txType entities.TransactionType, metadata map[string]any) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	newBalance, err := utils.AdjustAndRecord(ctx, uow, userID, delta, txType, metadata)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return newBalance, nil
}

// Charge debits coins for an external purchase. The balance is never allowed below zero.
func (s *coinService) Charge(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, entities.NewValidationError("amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	newBalance, err := utils.DeductAndRecord(ctx, uow, userID, amount, entities.TransactionTypeCharge, nil)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return newBalance, nil
}
