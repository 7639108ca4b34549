package entities

import (
	"time"
)

// UserAccount is a coin ledger row
type UserAccount struct {
	ID         int64      `db:"id"`
	Coins      int64      `db:"coins"`
	Alias      *string    `db:"alias"`
	Note       *string    `db:"note"`
	LeftCount  int        `db:"left_cnt"`
	ChatJoined *time.Time `db:"chat_joined"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// CanAfford checks if the account holds at least amount coins
func (u *UserAccount) CanAfford(amount int64) bool {
	return u.Coins >= amount
}

// ValidateStake checks that a wager amount is positive and affordable
func (u *UserAccount) ValidateStake(amount int64) error {
	if amount <= 0 {
		return NewValidationError("amount must be positive")
	}
	if !u.CanAfford(amount) {
		return &InsufficientFundsError{Balance: u.Coins, Required: amount}
	}
	return nil
}

// DisplayName returns the alias if set, otherwise nothing
func (u *UserAccount) DisplayName() string {
	if u.Alias != nil {
		return *u.Alias
	}
	return ""
}
