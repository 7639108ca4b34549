package interfaces

import (
	"context"
	"time"

	"economy/domain/entities"
)

// UserRepository is the coin ledger
type UserRepository interface {
	// GetByID retrieves an account, nil if the user has never held coins
	GetByID(ctx context.Context, userID int64) (*entities.UserAccount, error)

	// GetBalance returns the user's coins, 0 for unknown users
	GetBalance(ctx context.Context, userID int64) (int64, error)

	// AdjustBalance adds delta to the balance, creating the row if needed, and returns the new balance
	AdjustBalance(ctx context.Context, userID int64, delta int64) (int64, error)

	// DeductBalance removes amount only if the balance covers it and returns the new balance.
	// Returns NotFoundError when no row exists and InsufficientFundsError when it does not cover.
	DeductBalance(ctx context.Context, userID int64, amount int64) (int64, error)

	// Count returns the number of accounts
	Count(ctx context.Context) (int64, error)

	// SeedBalances inserts accounts for users that do not exist yet
	SeedBalances(ctx context.Context, balances map[int64]int64) (int, error)

	// MarkJoined records when a user joined the chat
	MarkJoined(ctx context.Context, userID int64, joinedAt time.Time) error

	// IncrementLeftCount records that a user left the chat
	IncrementLeftCount(ctx context.Context, userID int64) error
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *entities.BalanceHistory) error

	// GetByUser returns balance history for a specific user, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.BalanceHistory, error)
}

// PollRepository stores pari-mutuel polls and their options
type PollRepository interface {
	// Create inserts the poll and its options and sets poll.ID
	Create(ctx context.Context, poll *entities.Poll, options []string) error

	// GetByID retrieves a poll, nil if missing
	GetByID(ctx context.Context, pollID int64) (*entities.Poll, error)

	// GetByIDForUpdate retrieves a poll and locks it for the rest of the transaction
	GetByIDForUpdate(ctx context.Context, pollID int64) (*entities.Poll, error)

	// GetOptions returns the options with staked totals, ordered by index
	GetOptions(ctx context.Context, pollID int64) ([]*entities.PollOption, error)

	// GetOption retrieves a single option, nil if missing
	GetOption(ctx context.Context, pollID int64, idx int) (*entities.PollOption, error)

	// UpdateStatus moves the poll to a new status and records the winner if given
	UpdateStatus(ctx context.Context, pollID int64, status entities.PollStatus, winnerIdx *int) error

	// SetMessage records where the poll is rendered
	SetMessage(ctx context.Context, pollID int64, chatID, messageID int64) error

	// ListByStatus returns polls in the given status
	ListByStatus(ctx context.Context, status entities.PollStatus) ([]*entities.Poll, error)
}

// BetRepository stores stakes keyed by (poll, user)
type BetRepository interface {
	// Get retrieves a user's bet on a poll, nil if none
	Get(ctx context.Context, pollID, userID int64) (*entities.Bet, error)

	// AddStake creates the bet or tops it up and returns the stored bet
	AddStake(ctx context.Context, pollID, userID int64, optionIdx int, amount int64) (*entities.Bet, error)

	// GetByPoll returns every bet on a poll
	GetByPoll(ctx context.Context, pollID int64) ([]*entities.Bet, error)
}

// SlotRollRepository stores recent slot roll timestamps
type SlotRollRepository interface {
	// GetRecent returns up to limit timestamps, newest first
	GetRecent(ctx context.Context, userID int64, limit int) ([]time.Time, error)

	// Record stores a roll and prunes the user down to keep entries
	Record(ctx context.Context, userID int64, at time.Time, keep int) error
}

// SettingsRepository stores global switches and privileged helpers
type SettingsRepository interface {
	// IsSlotEnabled reports the global slot switch, enabled by default
	IsSlotEnabled(ctx context.Context) (bool, error)

	// SetSlotEnabled updates the global slot switch
	SetSlotEnabled(ctx context.Context, enabled bool) error

	// IsHelper reports whether a user is privileged
	IsHelper(ctx context.Context, userID int64) (bool, error)

	// AddHelper grants privileges
	AddHelper(ctx context.Context, userID int64) error

	// RemoveHelper revokes privileges
	RemoveHelper(ctx context.Context, userID int64) error
}

// GiveawayRepository stores the pending schedule and giveaway rounds
type GiveawayRepository interface {
	// GetSchedule returns the pending giveaway time, nil if none
	GetSchedule(ctx context.Context) (*time.Time, error)

	// ReplaceSchedule keeps a single pending schedule row
	ReplaceSchedule(ctx context.Context, at time.Time) error

	// ClearSchedule removes the pending schedule
	ClearSchedule(ctx context.Context) error

	// CreateRound inserts a round and sets round.ID
	CreateRound(ctx context.Context, round *entities.GiveawayRound) error

	// GetRoundByMessageID retrieves a round by its announcement, nil if missing
	GetRoundByMessageID(ctx context.Context, messageID int64) (*entities.GiveawayRound, error)

	// GetRoundByMessageIDForUpdate retrieves and locks a round
	GetRoundByMessageIDForUpdate(ctx context.Context, messageID int64) (*entities.GiveawayRound, error)

	// GetOpenRounds returns rounds that are not finalized yet
	GetOpenRounds(ctx context.Context) ([]*entities.GiveawayRound, error)

	// AddParticipant adds a user to a round; false if they had already joined
	AddParticipant(ctx context.Context, participant *entities.GiveawayParticipant) (bool, error)

	// GetParticipants returns participants in join order
	GetParticipants(ctx context.Context, roundID int64) ([]*entities.GiveawayParticipant, error)

	// MarkFinalized transitions a round to finalized
	MarkFinalized(ctx context.Context, roundID int64, at time.Time) error
}
