package interfaces

import (
	"context"
	"time"

	"economy/domain/entities"
)

// CoinService is the single entry point for balance changes
type CoinService interface {
	// GetBalance returns the user's coins, 0 for unknown users
	GetBalance(ctx context.Context, userID int64) (int64, error)

	// AdjustBalance applies delta atomically and records history; may go negative
	AdjustBalance(ctx context.Context, userID int64, delta int64, txType entities.TransactionType, metadata map[string]any) (int64, error)

	// Charge debits amount only if the balance covers it
	Charge(ctx context.Context, userID int64, amount int64) (int64, error)
}

// RatingService exposes the reputation ledger operations
type RatingService interface {
	// GetOrCreate returns a copy of the user's record, creating it if missing
	GetOrCreate(ctx context.Context, userID int64) (*entities.RatingRecord, error)

	// TotalRating returns the full rating
	TotalRating(ctx context.Context, userID int64) (int64, error)

	// NeriRating returns the origin-granted rating
	NeriRating(ctx context.Context, userID int64) (int64, error)

	// GlobalRating returns TotalRating plus every archived month
	GlobalRating(ctx context.Context, userID int64) (int64, error)

	// SetBanned excludes or re-includes a user's reactions everywhere
	SetBanned(ctx context.Context, userID int64, banned bool) error

	// AdjustManual changes the manual rating and credits the same delta in coins
	AdjustManual(ctx context.Context, userID int64, delta int64) (*entities.RatingEntry, error)

	// SyncBoosts overwrites the boost count; reports whether anything changed
	SyncBoosts(ctx context.Context, userID int64, liveCount int64) (bool, error)

	// Ranking returns every user's ratings ordered by TotalRating descending
	Ranking(ctx context.Context) ([]entities.RatingEntry, error)
}

// ReactionService turns reaction changes into reputation and coins
type ReactionService interface {
	// Process applies a reaction change; rejected changes return an outcome, not an error
	Process(ctx context.Context, change *entities.ReactionChange) (*entities.ReactionOutcome, error)
}

// MarketService runs pari-mutuel polls
type MarketService interface {
	CreatePoll(ctx context.Context, question string, options []string) (*entities.PollView, error)
	AttachMessage(ctx context.Context, pollID, chatID, messageID int64) error
	ClosePoll(ctx context.Context, pollID int64) error
	PlaceBet(ctx context.Context, pollID, userID int64, optionIdx int, amount int64) (*entities.Bet, error)
	GetBet(ctx context.Context, pollID, userID int64) (*entities.Bet, error)
	GetPollView(ctx context.Context, pollID int64) (*entities.PollView, error)
	ListOpenPolls(ctx context.Context) ([]*entities.PollView, error)
	Settle(ctx context.Context, pollID int64, winnerIdx int) (*entities.Settlement, error)
}

// SlotService runs the slot machine
type SlotService interface {
	// Roll spins once; stake <= 0 uses the default stake
	Roll(ctx context.Context, userID int64, stake int64) (*entities.SlotSpin, error)
	SetEnabled(ctx context.Context, enabled bool) error
	AddHelper(ctx context.Context, userID int64) error
	RemoveHelper(ctx context.Context, userID int64) error
}

// GiveawayService schedules and distributes giveaways
type GiveawayService interface {
	ScheduleNext(ctx context.Context) (time.Time, error)
	NextSchedule(ctx context.Context) (*time.Time, error)
	Announce(ctx context.Context, messageID, channelID int64, scheduledAt time.Time) (*entities.GiveawayRound, error)
	Join(ctx context.Context, messageID, userID int64, displayName string) (bool, error)
	Finalize(ctx context.Context, messageID int64) (*entities.GiveawayResult, error)
	PendingRounds(ctx context.Context) ([]*entities.GiveawayRound, error)
}

// RolloverService archives the reputation ledger monthly
type RolloverService interface {
	// CheckAndRollover archives and resets on the first day of a month
	CheckAndRollover(ctx context.Context, now time.Time) (bool, error)

	// RecomputeArchivedTotals rebuilds the lifetime accumulator from archives
	RecomputeArchivedTotals(ctx context.Context) error

	// ArchivedTotal returns the user's archived rating sum
	ArchivedTotal(userID int64) int64
}

// ArchivedTotals is the read side of the lifetime accumulator
type ArchivedTotals interface {
	ArchivedTotal(userID int64) int64
}

// MembershipDirectory resolves when a user joined the community chat
type MembershipDirectory interface {
	// GetJoinDate returns nil when the user is not a member or the date is unknown
	GetJoinDate(ctx context.Context, userID int64) (*time.Time, error)
}
