package events

import "economy/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange     EventType = "balance_change"
	EventTypeReactionScored    EventType = "reaction_scored"
	EventTypeRatingChanged     EventType = "rating_changed"
	EventTypeBetPlaced         EventType = "bet_placed"
	EventTypePollStateChange   EventType = "poll_state_change"
	EventTypePollSettled       EventType = "poll_settled"
	EventTypeSlotRolled        EventType = "slot_rolled"
	EventTypeGiveawayFinalized EventType = "giveaway_finalized"
	EventTypeRatingArchived    EventType = "rating_archived"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a coin ledger change that occurred
type BalanceChangeEvent struct {
	UserID          int64                    `json:"user_id"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	ChangeAmount    int64                    `json:"change_amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// ReactionScoredEvent is emitted when a reaction changed someone's reputation
type ReactionScoredEvent struct {
	AuthorID  int64                   `json:"author_id"`
	ReactorID int64                   `json:"reactor_id"`
	Category  entities.RatingCategory `json:"category"`
	Delta     int64                   `json:"delta"`
	Coins     int64                   `json:"coins"`
}

func (e ReactionScoredEvent) Type() EventType {
	return EventTypeReactionScored
}

// RatingChangedEvent is emitted after admin adjustments, bans and boost syncs
type RatingChangedEvent struct {
	UserID      int64  `json:"user_id"`
	Reason      string `json:"reason"`
	TotalRating int64  `json:"total_rating"`
}

func (e RatingChangedEvent) Type() EventType {
	return EventTypeRatingChanged
}

// BetPlacedEvent represents a stake placed on a poll
type BetPlacedEvent struct {
	PollID    int64 `json:"poll_id"`
	UserID    int64 `json:"user_id"`
	OptionIdx int   `json:"option_idx"`
	Amount    int64 `json:"amount"`
	Stake     int64 `json:"stake"`
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// PollStateChangeEvent represents a poll state transition
type PollStateChangeEvent struct {
	PollID   int64  `json:"poll_id"`
	OldState string `json:"old_state"`
	NewState string `json:"new_state"`
}

func (e PollStateChangeEvent) Type() EventType {
	return EventTypePollStateChange
}

// PollSettledEvent summarizes a settlement
type PollSettledEvent struct {
	PollID      int64 `json:"poll_id"`
	WinnerIdx   int   `json:"winner_idx"`
	TotalWin    int64 `json:"total_win"`
	TotalLose   int64 `json:"total_lose"`
	WinnerCount int   `json:"winner_count"`
	Remainder   int64 `json:"remainder"`
}

func (e PollSettledEvent) Type() EventType {
	return EventTypePollSettled
}

// SlotRolledEvent represents a slot machine spin
type SlotRolledEvent struct {
	UserID     int64  `json:"user_id"`
	Reels      [3]int `json:"reels"`
	Stake      int64  `json:"stake"`
	Payout     int64  `json:"payout"`
	Multiplier int64  `json:"multiplier"`
}

func (e SlotRolledEvent) Type() EventType {
	return EventTypeSlotRolled
}

// GiveawayFinalizedEvent represents a distributed giveaway round
type GiveawayFinalizedEvent struct {
	RoundID      int64 `json:"round_id"`
	MessageID    int64 `json:"message_id"`
	Participants int   `json:"participants"`
	Pool         int64 `json:"pool"`
}

func (e GiveawayFinalizedEvent) Type() EventType {
	return EventTypeGiveawayFinalized
}

// RatingArchivedEvent is emitted by the monthly rollover
type RatingArchivedEvent struct {
	Period string `json:"period"`
	Users  int    `json:"users"`
}

func (e RatingArchivedEvent) Type() EventType {
	return EventTypeRatingArchived
}
