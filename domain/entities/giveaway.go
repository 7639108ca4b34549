package entities

import (
	"time"
)

const (
	// GiveawayPool is the fixed amount split among participants
	GiveawayPool int64 = 5000
	// GiveawayWindow is how long a round accepts joins after announcement
	GiveawayWindow = 5 * time.Minute
	// GiveawayMinDelayMinutes and GiveawayMaxDelayMinutes bound the random schedule, max exclusive
	GiveawayMinDelayMinutes = 60
	GiveawayMaxDelayMinutes = 720
)

// GiveawayState is the lifecycle state of a giveaway round
type GiveawayState string

const (
	GiveawayStateScheduled GiveawayState = "scheduled"
	GiveawayStateOpen      GiveawayState = "open"
	GiveawayStateFinalized GiveawayState = "finalized"
)

// GiveawayRound is one announced giveaway, keyed by its announcement message
type GiveawayRound struct {
	ID          int64         `db:"id"`
	MessageID   int64         `db:"message_id"`
	ChannelID   int64         `db:"channel_id"`
	State       GiveawayState `db:"state"`
	Pool        int64         `db:"pool"`
	ScheduledAt time.Time     `db:"scheduled_at"`
	AnnouncedAt time.Time     `db:"announced_at"`
	ExpiresAt   time.Time     `db:"expires_at"`
	FinalizedAt *time.Time    `db:"finalized_at"`
}

// AcceptsJoinsAt reports whether the join window is open at t
func (r *GiveawayRound) AcceptsJoinsAt(t time.Time) bool {
	return r.State == GiveawayStateOpen && t.Before(r.ExpiresAt)
}

// IsFinalized reports whether payouts already happened
func (r *GiveawayRound) IsFinalized() bool {
	return r.State == GiveawayStateFinalized
}

// GiveawayParticipant is a user who joined a round
type GiveawayParticipant struct {
	RoundID     int64     `db:"round_id"`
	UserID      int64     `db:"user_id"`
	DisplayName string    `db:"display_name"`
	JoinedAt    time.Time `db:"joined_at"`
}

// GiveawayShare is a participant's payout
type GiveawayShare struct {
	UserID      int64
	DisplayName string
	Amount      int64
}

// GiveawayResult is the outcome of finalizing a round
type GiveawayResult struct {
	Round *GiveawayRound
	// Shares are sorted by amount descending
	Shares []GiveawayShare
	// AlreadyFinalized is set when the call was a no-op
	AlreadyFinalized bool
}
