package application

import (
	"context"
	"time"

	"economy/domain/entities"
)

// GiveawayPoster posts giveaway messages to the community chat. It keeps the
// application layer free of the chat API.
type GiveawayPoster interface {
	// AnnounceGiveaway posts the announcement with its join button
	AnnounceGiveaway(ctx context.Context, pool int64, window time.Duration) (channelID, messageID int64, err error)

	// DeleteMessage removes the announcement once the round is finalized
	DeleteMessage(ctx context.Context, channelID, messageID int64) error

	// StripJoinButton disables joining when the announcement cannot be deleted
	StripJoinButton(ctx context.Context, channelID, messageID int64) error

	// PostGiveawayResult posts the payout list
	PostGiveawayResult(ctx context.Context, channelID int64, result *entities.GiveawayResult) error
}

// PollRenderer re-renders a poll message in place
type PollRenderer interface {
	RenderPoll(ctx context.Context, view *entities.PollView) error
}

// LeaderboardRefresher schedules a leaderboard rebuild
type LeaderboardRefresher interface {
	Trigger()
}
