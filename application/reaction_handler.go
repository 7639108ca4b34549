package application

import (
	"context"

	"economy/domain/entities"
	"economy/domain/interfaces"
	"economy/infrastructure/observability"
)

// ReactionHandler feeds transport reaction events into the reaction service
type ReactionHandler struct {
	reactions   interfaces.ReactionService
	leaderboard LeaderboardRefresher
}

// NewReactionHandler creates a new reaction handler; leaderboard may be nil
func NewReactionHandler(reactions interfaces.ReactionService, leaderboard LeaderboardRefresher) *ReactionHandler {
	return &ReactionHandler{
		reactions:   reactions,
		leaderboard: leaderboard,
	}
}

// HandleReactionChange scores one reaction diff. Rejections are not errors.
func (h *ReactionHandler) HandleReactionChange(ctx context.Context, change *entities.ReactionChange) (*entities.ReactionOutcome, error) {
	outcome, err := h.reactions.Process(ctx, change)
	if err != nil {
		return nil, err
	}

	metrics := observability.GetMetrics()
	if !outcome.Accepted {
		metrics.RecordReaction(string(outcome.Reason), "", 0)
		return outcome, nil
	}

	metrics.RecordReaction(observability.OutcomeAccepted, string(outcome.Category), outcome.Coins)
	metrics.RecordBalanceTransaction(string(entities.TransactionTypeReaction))
	if h.leaderboard != nil {
		h.leaderboard.Trigger()
	}
	return outcome, nil
}
