package application

import (
	"context"
	"testing"

	"economy/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReactions struct {
	outcome *entities.ReactionOutcome
	err     error
	calls   int
}

func (s *stubReactions) Process(ctx context.Context, change *entities.ReactionChange) (*entities.ReactionOutcome, error) {
	s.calls++
	return s.outcome, s.err
}

func TestReactionHandler_AcceptedTriggersLeaderboard(t *testing.T) {
	reactions := &stubReactions{outcome: &entities.ReactionOutcome{
		Accepted: true,
		AuthorID: 1,
		Delta:    3,
		Coins:    3,
		Category: entities.CategoryReactor,
	}}
	refresher := &countingRefresher{}
	h := NewReactionHandler(reactions, refresher)

	outcome, err := h.HandleReactionChange(context.Background(), &entities.ReactionChange{})

	require.NoError(t, err)
	assert.True(t, outcome.Accepted)
	assert.Equal(t, 1, refresher.Count())
}

func TestReactionHandler_RejectedLeavesLeaderboard(t *testing.T) {
	reactions := &stubReactions{outcome: &entities.ReactionOutcome{Reason: entities.RejectSelfReaction}}
	refresher := &countingRefresher{}
	h := NewReactionHandler(reactions, refresher)

	outcome, err := h.HandleReactionChange(context.Background(), &entities.ReactionChange{})

	require.NoError(t, err)
	assert.False(t, outcome.Accepted)
	assert.Equal(t, entities.RejectSelfReaction, outcome.Reason)
	assert.Zero(t, refresher.Count())
}

func TestReactionHandler_NilLeaderboard(t *testing.T) {
	h := NewReactionHandler(&stubReactions{outcome: &entities.ReactionOutcome{Accepted: true}}, nil)

	_, err := h.HandleReactionChange(context.Background(), &entities.ReactionChange{})
	assert.NoError(t, err)
}
