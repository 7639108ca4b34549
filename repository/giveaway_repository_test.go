package repository

import (
	"context"
	"testing"
	"time"

	"economy/domain/entities"
	"economy/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiveawayRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewGiveawayRepository(testDB.DB)
	ctx := context.Background()

	t.Run("single schedule row", func(t *testing.T) {
		at, err := repo.GetSchedule(ctx)
		require.NoError(t, err)
		assert.Nil(t, at)

		first := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
		second := first.Add(3 * time.Hour)
		require.NoError(t, repo.ReplaceSchedule(ctx, first))
		require.NoError(t, repo.ReplaceSchedule(ctx, second))

		at, err = repo.GetSchedule(ctx)
		require.NoError(t, err)
		require.NotNil(t, at)
		assert.True(t, second.Equal(*at))

		require.NoError(t, repo.ClearSchedule(ctx))
		at, err = repo.GetSchedule(ctx)
		require.NoError(t, err)
		assert.Nil(t, at)
	})

	t.Run("round lifecycle", func(t *testing.T) {
		round := testutil.CreateTestGiveawayRound(4242)
		require.NoError(t, repo.CreateRound(ctx, round))
		require.NotZero(t, round.ID)

		added, err := repo.AddParticipant(ctx, &entities.GiveawayParticipant{RoundID: round.ID, UserID: 1, DisplayName: "one"})
		require.NoError(t, err)
		assert.True(t, added)

		added, err = repo.AddParticipant(ctx, &entities.GiveawayParticipant{RoundID: round.ID, UserID: 1, DisplayName: "one"})
		require.NoError(t, err)
		assert.False(t, added, "joining twice is a no-op")

		_, err = repo.AddParticipant(ctx, &entities.GiveawayParticipant{RoundID: round.ID, UserID: 2, DisplayName: "two"})
		require.NoError(t, err)

		participants, err := repo.GetParticipants(ctx, round.ID)
		require.NoError(t, err)
		require.Len(t, participants, 2)
		assert.Equal(t, int64(1), participants[0].UserID)

		open, err := repo.GetOpenRounds(ctx)
		require.NoError(t, err)
		assert.Len(t, open, 1)

		require.NoError(t, repo.MarkFinalized(ctx, round.ID, time.Now()))

		stored, err := repo.GetRoundByMessageID(ctx, 4242)
		require.NoError(t, err)
		assert.True(t, stored.IsFinalized())
		assert.NotNil(t, stored.FinalizedAt)

		open, err = repo.GetOpenRounds(ctx)
		require.NoError(t, err)
		assert.Empty(t, open)
	})
}

func TestSlotRollAndSettingsRepositories(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	rolls := NewSlotRollRepository(testDB.DB)
	settings := NewSettingsRepository(testDB.DB)
	ctx := context.Background()

	t.Run("rolls are pruned to keep", func(t *testing.T) {
		base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
		for i := 0; i < entities.SlotMaxRolls+2; i++ {
			require.NoError(t, rolls.Record(ctx, 1, base.Add(time.Duration(i)*time.Second), entities.SlotMaxRolls))
		}

		recent, err := rolls.GetRecent(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, recent, entities.SlotMaxRolls)
		assert.True(t, base.Add(time.Duration(entities.SlotMaxRolls+1)*time.Second).Equal(recent[0]))
	})

	t.Run("slot switch and helpers", func(t *testing.T) {
		enabled, err := settings.IsSlotEnabled(ctx)
		require.NoError(t, err)
		assert.True(t, enabled)

		require.NoError(t, settings.SetSlotEnabled(ctx, false))
		enabled, err = settings.IsSlotEnabled(ctx)
		require.NoError(t, err)
		assert.False(t, enabled)

		require.NoError(t, settings.AddHelper(ctx, 7))
		require.NoError(t, settings.AddHelper(ctx, 7))
		helper, err := settings.IsHelper(ctx, 7)
		require.NoError(t, err)
		assert.True(t, helper)

		require.NoError(t, settings.RemoveHelper(ctx, 7))
		helper, err = settings.IsHelper(ctx, 7)
		require.NoError(t, err)
		assert.False(t, helper)
	})
}
