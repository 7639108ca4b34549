package application

import (
	"context"
	"testing"

	"economy/domain/entities"
	"economy/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedBalancesFromRatings(t *testing.T) {
	ctx := context.Background()
	ratings := &fakeRatings{ranking: []entities.RatingEntry{
		{UserID: 1, TotalRating: 120},
		{UserID: 2, TotalRating: -5},
	}}

	t.Run("seeds empty table", func(t *testing.T) {
		uow := testhelpers.NewMockUnitOfWork()
		uow.UserRepo.On("Count", ctx).Return(int64(0), nil)
		uow.UserRepo.On("SeedBalances", ctx, map[int64]int64{1: 120, 2: -5}).Return(2, nil)

		seeded, err := SeedBalancesFromRatings(ctx, testhelpers.NewMockUnitOfWorkFactory(uow), ratings)

		require.NoError(t, err)
		assert.Equal(t, 2, seeded)
		assert.True(t, uow.Committed)
	})

	t.Run("skips populated table", func(t *testing.T) {
		uow := testhelpers.NewMockUnitOfWork()
		uow.UserRepo.On("Count", ctx).Return(int64(3), nil)

		seeded, err := SeedBalancesFromRatings(ctx, testhelpers.NewMockUnitOfWorkFactory(uow), ratings)

		require.NoError(t, err)
		assert.Zero(t, seeded)
		uow.UserRepo.AssertNotCalled(t, "SeedBalances", ctx, map[int64]int64{1: 120, 2: -5})
	})
}
