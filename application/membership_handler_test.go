package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"economy/domain/entities"
	"economy/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipHandler_JoinAndLeave(t *testing.T) {
	ctx := context.Background()
	uow := testhelpers.NewMockUnitOfWork()
	h := NewMembershipHandler(testhelpers.NewMockUnitOfWorkFactory(uow), &fakeRatings{}, nil)
	joinedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	uow.UserRepo.On("MarkJoined", ctx, int64(5), joinedAt).Return(nil)
	require.NoError(t, h.HandleJoin(ctx, 5, joinedAt))
	assert.True(t, uow.Committed)

	uow.UserRepo.On("IncrementLeftCount", ctx, int64(5)).Return(nil)
	require.NoError(t, h.HandleLeave(ctx, 5))
	assert.True(t, uow.Committed)

	uow.UserRepo.AssertExpectations(t)
}

func TestMembershipHandler_LeaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	uow := testhelpers.NewMockUnitOfWork()
	h := NewMembershipHandler(testhelpers.NewMockUnitOfWorkFactory(uow), &fakeRatings{}, nil)
	uow.UserRepo.On("IncrementLeftCount", ctx, int64(5)).Return(errors.New("db down"))

	err := h.HandleLeave(ctx, 5)

	assert.Error(t, err)
	assert.False(t, uow.Committed)
	assert.True(t, uow.RolledBack)
}

func TestMembershipHandler_SyncBoosts(t *testing.T) {
	ctx := context.Background()
	ratings := &fakeRatings{
		ranking: []entities.RatingEntry{{UserID: 1}, {UserID: 2}},
		boosts:  map[int64]int64{1: 2},
	}
	refresher := &countingRefresher{}
	h := NewMembershipHandler(testhelpers.NewMockUnitOfWorkFactory(testhelpers.NewMockUnitOfWork()), ratings, refresher)

	changed, err := h.SyncBoosts(ctx, map[int64]int64{2: 1, 3: 4})

	require.NoError(t, err)
	assert.Equal(t, 3, changed)
	assert.Equal(t, map[int64]int64{1: 0, 2: 1, 3: 4}, ratings.boosts, "absent boosters drop to zero")
	assert.Equal(t, 1, refresher.Count())

	changed, err = h.SyncBoosts(ctx, map[int64]int64{2: 1, 3: 4})
	require.NoError(t, err)
	assert.Zero(t, changed)
	assert.Equal(t, 1, refresher.Count())
}

func TestStoredJoinDirectory(t *testing.T) {
	ctx := context.Background()
	live := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stored := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("live date wins", func(t *testing.T) {
		membership := new(testhelpers.MockMembershipDirectory)
		membership.On("GetJoinDate", ctx, int64(1)).Return(&live, nil)
		d := NewStoredJoinDirectory(membership, testhelpers.NewMockUnitOfWorkFactory(testhelpers.NewMockUnitOfWork()))

		joined, err := d.GetJoinDate(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, live, *joined)
	})

	t.Run("falls back to stored date", func(t *testing.T) {
		membership := new(testhelpers.MockMembershipDirectory)
		membership.On("GetJoinDate", ctx, int64(1)).Return(nil, errors.New("unknown member"))
		uow := testhelpers.NewMockUnitOfWork()
		uow.UserRepo.On("GetByID", ctx, int64(1)).Return(&entities.UserAccount{ID: 1, ChatJoined: &stored}, nil)
		d := NewStoredJoinDirectory(membership, testhelpers.NewMockUnitOfWorkFactory(uow))

		joined, err := d.GetJoinDate(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, stored, *joined)
	})

	t.Run("unknown everywhere", func(t *testing.T) {
		uow := testhelpers.NewMockUnitOfWork()
		uow.UserRepo.On("GetByID", ctx, int64(1)).Return(nil, nil)
		d := NewStoredJoinDirectory(nil, testhelpers.NewMockUnitOfWorkFactory(uow))

		joined, err := d.GetJoinDate(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, joined)
	})
}
