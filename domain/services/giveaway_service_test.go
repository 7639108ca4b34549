package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"economy/domain/entities"
	"economy/domain/events"
	"economy/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newGiveawayFixture() (*giveawayService, *testhelpers.MockUnitOfWork, time.Time) {
	uow := testhelpers.NewMockUnitOfWork()
	svc := NewGiveawayService(testhelpers.NewMockUnitOfWorkFactory(uow), 0).(*giveawayService)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	svc.rng = rand.New(rand.NewSource(1))
	return svc, uow, now
}

func TestSplitPool_ConservesPool(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		pool := rng.Int63n(20000)
		n := rng.Intn(40) + 1

		shares := SplitPool(pool, n, rng)

		require.Len(t, shares, n)
		var sum int64
		for _, share := range shares {
			assert.GreaterOrEqual(t, share, int64(0))
			sum += share
		}
		assert.Equal(t, pool, sum, "pool=%d n=%d", pool, n)
	}
}

func TestSplitPool_ScenarioE(t *testing.T) {
	shares := SplitPool(entities.GiveawayPool, 3, rand.New(rand.NewSource(9)))

	require.Len(t, shares, 3)
	assert.Equal(t, entities.GiveawayPool, shares[0]+shares[1]+shares[2])
}

func TestSplitPool_Edges(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Nil(t, SplitPool(100, 0, rng))
	assert.Equal(t, []int64{0, 0}, SplitPool(0, 2, rng))
	assert.Equal(t, []int64{100}, SplitPool(100, 1, rng))
}

func TestGiveawayService_ScheduleNext(t *testing.T) {
	ctx := context.Background()
	svc, uow, now := newGiveawayFixture()
	uow.GiveawayRepo.On("ReplaceSchedule", ctx, mock.MatchedBy(func(at time.Time) bool {
		delay := at.Sub(now)
		return delay >= 60*time.Minute && delay < 720*time.Minute
	})).Return(nil)

	at, err := svc.ScheduleNext(ctx)

	require.NoError(t, err)
	assert.True(t, at.After(now))
	assert.True(t, uow.Committed)
	uow.AssertExpectations(t)
}

func TestGiveawayService_Announce(t *testing.T) {
	ctx := context.Background()
	svc, uow, now := newGiveawayFixture()
	uow.GiveawayRepo.On("CreateRound", ctx, mock.MatchedBy(func(r *entities.GiveawayRound) bool {
		return r.MessageID == 55 && r.State == entities.GiveawayStateOpen &&
			r.ExpiresAt.Equal(now.Add(entities.GiveawayWindow)) && r.Pool == entities.GiveawayPool
	})).Return(nil)
	uow.GiveawayRepo.On("ReplaceSchedule", ctx, mock.AnythingOfType("time.Time")).Return(nil)

	round, err := svc.Announce(ctx, 55, 9, now)

	require.NoError(t, err)
	assert.Equal(t, int64(55), round.MessageID)
	uow.AssertExpectations(t)
}

func TestGiveawayService_Join(t *testing.T) {
	ctx := context.Background()

	t.Run("open window", func(t *testing.T) {
		svc, uow, now := newGiveawayFixture()
		round := &entities.GiveawayRound{ID: 1, MessageID: 55, State: entities.GiveawayStateOpen, ExpiresAt: now.Add(time.Minute)}
		uow.GiveawayRepo.On("GetRoundByMessageIDForUpdate", ctx, int64(55)).Return(round, nil)
		uow.GiveawayRepo.On("AddParticipant", ctx, mock.MatchedBy(func(p *entities.GiveawayParticipant) bool {
			return p.RoundID == 1 && p.UserID == 7
		})).Return(true, nil).Once()
		uow.GiveawayRepo.On("AddParticipant", ctx, mock.Anything).Return(false, nil)

		joined, err := svc.Join(ctx, 55, 7, "alice")
		require.NoError(t, err)
		assert.True(t, joined)

		joined, err = svc.Join(ctx, 55, 7, "alice")
		require.NoError(t, err)
		assert.False(t, joined, "repeat joins are not counted twice")
	})

	t.Run("expired window", func(t *testing.T) {
		svc, uow, now := newGiveawayFixture()
		round := &entities.GiveawayRound{ID: 1, MessageID: 55, State: entities.GiveawayStateOpen, ExpiresAt: now}
		uow.GiveawayRepo.On("GetRoundByMessageIDForUpdate", ctx, int64(55)).Return(round, nil)

		_, err := svc.Join(ctx, 55, 7, "alice")
		assert.ErrorIs(t, err, entities.ErrRoundClosed)
	})

	t.Run("unknown round", func(t *testing.T) {
		svc, uow, _ := newGiveawayFixture()
		uow.GiveawayRepo.On("GetRoundByMessageIDForUpdate", ctx, int64(56)).Return(nil, nil)

		_, err := svc.Join(ctx, 56, 7, "alice")
		assert.True(t, entities.IsNotFound(err))
	})
}

func TestGiveawayService_Finalize(t *testing.T) {
	ctx := context.Background()

	t.Run("splits the pool", func(t *testing.T) {
		svc, uow, now := newGiveawayFixture()
		round := &entities.GiveawayRound{ID: 1, MessageID: 55, State: entities.GiveawayStateOpen, Pool: 5000}
		uow.GiveawayRepo.On("GetRoundByMessageIDForUpdate", ctx, int64(55)).Return(round, nil)
		uow.GiveawayRepo.On("GetParticipants", ctx, int64(1)).Return([]*entities.GiveawayParticipant{
			{RoundID: 1, UserID: 1, DisplayName: "a"},
			{RoundID: 1, UserID: 2, DisplayName: "b"},
			{RoundID: 1, UserID: 3, DisplayName: "c"},
		}, nil)
		credited := map[int64]int64{}
		uow.UserRepo.On("AdjustBalance", ctx, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			credited[args.Get(1).(int64)] += args.Get(2).(int64)
		}).Return(int64(0), nil)
		uow.ExpectBalanceRecord()
		uow.GiveawayRepo.On("MarkFinalized", ctx, int64(1), now).Return(nil)
		uow.ExpectEvent(events.EventTypeGiveawayFinalized)

		result, err := svc.Finalize(ctx, 55)

		require.NoError(t, err)
		require.Len(t, result.Shares, 3)
		var sum int64
		for i, share := range result.Shares {
			sum += share.Amount
			assert.Equal(t, share.Amount, credited[share.UserID])
			if i > 0 {
				assert.GreaterOrEqual(t, result.Shares[i-1].Amount, share.Amount)
			}
		}
		assert.Equal(t, int64(5000), sum)
		assert.True(t, result.Round.IsFinalized())
		assert.True(t, uow.Committed)
	})

	t.Run("no participants", func(t *testing.T) {
		svc, uow, now := newGiveawayFixture()
		round := &entities.GiveawayRound{ID: 2, MessageID: 56, State: entities.GiveawayStateOpen, Pool: 5000}
		uow.GiveawayRepo.On("GetRoundByMessageIDForUpdate", ctx, int64(56)).Return(round, nil)
		uow.GiveawayRepo.On("GetParticipants", ctx, int64(2)).Return([]*entities.GiveawayParticipant{}, nil)
		uow.GiveawayRepo.On("MarkFinalized", ctx, int64(2), now).Return(nil)
		uow.ExpectEvent(events.EventTypeGiveawayFinalized)

		result, err := svc.Finalize(ctx, 56)

		require.NoError(t, err)
		assert.Empty(t, result.Shares)
		uow.UserRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already finalized is a no-op", func(t *testing.T) {
		svc, uow, _ := newGiveawayFixture()
		round := &entities.GiveawayRound{ID: 3, MessageID: 57, State: entities.GiveawayStateFinalized}
		uow.GiveawayRepo.On("GetRoundByMessageIDForUpdate", ctx, int64(57)).Return(round, nil)

		result, err := svc.Finalize(ctx, 57)

		require.NoError(t, err)
		assert.True(t, result.AlreadyFinalized)
		uow.GiveawayRepo.AssertNotCalled(t, "GetParticipants", mock.Anything, mock.Anything)
	})
}
