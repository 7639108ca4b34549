package services

import (
	"context"
	"errors"
	"testing"

	"economy/domain/entities"
	"economy/domain/events"
	"economy/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMarketFixture() (*marketService, *testhelpers.MockUnitOfWork) {
	uow := testhelpers.NewMockUnitOfWork()
	return NewMarketService(testhelpers.NewMockUnitOfWorkFactory(uow)).(*marketService), uow
}

func TestMarketService_CreatePoll(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		svc, uow := newMarketFixture()
		uow.PollRepo.On("Create", ctx, mock.AnythingOfType("*entities.Poll"), []string{"Yes", "No"}).
			Run(func(args mock.Arguments) {
				args.Get(1).(*entities.Poll).ID = 7
			}).Return(nil)

		view, err := svc.CreatePoll(ctx, "  Will it rain?  ", []string{"Yes", " No "})

		require.NoError(t, err)
		assert.Equal(t, int64(7), view.Poll.ID)
		assert.Equal(t, "Will it rain?", view.Poll.Question)
		assert.Equal(t, entities.PollStatusOpen, view.Poll.Status)
		require.Len(t, view.Options, 2)
		assert.Equal(t, 1, view.Options[1].Idx)
		assert.True(t, uow.Committed)
	})

	for name, tc := range map[string]struct {
		question string
		options  []string
	}{
		"empty question": {"", []string{"a", "b"}},
		"single option":  {"q", []string{"a"}},
		"blank option":   {"q", []string{"a", " "}},
	} {
		t.Run(name, func(t *testing.T) {
			svc, uow := newMarketFixture()
			_, err := svc.CreatePoll(ctx, tc.question, tc.options)
			assert.True(t, entities.IsValidation(err))
			uow.AssertExpectations(t)
		})
	}
}

func TestMarketService_PlaceBet(t *testing.T) {
	ctx := context.Background()
	openPoll := &entities.Poll{ID: 1, Status: entities.PollStatusOpen}
	option := &entities.PollOption{PollID: 1, Idx: 0, Text: "X"}

	t.Run("new stake debits the ledger", func(t *testing.T) {
		svc, uow := newMarketFixture()
		uow.PollRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(openPoll, nil)
		uow.PollRepo.On("GetOption", ctx, int64(1), 0).Return(option, nil)
		uow.BetRepo.On("Get", ctx, int64(1), int64(5)).Return(nil, nil)
		uow.UserRepo.On("DeductBalance", ctx, int64(5), int64(100)).Return(int64(50), nil)
		uow.BalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *entities.BalanceHistory) bool {
			return h.TransactionType == entities.TransactionTypeBetPlaced && h.ChangeAmount == -100
		})).Return(nil)
		uow.BetRepo.On("AddStake", ctx, int64(1), int64(5), 0, int64(100)).
			Return(&entities.Bet{PollID: 1, UserID: 5, OptionIdx: 0, Amount: 100}, nil)
		uow.ExpectEvent(events.EventTypeBalanceChange)
		uow.ExpectEvent(events.EventTypeBetPlaced)

		bet, err := svc.PlaceBet(ctx, 1, 5, 0, 100)

		require.NoError(t, err)
		assert.Equal(t, int64(100), bet.Amount)
		assert.True(t, uow.Committed)
		uow.AssertExpectations(t)
	})

	t.Run("top up on the same option", func(t *testing.T) {
		svc, uow := newMarketFixture()
		uow.PollRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(openPoll, nil)
		uow.PollRepo.On("GetOption", ctx, int64(1), 0).Return(option, nil)
		uow.BetRepo.On("Get", ctx, int64(1), int64(5)).Return(&entities.Bet{PollID: 1, UserID: 5, OptionIdx: 0, Amount: 100}, nil)
		uow.UserRepo.On("DeductBalance", ctx, int64(5), int64(20)).Return(int64(30), nil)
		uow.ExpectBalanceRecord()
		uow.BetRepo.On("AddStake", ctx, int64(1), int64(5), 0, int64(20)).
			Return(&entities.Bet{PollID: 1, UserID: 5, OptionIdx: 0, Amount: 120}, nil)
		uow.ExpectEvent(events.EventTypeBetPlaced)

		bet, err := svc.PlaceBet(ctx, 1, 5, 0, 20)

		require.NoError(t, err)
		assert.Equal(t, int64(120), bet.Amount)
	})

	t.Run("option switch is rejected", func(t *testing.T) {
		svc, uow := newMarketFixture()
		uow.PollRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(openPoll, nil)
		uow.PollRepo.On("GetOption", ctx, int64(1), 0).Return(option, nil)
		uow.BetRepo.On("Get", ctx, int64(1), int64(5)).Return(&entities.Bet{OptionIdx: 1, Amount: 100}, nil)

		_, err := svc.PlaceBet(ctx, 1, 5, 0, 20)

		assert.True(t, entities.IsValidation(err))
		assert.False(t, uow.Committed)
		uow.UserRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		svc, uow := newMarketFixture()
		uow.PollRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(openPoll, nil)
		uow.PollRepo.On("GetOption", ctx, int64(1), 0).Return(option, nil)
		uow.BetRepo.On("Get", ctx, int64(1), int64(5)).Return(nil, nil)
		uow.UserRepo.On("DeductBalance", ctx, int64(5), int64(500)).
			Return(int64(0), &entities.InsufficientFundsError{Balance: 100, Required: 500})

		_, err := svc.PlaceBet(ctx, 1, 5, 0, 500)

		var insufficient *entities.InsufficientFundsError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, int64(100), insufficient.Balance)
		uow.BetRepo.AssertNotCalled(t, "AddStake", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("user without an account has nothing to stake", func(t *testing.T) {
		svc, uow := newMarketFixture()
		uow.PollRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(openPoll, nil)
		uow.PollRepo.On("GetOption", ctx, int64(1), 0).Return(option, nil)
		uow.BetRepo.On("Get", ctx, int64(1), int64(42)).Return(nil, nil)
		uow.UserRepo.On("DeductBalance", ctx, int64(42), int64(10)).
			Return(int64(0), &entities.NotFoundError{Resource: "user", ID: int64(42)})

		_, err := svc.PlaceBet(ctx, 1, 42, 0, 10)

		var insufficient *entities.InsufficientFundsError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, int64(0), insufficient.Balance)
		assert.Equal(t, int64(10), insufficient.Required)
		assert.False(t, entities.IsNotFound(err))
		uow.BetRepo.AssertNotCalled(t, "AddStake", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("closed poll", func(t *testing.T) {
		svc, uow := newMarketFixture()
		uow.PollRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(&entities.Poll{ID: 1, Status: entities.PollStatusClosed}, nil)

		_, err := svc.PlaceBet(ctx, 1, 5, 0, 10)

		assert.ErrorIs(t, err, entities.ErrPollNotOpen)
	})

	t.Run("unknown option", func(t *testing.T) {
		svc, uow := newMarketFixture()
		uow.PollRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(openPoll, nil)
		uow.PollRepo.On("GetOption", ctx, int64(1), 9).Return(nil, nil)

		_, err := svc.PlaceBet(ctx, 1, 5, 9, 10)

		assert.True(t, entities.IsNotFound(err))
	})

	t.Run("non-positive amount", func(t *testing.T) {
		svc, _ := newMarketFixture()
		_, err := svc.PlaceBet(ctx, 1, 5, 0, 0)
		assert.True(t, entities.IsValidation(err))
	})
}

func TestMarketService_SettleScenarioC(t *testing.T) {
	ctx := context.Background()
	svc, uow := newMarketFixture()

	uow.PollRepo.On("GetByIDForUpdate", ctx, int64(3)).Return(&entities.Poll{ID: 3, Status: entities.PollStatusClosed}, nil)
	uow.PollRepo.On("GetOption", ctx, int64(3), 0).Return(&entities.PollOption{PollID: 3, Idx: 0}, nil)
	uow.BetRepo.On("GetByPoll", ctx, int64(3)).Return([]*entities.Bet{
		{PollID: 3, UserID: 10, OptionIdx: 0, Amount: 100},
		{PollID: 3, UserID: 11, OptionIdx: 1, Amount: 300},
	}, nil)
	uow.UserRepo.On("AdjustBalance", ctx, int64(10), int64(400)).Return(int64(400), nil)
	uow.BalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *entities.BalanceHistory) bool {
		return h.TransactionType == entities.TransactionTypeBetPayout && h.ChangeAmount == 400
	})).Return(nil)
	winner := 0
	uow.PollRepo.On("UpdateStatus", ctx, int64(3), entities.PollStatusSettled, &winner).Return(nil)
	uow.ExpectEvent(events.EventTypeBalanceChange)
	uow.ExpectEvent(events.EventTypePollStateChange)
	uow.ExpectEvent(events.EventTypePollSettled)

	settlement, err := svc.Settle(ctx, 3, 0)

	require.NoError(t, err)
	require.Len(t, settlement.Payouts, 1)
	assert.Equal(t, int64(400), settlement.Payouts[0].Amount)
	assert.Zero(t, settlement.Remainder)
	assert.True(t, uow.Committed)
	uow.AssertExpectations(t)
}

func TestMarketService_SettleGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("open poll cannot skip closing", func(t *testing.T) {
		svc, uow := newMarketFixture()
		uow.PollRepo.On("GetByIDForUpdate", ctx, int64(3)).Return(&entities.Poll{ID: 3, Status: entities.PollStatusOpen}, nil)
		_, err := svc.Settle(ctx, 3, 0)
		assert.ErrorIs(t, err, entities.ErrPollNotClosed)
	})

	t.Run("second settle is rejected", func(t *testing.T) {
		svc, uow := newMarketFixture()
		uow.PollRepo.On("GetByIDForUpdate", ctx, int64(3)).Return(&entities.Poll{ID: 3, Status: entities.PollStatusSettled}, nil)
		_, err := svc.Settle(ctx, 3, 0)
		assert.ErrorIs(t, err, entities.ErrPollSettled)
	})

	t.Run("unknown winning option", func(t *testing.T) {
		svc, uow := newMarketFixture()
		uow.PollRepo.On("GetByIDForUpdate", ctx, int64(3)).Return(&entities.Poll{ID: 3, Status: entities.PollStatusClosed}, nil)
		uow.PollRepo.On("GetOption", ctx, int64(3), 5).Return(nil, nil)
		_, err := svc.Settle(ctx, 3, 5)
		assert.True(t, entities.IsNotFound(err))
	})

	t.Run("no winning stake forfeits the pool", func(t *testing.T) {
		svc, uow := newMarketFixture()
		uow.PollRepo.On("GetByIDForUpdate", ctx, int64(3)).Return(&entities.Poll{ID: 3, Status: entities.PollStatusClosed}, nil)
		uow.PollRepo.On("GetOption", ctx, int64(3), 1).Return(&entities.PollOption{PollID: 3, Idx: 1}, nil)
		uow.BetRepo.On("GetByPoll", ctx, int64(3)).Return([]*entities.Bet{{UserID: 1, OptionIdx: 0, Amount: 50}}, nil)
		uow.PollRepo.On("UpdateStatus", ctx, int64(3), entities.PollStatusSettled, mock.Anything).Return(nil)
		uow.ExpectEvent(events.EventTypePollStateChange)
		uow.ExpectEvent(events.EventTypePollSettled)

		settlement, err := svc.Settle(ctx, 3, 1)

		require.NoError(t, err)
		assert.Empty(t, settlement.Payouts)
		assert.Equal(t, int64(50), settlement.Remainder)
		uow.UserRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMarketService_ClosePoll(t *testing.T) {
	ctx := context.Background()

	svc, uow := newMarketFixture()
	uow.PollRepo.On("GetByIDForUpdate", ctx, int64(3)).Return(&entities.Poll{ID: 3, Status: entities.PollStatusOpen}, nil).Once()
	uow.PollRepo.On("UpdateStatus", ctx, int64(3), entities.PollStatusClosed, (*int)(nil)).Return(nil)
	uow.ExpectEvent(events.EventTypePollStateChange)
	require.NoError(t, svc.ClosePoll(ctx, 3))

	uow.PollRepo.On("GetByIDForUpdate", ctx, int64(3)).Return(&entities.Poll{ID: 3, Status: entities.PollStatusClosed}, nil)
	assert.ErrorIs(t, svc.ClosePoll(ctx, 3), entities.ErrPollNotOpen)
}

func TestMarketService_GetBetNotFound(t *testing.T) {
	ctx := context.Background()
	svc, uow := newMarketFixture()
	uow.BetRepo.On("Get", ctx, int64(1), int64(2)).Return(nil, nil)

	_, err := svc.GetBet(ctx, 1, 2)
	assert.True(t, entities.IsNotFound(err))
}
