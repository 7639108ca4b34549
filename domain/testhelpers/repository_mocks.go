package testhelpers

import (
	"context"
	"time"

	"economy/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID int64) (*entities.UserAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserAccount), args.Error(1)
}

func (m *MockUserRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) AdjustBalance(ctx context.Context, userID int64, delta int64) (int64, error) {
	args := m.Called(ctx, userID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, userID int64, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) SeedBalances(ctx context.Context, balances map[int64]int64) (int, error) {
	args := m.Called(ctx, balances)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) MarkJoined(ctx context.Context, userID int64, joinedAt time.Time) error {
	args := m.Called(ctx, userID, joinedAt)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementLeftCount(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

// MockPollRepository is a mock implementation of PollRepository
type MockPollRepository struct {
	mock.Mock
}

func (m *MockPollRepository) Create(ctx context.Context, poll *entities.Poll, options []string) error {
	args := m.Called(ctx, poll, options)
	return args.Error(0)
}

func (m *MockPollRepository) GetByID(ctx context.Context, pollID int64) (*entities.Poll, error) {
	args := m.Called(ctx, pollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Poll), args.Error(1)
}

func (m *MockPollRepository) GetByIDForUpdate(ctx context.Context, pollID int64) (*entities.Poll, error) {
	args := m.Called(ctx, pollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Poll), args.Error(1)
}

func (m *MockPollRepository) GetOptions(ctx context.Context, pollID int64) ([]*entities.PollOption, error) {
	args := m.Called(ctx, pollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PollOption), args.Error(1)
}

func (m *MockPollRepository) GetOption(ctx context.Context, pollID int64, idx int) (*entities.PollOption, error) {
	args := m.Called(ctx, pollID, idx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PollOption), args.Error(1)
}

func (m *MockPollRepository) UpdateStatus(ctx context.Context, pollID int64, status entities.PollStatus, winnerIdx *int) error {
	args := m.Called(ctx, pollID, status, winnerIdx)
	return args.Error(0)
}

func (m *MockPollRepository) SetMessage(ctx context.Context, pollID int64, chatID, messageID int64) error {
	args := m.Called(ctx, pollID, chatID, messageID)
	return args.Error(0)
}

func (m *MockPollRepository) ListByStatus(ctx context.Context, status entities.PollStatus) ([]*entities.Poll, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Poll), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Get(ctx context.Context, pollID, userID int64) (*entities.Bet, error) {
	args := m.Called(ctx, pollID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) AddStake(ctx context.Context, pollID, userID int64, optionIdx int, amount int64) (*entities.Bet, error) {
	args := m.Called(ctx, pollID, userID, optionIdx, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByPoll(ctx context.Context, pollID int64) ([]*entities.Bet, error) {
	args := m.Called(ctx, pollID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

// MockSlotRollRepository is a mock implementation of SlotRollRepository
type MockSlotRollRepository struct {
	mock.Mock
}

func (m *MockSlotRollRepository) GetRecent(ctx context.Context, userID int64, limit int) ([]time.Time, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockSlotRollRepository) Record(ctx context.Context, userID int64, at time.Time, keep int) error {
	args := m.Called(ctx, userID, at, keep)
	return args.Error(0)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) IsSlotEnabled(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettingsRepository) SetSlotEnabled(ctx context.Context, enabled bool) error {
	args := m.Called(ctx, enabled)
	return args.Error(0)
}

func (m *MockSettingsRepository) IsHelper(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettingsRepository) AddHelper(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSettingsRepository) RemoveHelper(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockGiveawayRepository is a mock implementation of GiveawayRepository
type MockGiveawayRepository struct {
	mock.Mock
}

func (m *MockGiveawayRepository) GetSchedule(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockGiveawayRepository) ReplaceSchedule(ctx context.Context, at time.Time) error {
	args := m.Called(ctx, at)
	return args.Error(0)
}

func (m *MockGiveawayRepository) ClearSchedule(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGiveawayRepository) CreateRound(ctx context.Context, round *entities.GiveawayRound) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockGiveawayRepository) GetRoundByMessageID(ctx context.Context, messageID int64) (*entities.GiveawayRound, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GiveawayRound), args.Error(1)
}

func (m *MockGiveawayRepository) GetRoundByMessageIDForUpdate(ctx context.Context, messageID int64) (*entities.GiveawayRound, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GiveawayRound), args.Error(1)
}

func (m *MockGiveawayRepository) GetOpenRounds(ctx context.Context) ([]*entities.GiveawayRound, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GiveawayRound), args.Error(1)
}

func (m *MockGiveawayRepository) AddParticipant(ctx context.Context, participant *entities.GiveawayParticipant) (bool, error) {
	args := m.Called(ctx, participant)
	return args.Bool(0), args.Error(1)
}

func (m *MockGiveawayRepository) GetParticipants(ctx context.Context, roundID int64) ([]*entities.GiveawayParticipant, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GiveawayParticipant), args.Error(1)
}

func (m *MockGiveawayRepository) MarkFinalized(ctx context.Context, roundID int64, at time.Time) error {
	args := m.Called(ctx, roundID, at)
	return args.Error(0)
}
