package testhelpers

import (
	"context"

	"economy/domain/events"
	"economy/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockUnitOfWork hands out preconfigured repository mocks. Begin, Commit and
// Rollback are recorded so tests can assert on the transaction lifecycle.
type MockUnitOfWork struct {
	mock.Mock

	UserRepo           *MockUserRepository
	BalanceHistoryRepo *MockBalanceHistoryRepository
	PollRepo           *MockPollRepository
	BetRepo            *MockBetRepository
	SlotRollRepo       *MockSlotRollRepository
	SettingsRepo       *MockSettingsRepository
	GiveawayRepo       *MockGiveawayRepository
	Publisher          *MockEventPublisher

	Committed  bool
	RolledBack bool
}

// NewMockUnitOfWork creates a unit of work with fresh repository mocks
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		UserRepo:           &MockUserRepository{},
		BalanceHistoryRepo: &MockBalanceHistoryRepository{},
		PollRepo:           &MockPollRepository{},
		BetRepo:            &MockBetRepository{},
		SlotRollRepo:       &MockSlotRollRepository{},
		SettingsRepo:       &MockSettingsRepository{},
		GiveawayRepo:       &MockGiveawayRepository{},
		Publisher:          &MockEventPublisher{},
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	return nil
}

func (m *MockUnitOfWork) Commit() error {
	m.Committed = true
	return nil
}

func (m *MockUnitOfWork) Rollback() error {
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

func (m *MockUnitOfWork) UserRepository() interfaces.UserRepository { return m.UserRepo }

func (m *MockUnitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	return m.BalanceHistoryRepo
}

func (m *MockUnitOfWork) PollRepository() interfaces.PollRepository { return m.PollRepo }

func (m *MockUnitOfWork) BetRepository() interfaces.BetRepository { return m.BetRepo }

func (m *MockUnitOfWork) SlotRollRepository() interfaces.SlotRollRepository { return m.SlotRollRepo }

func (m *MockUnitOfWork) SettingsRepository() interfaces.SettingsRepository { return m.SettingsRepo }

func (m *MockUnitOfWork) GiveawayRepository() interfaces.GiveawayRepository { return m.GiveawayRepo }

func (m *MockUnitOfWork) EventBus() interfaces.EventPublisher { return m.Publisher }

// AssertExpectations verifies every repository mock
func (m *MockUnitOfWork) AssertExpectations(t mock.TestingT) {
	m.UserRepo.AssertExpectations(t)
	m.BalanceHistoryRepo.AssertExpectations(t)
	m.PollRepo.AssertExpectations(t)
	m.BetRepo.AssertExpectations(t)
	m.SlotRollRepo.AssertExpectations(t)
	m.SettingsRepo.AssertExpectations(t)
	m.GiveawayRepo.AssertExpectations(t)
	m.Publisher.AssertExpectations(t)
}

// ExpectBalanceRecord allows any balance history record and its event
func (m *MockUnitOfWork) ExpectBalanceRecord() {
	m.BalanceHistoryRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
	m.Publisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		return e.Type() == events.EventTypeBalanceChange
	})).Return(nil)
}

// ExpectEvent allows a published event of the given type
func (m *MockUnitOfWork) ExpectEvent(eventType events.EventType) {
	m.Publisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		return e.Type() == eventType
	})).Return(nil)
}

// MockUnitOfWorkFactory returns the same unit of work on every Create
type MockUnitOfWorkFactory struct {
	UoW *MockUnitOfWork
}

// NewMockUnitOfWorkFactory wraps uow
func NewMockUnitOfWorkFactory(uow *MockUnitOfWork) *MockUnitOfWorkFactory {
	return &MockUnitOfWorkFactory{UoW: uow}
}

func (f *MockUnitOfWorkFactory) Create() interfaces.UnitOfWork {
	f.UoW.Committed = false
	f.UoW.RolledBack = false
	return f.UoW
}
