package testhelpers

import (
	"context"
	"time"

	"economy/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockMembershipDirectory is a mock implementation of MembershipDirectory
type MockMembershipDirectory struct {
	mock.Mock
}

func (m *MockMembershipDirectory) GetJoinDate(ctx context.Context, userID int64) (*time.Time, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

// MockArchiveStore is a mock implementation of ArchiveStore
type MockArchiveStore struct {
	mock.Mock
}

func (m *MockArchiveStore) SaveArchive(ctx context.Context, archive *entities.RatingArchive) error {
	args := m.Called(ctx, archive)
	return args.Error(0)
}

func (m *MockArchiveStore) ListPeriods(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockArchiveStore) GetArchive(ctx context.Context, period string) (*entities.RatingArchive, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RatingArchive), args.Error(1)
}

// MockLeaderboard is a mock implementation of Leaderboard
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) Replace(ctx context.Context, entries []entities.RatingEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockLeaderboard) Top(ctx context.Context, n int) ([]entities.RatingEntry, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.RatingEntry), args.Error(1)
}

// MemoryEmojiWeightStore keeps weights in a map
type MemoryEmojiWeightStore struct {
	Weights map[string]int64
}

// NewMemoryEmojiWeightStore creates a store seeded with weights
func NewMemoryEmojiWeightStore(weights map[string]int64) *MemoryEmojiWeightStore {
	if weights == nil {
		weights = make(map[string]int64)
	}
	return &MemoryEmojiWeightStore{Weights: weights}
}

func (s *MemoryEmojiWeightStore) LoadWeights(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(s.Weights))
	for k, v := range s.Weights {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryEmojiWeightStore) PutWeight(ctx context.Context, key string, weight int64) error {
	s.Weights[key] = weight
	return nil
}

func (s *MemoryEmojiWeightStore) DeleteWeight(ctx context.Context, key string) error {
	delete(s.Weights, key)
	return nil
}
