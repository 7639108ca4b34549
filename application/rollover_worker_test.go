package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubRollover struct {
	rolled  bool
	err     error
	checked []time.Time
}

func (s *stubRollover) CheckAndRollover(ctx context.Context, now time.Time) (bool, error) {
	s.checked = append(s.checked, now)
	return s.rolled, s.err
}

func (s *stubRollover) RecomputeArchivedTotals(ctx context.Context) error { return nil }

func (s *stubRollover) ArchivedTotal(userID int64) int64 { return 0 }

func TestRolloverWorker_RunOnce(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Skip("tzdata not available")
	}
	now := time.Date(2026, 4, 30, 22, 30, 0, 0, time.UTC)

	t.Run("checks in configured location", func(t *testing.T) {
		rollover := &stubRollover{rolled: true}
		refresher := &countingRefresher{}
		w := NewRolloverWorker(rollover, refresher, loc, 0)
		w.now = func() time.Time { return now }

		assert.True(t, w.RunOnce(context.Background()))
		if assert.Len(t, rollover.checked, 1) {
			assert.Equal(t, 1, rollover.checked[0].Day(), "already May 1st in Moscow")
		}
		assert.Equal(t, 1, refresher.Count())
	})

	t.Run("no rollover leaves leaderboard alone", func(t *testing.T) {
		refresher := &countingRefresher{}
		w := NewRolloverWorker(&stubRollover{}, refresher, loc, 0)
		w.now = func() time.Time { return now }

		assert.False(t, w.RunOnce(context.Background()))
		assert.Zero(t, refresher.Count())
	})

	t.Run("errors are swallowed", func(t *testing.T) {
		w := NewRolloverWorker(&stubRollover{err: errors.New("bolt closed")}, nil, nil, 0)
		assert.False(t, w.RunOnce(context.Background()))
	})
}
