package repository

import (
	"context"
	"testing"

	"economy/domain/events"
	"economy/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	pending   []events.Event
	flushed   []events.Event
	discarded int
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

func (p *recordingPublisher) Flush(ctx context.Context) error {
	p.flushed = append(p.flushed, p.pending...)
	p.pending = nil
	return nil
}

func (p *recordingPublisher) Discard() {
	p.pending = nil
	p.discarded++
}

func TestUnitOfWork(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	t.Run("commit persists and flushes", func(t *testing.T) {
		testDB.Truncate(t)
		publisher := &recordingPublisher{}
		uow := CreateTestUnitOfWork(testDB.DB, publisher)

		require.NoError(t, uow.Begin(ctx))
		_, err := uow.UserRepository().AdjustBalance(ctx, 1, 40)
		require.NoError(t, err)
		require.NoError(t, uow.EventBus().Publish(events.BalanceChangeEvent{UserID: 1, NewBalance: 40}))
		require.NoError(t, uow.Commit())
		require.NoError(t, uow.Rollback(), "rollback after commit is a no-op")

		assert.Len(t, publisher.flushed, 1)
		assert.Zero(t, publisher.discarded)

		balance, err := NewUserRepository(testDB.DB).GetBalance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(40), balance)
	})

	t.Run("rollback discards writes and events", func(t *testing.T) {
		testDB.Truncate(t)
		publisher := &recordingPublisher{}
		uow := CreateTestUnitOfWork(testDB.DB, publisher)

		require.NoError(t, uow.Begin(ctx))
		_, err := uow.UserRepository().AdjustBalance(ctx, 1, 40)
		require.NoError(t, err)
		require.NoError(t, uow.EventBus().Publish(events.BalanceChangeEvent{UserID: 1, NewBalance: 40}))
		require.NoError(t, uow.Rollback())

		assert.Empty(t, publisher.flushed)
		assert.Equal(t, 1, publisher.discarded)

		balance, err := NewUserRepository(testDB.DB).GetBalance(ctx, 1)
		require.NoError(t, err)
		assert.Zero(t, balance)
	})

	t.Run("repositories require begin", func(t *testing.T) {
		uow := CreateTestUnitOfWork(testDB.DB, &recordingPublisher{})
		assert.Panics(t, func() { uow.UserRepository() })
	})
}
