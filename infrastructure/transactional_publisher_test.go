package infrastructure

import (
	"context"
	"errors"
	"testing"

	"economy/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	PublishedEvents []events.Event
	PublishError    error
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

func TestTransactionalPublisher_FlushPublishesInOrder(t *testing.T) {
	real := &MockEventPublisher{}
	publisher := NewTransactionalPublisher(real)

	first := events.BalanceChangeEvent{UserID: 1, NewBalance: 10}
	second := events.SlotRolledEvent{UserID: 1}
	require.NoError(t, publisher.Publish(first))
	require.NoError(t, publisher.Publish(second))

	assert.Empty(t, real.PublishedEvents, "nothing leaves before flush")
	assert.Equal(t, 2, publisher.Pending())

	require.NoError(t, publisher.Flush(context.Background()))
	assert.Equal(t, []events.Event{first, second}, real.PublishedEvents)
	assert.Zero(t, publisher.Pending())
}

func TestTransactionalPublisher_Discard(t *testing.T) {
	real := &MockEventPublisher{}
	publisher := NewTransactionalPublisher(real)

	require.NoError(t, publisher.Publish(events.BalanceChangeEvent{UserID: 1}))
	publisher.Discard()
	require.NoError(t, publisher.Flush(context.Background()))

	assert.Empty(t, real.PublishedEvents)
}

func TestTransactionalPublisher_FlushSurvivesFailures(t *testing.T) {
	real := &MockEventPublisher{PublishError: errors.New("nats down")}
	publisher := NewTransactionalPublisher(real)

	require.NoError(t, publisher.Publish(events.BalanceChangeEvent{UserID: 1}))
	require.NoError(t, publisher.Flush(context.Background()))
	assert.Zero(t, publisher.Pending())
}
