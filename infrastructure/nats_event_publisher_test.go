package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"economy/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	subject string
	data    []byte
}

type fakeMessagePublisher struct {
	messages []capturedMessage
	err      error
}

func (f *fakeMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, capturedMessage{subject: subject, data: data})
	return nil
}

func TestNATSEventPublisher_Envelope(t *testing.T) {
	bus := &fakeMessagePublisher{}
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())
	fixed := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	publisher.now = func() time.Time { return fixed }

	event := events.BetPlacedEvent{PollID: 3, UserID: 4, OptionIdx: 1, Amount: 50, Stake: 80}
	require.NoError(t, publisher.Publish(event))

	require.Len(t, bus.messages, 1)
	assert.Equal(t, "economy.bet_placed", bus.messages[0].subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(bus.messages[0].data, &envelope))
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)
	assert.Equal(t, "bet_placed", envelope.EventType)
	assert.Equal(t, "economy", envelope.SourceService)
	assert.True(t, fixed.Equal(envelope.Timestamp))

	var payload events.BetPlacedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event, payload)
}

func TestNATSEventPublisher_LocalHandlers(t *testing.T) {
	bus := &fakeMessagePublisher{err: errors.New("nats: no response from stream")}
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

	var received []events.Event
	publisher.RegisterLocalHandler(events.EventTypePollSettled, func(ctx context.Context, event events.Event) error {
		received = append(received, event)
		return nil
	})
	publisher.RegisterLocalHandler(events.EventTypePollSettled, func(ctx context.Context, event events.Event) error {
		return errors.New("handler failed")
	})

	settled := events.PollSettledEvent{PollID: 9}
	require.NoError(t, publisher.Publish(settled), "missing stream is not an error")
	require.NoError(t, publisher.Publish(events.SlotRolledEvent{UserID: 1}))

	assert.Equal(t, []events.Event{settled}, received)
}

func TestNATSEventPublisher_PublishError(t *testing.T) {
	publisher := NewNATSEventPublisher(&fakeMessagePublisher{err: errors.New("connection closed")}, NewEventSubjectMapper())
	err := publisher.Publish(events.SlotRolledEvent{UserID: 1})
	assert.Error(t, err)
}

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	subjects := mapper.GetAllSubjects()
	assert.Len(t, subjects, len(allEventTypes))
	assert.Contains(t, subjects, "economy.giveaway_finalized")

	for _, subject := range subjects {
		eventType := mapper.MapSubjectToEventType(subject)
		assert.Contains(t, allEventTypes, eventType)
	}
}
