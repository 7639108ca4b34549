package infrastructure

import (
	"strings"

	"economy/domain/events"
)

// SubjectPrefix namespaces every domain event subject
const SubjectPrefix = "economy"

// DomainEventStream is the JetStream stream holding domain events
const DomainEventStream = "economy_events"

var allEventTypes = []events.EventType{
	events.EventTypeBalanceChange,
	events.EventTypeReactionScored,
	events.EventTypeRatingChanged,
	events.EventTypeBetPlaced,
	events.EventTypePollStateChange,
	events.EventTypePollSettled,
	events.EventTypeSlotRolled,
	events.EventTypeGiveawayFinalized,
	events.EventTypeRatingArchived,
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to economy.<event type>
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return SubjectPrefix + "." + string(event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	return events.EventType(strings.TrimPrefix(subject, SubjectPrefix+"."))
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	subjects := make([]string, 0, len(allEventTypes))
	for _, eventType := range allEventTypes {
		subjects = append(subjects, SubjectPrefix+"."+string(eventType))
	}
	return subjects
}
