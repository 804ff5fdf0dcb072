package infrastructure

import (
	"fmt"

	"raffler/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return m.MapEventTypeToSubject(event.Type())
}

// MapEventTypeToSubject converts an event type to its NATS subject
func (m *EventSubjectMapper) MapEventTypeToSubject(eventType events.EventType) string {
	switch eventType {
	case events.EventTypeLotteryCreated:
		return "lottery.events.created"
	case events.EventTypeEntered:
		return "lottery.events.entered"
	case events.EventTypeWinner:
		return "lottery.events.winner"
	case events.EventTypeFundsWithdrawn:
		return "lottery.events.funds_withdrawn"
	case events.EventTypeLotteryPaused:
		return "lottery.events.paused"
	case events.EventTypeLotteryUnpaused:
		return "lottery.events.unpaused"
	case events.EventTypeFundsReceived:
		return "lottery.events.funds_received"
	default:
		return fmt.Sprintf("lottery.events.unknown.%s", eventType)
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case "lottery.events.created":
		return events.EventTypeLotteryCreated
	case "lottery.events.entered":
		return events.EventTypeEntered
	case "lottery.events.winner":
		return events.EventTypeWinner
	case "lottery.events.funds_withdrawn":
		return events.EventTypeFundsWithdrawn
	case "lottery.events.paused":
		return events.EventTypeLotteryPaused
	case "lottery.events.unpaused":
		return events.EventTypeLotteryUnpaused
	case "lottery.events.funds_received":
		return events.EventTypeFundsReceived
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"lottery.events.created",
		"lottery.events.entered",
		"lottery.events.winner",
		"lottery.events.funds_withdrawn",
		"lottery.events.paused",
		"lottery.events.unpaused",
		"lottery.events.funds_received",
	}
}
