package shared

import (
	"fmt"
	"time"
)

// DomainEvent is something that happened inside an aggregate and that other
// parts of the system may care about.
type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
	GetAggregateID() string
}

// EventPayloader exposes the event specific fields for serialization into
// the outbox.
type EventPayloader interface {
	Payload() map[string]any
}

// ValidateEvent checks the fields every event must carry.
func ValidateEvent(event DomainEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	if event.EventName() == "" {
		return fmt.Errorf("event name cannot be empty")
	}

	if event.GetAggregateID() == "" {
		return fmt.Errorf("aggregate ID cannot be empty")
	}

	if event.OccurredOn().IsZero() {
		return fmt.Errorf("occurred on time cannot be zero")
	}

	return nil
}
