package po

import (
	"encoding/json"
	"time"

	"ordersvc/domain/shared"

	"github.com/google/uuid"
)

// OutboxEventPO is one row of the transactional outbox. Rows are written in
// the transaction of the order change and relayed later by OutboxWorker.
type OutboxEventPO struct {
	ID          string    `gorm:"primaryKey;size:64"`
	AggregateID string    `gorm:"size:64;index;not null"`
	EventType   string    `gorm:"size:100;index;not null"` // e.g. "order.placed", "order.payment_mismatch"
	Payload     string    `gorm:"type:text;not null"`      // JSON serialized event data
	Status      string    `gorm:"size:20;index;default:PENDING;not null"`
	RetryCount  int       `gorm:"default:0;not null"`
	LastError   string    `gorm:"size:512"`
	CreatedAt   time.Time `gorm:"index;not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (OutboxEventPO) TableName() string {
	return "outbox_events"
}

// EventStatus is the relay state of an outbox row.
type EventStatus string

const (
	EventStatusPending    EventStatus = "PENDING"
	EventStatusProcessing EventStatus = "PROCESSING"
	EventStatusPublished  EventStatus = "PUBLISHED"
	EventStatusFailed     EventStatus = "FAILED"
)

func FromDomainEvent(event shared.DomainEvent) (*OutboxEventPO, error) {
	payload, err := SerializeEvent(event)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &OutboxEventPO{
		ID:          uuid.NewString(),
		AggregateID: event.GetAggregateID(),
		EventType:   event.EventName(),
		Payload:     string(payload),
		Status:      string(EventStatusPending),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SerializeEvent renders the common envelope plus the event specific
// payload under "data".
func SerializeEvent(event shared.DomainEvent) ([]byte, error) {
	eventData := map[string]any{
		"event_name":   event.EventName(),
		"aggregate_id": event.GetAggregateID(),
		"occurred_on":  event.OccurredOn().UTC(),
	}
	if p, ok := event.(shared.EventPayloader); ok {
		eventData["data"] = p.Payload()
	}
	return json.Marshal(eventData)
}

// ToEventData decodes the stored envelope.
func (p *OutboxEventPO) ToEventData() (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(p.Payload), &data); err != nil {
		return nil, err
	}
	return data, nil
}
