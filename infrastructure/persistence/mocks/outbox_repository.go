package mocks

import (
	"context"
	"sync"

	"ordersvc/domain/shared"
	"ordersvc/pkg/logger"

	"go.uber.org/zap"
)

// MockOutboxRepository keeps saved events in memory so tests can assert on
// what would have been relayed.
type MockOutboxRepository struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (r *MockOutboxRepository) SaveEvent(ctx context.Context, event shared.DomainEvent) error {
	if err := shared.ValidateEvent(event); err != nil {
		return err
	}
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()

	logger.Debug("Outbox event stored",
		zap.String("event_type", event.EventName()),
		zap.String("aggregate_id", event.GetAggregateID()),
	)
	return nil
}

// Events returns a copy of everything saved so far.
func (r *MockOutboxRepository) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]shared.DomainEvent, len(r.events))
	copy(events, r.events)
	return events
}

// EventNames lists the names of the saved events in order.
func (r *MockOutboxRepository) EventNames() []string {
	events := r.Events()
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.EventName()
	}
	return names
}

var _ shared.OutboxRepository = (*MockOutboxRepository)(nil)
