package shared

import "context"

// UnitOfWork owns the transaction boundary of one business operation and
// collects the events of the aggregates touched inside it.
// Execute may run fn more than once when the failure is retryable
// (optimistic lock conflict, deadlock), so fn must reload what it mutates.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
	RegisterNew(aggregate AggregateRoot)
	RegisterDirty(aggregate AggregateRoot)
	RegisterRemoved(aggregate AggregateRoot)
}

// UnitOfWorkFactory hands out one UnitOfWork per operation. A UnitOfWork is
// not safe for concurrent use.
type UnitOfWorkFactory interface {
	New() UnitOfWork
}

// OutboxRepository stores events in the same transaction as the aggregate.
type OutboxRepository interface {
	SaveEvent(ctx context.Context, event DomainEvent) error
}
