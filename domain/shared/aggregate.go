package shared

// AggregateRoot is the entry point of a consistency boundary.
// All changes to entities inside the boundary go through the root, which
// also records the domain events produced by those changes.
type AggregateRoot interface {
	// ID returns the globally unique identifier of the aggregate.
	ID() string

	// Version returns the persisted version used for optimistic locking.
	Version() int

	// PullEvents returns the recorded domain events and clears them.
	// The unit of work calls it once per transaction to fill the outbox.
	PullEvents() []DomainEvent
}

// Entity is an object identified by its ID rather than its attributes.
type Entity interface {
	ID() string
}
