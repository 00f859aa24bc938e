package mocks

import (
	"context"

	"ordersvc/domain/shared"
	"ordersvc/infrastructure/persistence/retry"
)

// MockUnitOfWork is a mock implementation of UnitOfWork for testing.
// There is no transaction to roll back; events only reach the outbox when
// fn succeeds, and retryable failures are retried like the real one.
type MockUnitOfWork struct {
	aggregates  []shared.AggregateRoot
	outbox      shared.OutboxRepository
	retryConfig retry.Config
}

// NewMockUnitOfWork creates a new MockUnitOfWork instance
func NewMockUnitOfWork(outbox shared.OutboxRepository, retryConfig retry.Config) *MockUnitOfWork {
	return &MockUnitOfWork{
		aggregates:  make([]shared.AggregateRoot, 0),
		outbox:      outbox,
		retryConfig: retryConfig,
	}
}

func (u *MockUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.ExecuteWithRetry(ctx, u.retryConfig, func(ctx context.Context) error {
		u.aggregates = make([]shared.AggregateRoot, 0)
		if err := fn(ctx); err != nil {
			return err
		}
		for _, agg := range u.aggregates {
			for _, event := range agg.PullEvents() {
				if err := u.outbox.SaveEvent(ctx, event); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// RegisterNew registers a newly created aggregate root for event collection
func (u *MockUnitOfWork) RegisterNew(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

// RegisterDirty registers a modified aggregate root for event collection
func (u *MockUnitOfWork) RegisterDirty(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

// RegisterRemoved registers a deleted aggregate root for event collection
func (u *MockUnitOfWork) RegisterRemoved(aggregate shared.AggregateRoot) {
	u.aggregates = append(u.aggregates, aggregate)
}

// MockUnitOfWorkFactory hands out MockUnitOfWorks sharing one outbox.
type MockUnitOfWorkFactory struct {
	Outbox      *MockOutboxRepository
	RetryConfig retry.Config
}

func NewMockUnitOfWorkFactory() *MockUnitOfWorkFactory {
	cfg := retry.DefaultConfig
	cfg.InitialDelay = 0
	cfg.JitterEnabled = false
	return &MockUnitOfWorkFactory{Outbox: NewMockOutboxRepository(), RetryConfig: cfg}
}

func (f *MockUnitOfWorkFactory) New() shared.UnitOfWork {
	return NewMockUnitOfWork(f.Outbox, f.RetryConfig)
}

// Compile-time check that MockUnitOfWork implements shared.UnitOfWork
var (
	_ shared.UnitOfWork        = (*MockUnitOfWork)(nil)
	_ shared.UnitOfWorkFactory = (*MockUnitOfWorkFactory)(nil)
)
