package mysql

import (
	"context"
	"fmt"

	"ordersvc/domain/shared"
	"ordersvc/infrastructure/persistence"
	"ordersvc/infrastructure/persistence/retry"
	"ordersvc/pkg/logger"
	"ordersvc/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnitOfWorkFactory hands out a fresh UnitOfWork per operation, all sharing
// the same pool and retry policy.
type UnitOfWorkFactory struct {
	db     *gorm.DB
	outbox *OutboxRepository
	policy retry.Config
}

func NewUnitOfWorkFactory(db *gorm.DB, policy retry.Config) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db, outbox: NewOutboxRepository(db), policy: policy}
}

func (f *UnitOfWorkFactory) New() shared.UnitOfWork {
	return &UnitOfWork{db: f.db, outbox: f.outbox, policy: f.policy}
}

// UnitOfWork runs one business operation in one transaction. Repositories
// pick the transaction up from the context. Events pulled from the
// registered aggregates are written to the outbox before commit, so an
// order change and its events are stored together or not at all.
type UnitOfWork struct {
	db      *gorm.DB
	outbox  *OutboxRepository
	policy  retry.Config
	tracked []shared.AggregateRoot
}

// Execute retries the whole attempt on optimistic lock conflicts and
// deadlocks. Registrations are reset for every attempt, so fn has to load
// and register its aggregates again.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	attempt := 0
	return retry.ExecuteWithRetry(ctx, u.policy, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			metrics.UnitOfWorkRetriesTotal.Inc()
		}
		u.tracked = u.tracked[:0]

		var opErr error
		err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			txCtx := persistence.ContextWithTx(ctx, tx)
			if opErr = fn(txCtx); opErr != nil {
				return opErr
			}
			opErr = u.flushEvents(txCtx)
			return opErr
		})
		if err != nil && opErr == nil {
			// begin or commit failed
			err = shared.NewPersistenceError("transaction", "commit", err)
		}
		if err != nil && retry.IsRetryableError(err, u.policy) {
			logger.Ctx(ctx).Debug("Unit of work attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	})
}

func (u *UnitOfWork) flushEvents(ctx context.Context) error {
	for _, agg := range u.tracked {
		for _, event := range agg.PullEvents() {
			if err := u.outbox.SaveEvent(ctx, event); err != nil {
				return fmt.Errorf("failed to save event to outbox: %w", err)
			}
		}
	}
	return nil
}

func (u *UnitOfWork) RegisterNew(aggregate shared.AggregateRoot)     { u.track(aggregate) }
func (u *UnitOfWork) RegisterDirty(aggregate shared.AggregateRoot)   { u.track(aggregate) }
func (u *UnitOfWork) RegisterRemoved(aggregate shared.AggregateRoot) { u.track(aggregate) }

func (u *UnitOfWork) track(aggregate shared.AggregateRoot) {
	u.tracked = append(u.tracked, aggregate)
}

var (
	_ shared.UnitOfWork        = (*UnitOfWork)(nil)
	_ shared.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
)
