package order

import (
	"context"

	"ordersvc/domain/shared"
)

// Repository Order repository interface
type Repository interface {
	// NextIdentity generates a new order identifier.
	NextIdentity() string

	// Save inserts a new order or updates an existing one.
	// Updates are guarded by the version column; a stale aggregate yields
	// ErrConcurrentModification. Events are collected by the unit of work.
	Save(ctx context.Context, order *Order) error

	// FindByID returns the order, soft-deleted ones included, so callers
	// can decide what a deleted order means for them.
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindByUserID returns the non-deleted orders of a user, newest first.
	FindByUserID(ctx context.Context, userID string) ([]*Order, error)

	// Query pages through the orders matching spec, newest first.
	Query(ctx context.Context, spec shared.Specification[*Order], page shared.PageRequest) (shared.Page[*Order], error)

	// Remove soft-deletes an order.
	Remove(ctx context.Context, id string) error
}
