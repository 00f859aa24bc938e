package order

import (
	"context"
	"time"

	"ordersvc/domain/shared"
)

// CreatedBeforeSpecification matches orders created strictly before Instant.
type CreatedBeforeSpecification struct {
	Instant time.Time
}

func (spec CreatedBeforeSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	return entity.CreatedAt().Before(spec.Instant)
}

// CreatedAfterSpecification matches orders created strictly after Instant.
type CreatedAfterSpecification struct {
	Instant time.Time
}

func (spec CreatedAfterSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	return entity.CreatedAt().After(spec.Instant)
}

// StatusSpecification matches orders in Status.
type StatusSpecification struct {
	Status Status
}

func (spec StatusSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	return entity.Status() == spec.Status
}

// ByUserIDSpecification matches orders owned by UserID.
type ByUserIDSpecification struct {
	UserID string
}

func (spec ByUserIDSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	return entity.UserID() == spec.UserID
}

// NotDeletedSpecification excludes soft-deleted orders. Every read path
// applies it explicitly.
type NotDeletedSpecification struct{}

func (NotDeletedSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	return !entity.IsDeleted()
}

// ============================================================================
// Filter compiler
// ============================================================================

// Filter holds the optional search criteria for orders.
type Filter struct {
	CreatedBefore *time.Time
	CreatedAfter  *time.Time
	Status        *Status
}

// IsEmpty reports whether no criterion is set.
func (f Filter) IsEmpty() bool {
	return f.CreatedBefore == nil && f.CreatedAfter == nil && f.Status == nil
}

// Compile turns the present criteria into independent predicates joined by
// AND. An empty filter compiles to a predicate matching every order.
func (f Filter) Compile() shared.Specification[*Order] {
	var specs []shared.Specification[*Order]
	if f.CreatedBefore != nil {
		specs = append(specs, CreatedBeforeSpecification{Instant: *f.CreatedBefore})
	}
	if f.CreatedAfter != nil {
		specs = append(specs, CreatedAfterSpecification{Instant: *f.CreatedAfter})
	}
	if f.Status != nil {
		specs = append(specs, StatusSpecification{Status: *f.Status})
	}
	return shared.AllOf(specs...)
}

// Active narrows spec to non-deleted orders.
func Active(spec shared.Specification[*Order]) shared.Specification[*Order] {
	return shared.AllOf(NotDeletedSpecification{}, spec)
}
