package shared

import (
	"context"
)

// Specification is a business predicate over T.
// Specifications are plain values: IsSatisfiedBy evaluates them in memory and
// the persistence layer translates the same values into queries, so a
// predicate never knows where the candidates live.
type Specification[T any] interface {
	IsSatisfiedBy(ctx context.Context, candidate T) bool
}

// ============================================================================
// Composite Specifications
// ============================================================================

// AndSpecification is satisfied when both sides are.
type AndSpecification[T any] struct {
	Left  Specification[T]
	Right Specification[T]
}

func (spec AndSpecification[T]) IsSatisfiedBy(ctx context.Context, candidate T) bool {
	return spec.Left.IsSatisfiedBy(ctx, candidate) && spec.Right.IsSatisfiedBy(ctx, candidate)
}

// And combines two specifications with a logical AND.
func And[T any](left, right Specification[T]) Specification[T] {
	return AndSpecification[T]{Left: left, Right: right}
}

// OrSpecification is satisfied when either side is.
type OrSpecification[T any] struct {
	Left  Specification[T]
	Right Specification[T]
}

func (spec OrSpecification[T]) IsSatisfiedBy(ctx context.Context, candidate T) bool {
	return spec.Left.IsSatisfiedBy(ctx, candidate) || spec.Right.IsSatisfiedBy(ctx, candidate)
}

// Or combines two specifications with a logical OR.
func Or[T any](left, right Specification[T]) Specification[T] {
	return OrSpecification[T]{Left: left, Right: right}
}

// NotSpecification negates the inner specification.
type NotSpecification[T any] struct {
	Spec Specification[T]
}

func (spec NotSpecification[T]) IsSatisfiedBy(ctx context.Context, candidate T) bool {
	return !spec.Spec.IsSatisfiedBy(ctx, candidate)
}

// Not negates a specification.
func Not[T any](inner Specification[T]) Specification[T] {
	return NotSpecification[T]{Spec: inner}
}

// MatchAllSpecification is satisfied by every candidate.
type MatchAllSpecification[T any] struct{}

func (MatchAllSpecification[T]) IsSatisfiedBy(context.Context, T) bool { return true }

// MatchAll returns the neutral element of AND.
func MatchAll[T any]() Specification[T] {
	return MatchAllSpecification[T]{}
}

// AllOf folds the given specifications with AND. Nil entries are skipped and
// an empty list yields MatchAll.
func AllOf[T any](specs ...Specification[T]) Specification[T] {
	var result Specification[T]
	for _, spec := range specs {
		if spec == nil {
			continue
		}
		if result == nil {
			result = spec
			continue
		}
		result = And(result, spec)
	}
	if result == nil {
		return MatchAll[T]()
	}
	return result
}
