// Package specification turns domain specifications into GORM conditions.
// The domain builds predicate values; only this package knows columns.
package specification

import (
	"fmt"

	"ordersvc/domain/order"
	"ordersvc/domain/shared"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Translator converts domain specifications to GORM scopes
type Translator[T any] interface {
	Translate(spec shared.Specification[T]) (func(*gorm.DB) *gorm.DB, error)
}

// OrderTranslator translates order specifications against the orders table.
type OrderTranslator struct{}

// NewOrderTranslator creates a new GORM translator for orders
func NewOrderTranslator() *OrderTranslator {
	return &OrderTranslator{}
}

// Translate returns a scope that restricts a query to spec.
// Unknown specification types are an error rather than being dropped,
// a silently ignored predicate would widen the result set.
func (t *OrderTranslator) Translate(spec shared.Specification[*order.Order]) (func(*gorm.DB) *gorm.DB, error) {
	expr, err := t.expression(spec)
	if err != nil {
		return nil, err
	}
	return func(db *gorm.DB) *gorm.DB {
		if expr == nil {
			return db
		}
		return db.Clauses(clause.Where{Exprs: []clause.Expression{expr}})
	}, nil
}

// expression returns nil for "matches everything".
func (t *OrderTranslator) expression(spec shared.Specification[*order.Order]) (clause.Expression, error) {
	if spec == nil {
		return nil, nil
	}

	switch s := spec.(type) {
	case shared.MatchAllSpecification[*order.Order]:
		return nil, nil
	case shared.AndSpecification[*order.Order]:
		left, right, err := t.pair(s.Left, s.Right)
		if err != nil {
			return nil, err
		}
		switch {
		case left == nil:
			return right, nil
		case right == nil:
			return left, nil
		}
		return clause.And(left, right), nil
	case shared.OrSpecification[*order.Order]:
		left, right, err := t.pair(s.Left, s.Right)
		if err != nil {
			return nil, err
		}
		if left == nil || right == nil {
			return nil, nil
		}
		return clause.Or(left, right), nil
	case shared.NotSpecification[*order.Order]:
		inner, err := t.expression(s.Spec)
		if err != nil {
			return nil, err
		}
		if inner == nil {
			return clause.Expr{SQL: "1 = 0"}, nil
		}
		return clause.Not(inner), nil
	}

	return t.concrete(spec)
}

func (t *OrderTranslator) pair(l, r shared.Specification[*order.Order]) (clause.Expression, clause.Expression, error) {
	left, err := t.expression(l)
	if err != nil {
		return nil, nil, err
	}
	right, err := t.expression(r)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// concrete maps leaf specifications to columns of the orders table.
func (t *OrderTranslator) concrete(spec shared.Specification[*order.Order]) (clause.Expression, error) {
	switch s := spec.(type) {
	case order.CreatedBeforeSpecification:
		return clause.Lt{Column: clause.Column{Table: "orders", Name: "created_at"}, Value: s.Instant}, nil
	case order.CreatedAfterSpecification:
		return clause.Gt{Column: clause.Column{Table: "orders", Name: "created_at"}, Value: s.Instant}, nil
	case order.StatusSpecification:
		return clause.Eq{Column: clause.Column{Table: "orders", Name: "status"}, Value: string(s.Status)}, nil
	case order.ByUserIDSpecification:
		return clause.Eq{Column: clause.Column{Table: "orders", Name: "user_id"}, Value: s.UserID}, nil
	case order.NotDeletedSpecification:
		return clause.Eq{Column: clause.Column{Table: "orders", Name: "deleted"}, Value: false}, nil
	}

	return nil, fmt.Errorf("unsupported order specification %T", spec)
}

var _ Translator[*order.Order] = (*OrderTranslator)(nil)
