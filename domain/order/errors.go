/*
Package order - order domain errors

Design:
 1. Sentinel errors support errors.Is(); each one also chains to the shared
    taxonomy so callers can match either level.
 2. Constructors capture the stack at the point of creation.
 3. No transport concepts such as HTTP status codes.
*/
package order

import (
	"errors"
	"fmt"

	"ordersvc/domain/shared"
)

// ============================================================================
// Sentinel Errors
// ============================================================================

var (
	// ErrOrderNotFound the order does not exist or is soft-deleted.
	ErrOrderNotFound = fmt.Errorf("order %w", shared.ErrNotFound)

	// ErrConcurrentModification optimistic lock conflict; the operation can be retried.
	ErrConcurrentModification = fmt.Errorf("order was modified by another transaction: %w", shared.ErrConflict)

	// ErrInvalidOrderStateTransition the status table does not allow the move.
	ErrInvalidOrderStateTransition = fmt.Errorf("invalid order state transition: %w", shared.ErrInvalidInput)

	// ErrInvalidStatus unknown status name.
	ErrInvalidStatus = fmt.Errorf("invalid order status: %w", shared.ErrInvalidInput)

	// ErrEmptyOrderItems an order is placed with at least one line.
	ErrEmptyOrderItems = fmt.Errorf("order must have at least one item: %w", shared.ErrInvalidInput)

	// ErrInvalidQuantity quantity must be positive.
	ErrInvalidQuantity = fmt.Errorf("quantity must be positive: %w", shared.ErrInvalidInput)

	// ErrQuantityExceeded removal asks for more than the line holds.
	ErrQuantityExceeded = fmt.Errorf("quantity exceeds the quantity held by the order: %w", shared.ErrInvalidInput)

	// ErrItemNotInOrder no active line for the item.
	ErrItemNotInOrder = fmt.Errorf("item is not part of the order: %w", shared.ErrInvalidInput)

	// ErrCannotModifyOrder lines are frozen once the order left PENDING/CONFIRMED.
	ErrCannotModifyOrder = fmt.Errorf("order lines can no longer be modified: %w", shared.ErrInvalidInput)

	// ErrInvalidPaymentEvent the payment event violates its contract.
	ErrInvalidPaymentEvent = fmt.Errorf("invalid payment event: %w", shared.ErrInvalidInput)

	// ErrAmountMismatch reported through ReconciliationOutcome, never returned by ApplyPayment.
	ErrAmountMismatch = errors.New("payment amount does not match order total")

	// ErrPersistenceFailure storage failed for a reason other than a conflict.
	ErrPersistenceFailure = shared.ErrPersistence
)

// ============================================================================
// Constructors
// ============================================================================

// NewOrderNotFoundError matches ErrOrderNotFound and shared.ErrNotFound.
func NewOrderNotFoundError(orderID string) error {
	return shared.NewError(ErrOrderNotFound, "order", "", "order not found: "+orderID)
}

// NewConcurrentModificationError is returned by Save when the version moved.
func NewConcurrentModificationError(orderID string) error {
	return shared.NewError(ErrConcurrentModification, "order", "version",
		"order "+orderID+" was modified by another transaction, please retry")
}

func NewInvalidTransitionError(from, to Status) error {
	return shared.NewError(ErrInvalidOrderStateTransition, "order", "status",
		"cannot transition from "+from.String()+" to "+to.String())
}

func NewInvalidStatusError(value string) error {
	return shared.NewError(ErrInvalidStatus, "order", "status", "unknown order status: "+value)
}

func NewQuantityExceededError(itemID string, held, requested int) error {
	return shared.NewError(ErrQuantityExceeded, "order", "quantity",
		fmt.Sprintf("cannot remove %d of item %s, order holds %d", requested, itemID, held))
}

func NewItemNotInOrderError(itemID string) error {
	return shared.NewError(ErrItemNotInOrder, "order", "item_id", "item "+itemID+" is not part of the order")
}

func NewCannotModifyOrderError(status Status) error {
	return shared.NewError(ErrCannotModifyOrder, "order", "status",
		"order lines cannot be modified in status "+status.String())
}

func NewInvalidPaymentEventError(reason string) error {
	return shared.NewError(ErrInvalidPaymentEvent, "payment", "", reason)
}
