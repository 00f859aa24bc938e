package catalog

import (
	"fmt"

	"ordersvc/domain/shared"
)

var (
	// ErrItemNotFound the item does not exist or was soft-deleted.
	ErrItemNotFound = fmt.Errorf("item %w", shared.ErrNotFound)

	// ErrInvalidItem name or price rejected.
	ErrInvalidItem = fmt.Errorf("item: %w", shared.ErrInvalidInput)

	// ErrConcurrentModification another writer saved the item first.
	ErrConcurrentModification = fmt.Errorf("item %w", shared.ErrConflict)
)

// NewItemNotFoundError returns an error matching ErrItemNotFound and shared.ErrNotFound.
func NewItemNotFoundError(itemID string) error {
	return shared.NewError(ErrItemNotFound, "item", "", "item not found: "+itemID)
}

// NewInvalidItemError reports a rejected field.
func NewInvalidItemError(field, reason string) error {
	return shared.NewError(ErrInvalidItem, "item", field, reason)
}

// NewConcurrentModificationError reports a version mismatch on save.
func NewConcurrentModificationError(itemID string) error {
	return shared.NewError(ErrConcurrentModification, "item", "",
		"item "+itemID+" was modified by another transaction, please retry")
}
