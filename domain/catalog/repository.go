package catalog

import (
	"context"

	"ordersvc/domain/shared"
)

// Repository persists Item aggregates.
type Repository interface {
	// Save inserts a new item or updates an existing one under optimistic locking.
	Save(ctx context.Context, item *Item) error

	// FindByID returns the item even when it is soft-deleted.
	FindByID(ctx context.Context, id string) (*Item, error)

	// FindAll pages through non-deleted items ordered by name.
	FindAll(ctx context.Context, page shared.PageRequest) (shared.Page[*Item], error)
}

// Lookup resolves item references for the order aggregate.
// Soft-deleted items are reported as ErrItemNotFound.
type Lookup interface {
	FindItem(ctx context.Context, id string) (*Item, error)
}

// RepositoryLookup adapts a Repository to Lookup.
type RepositoryLookup struct {
	Repo Repository
}

// FindItem loads the item and hides soft-deleted ones.
func (l RepositoryLookup) FindItem(ctx context.Context, id string) (*Item, error) {
	item, err := l.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.IsDeleted() {
		return nil, NewItemNotFoundError(id)
	}
	return item, nil
}
