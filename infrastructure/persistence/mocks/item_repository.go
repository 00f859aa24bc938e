package mocks

import (
	"context"
	"sort"
	"sync"

	"ordersvc/domain/catalog"
	"ordersvc/domain/shared"
)

// MockItemRepository is an in-memory catalog.Repository.
type MockItemRepository struct {
	items map[string]catalog.ReconstructionDTO
	mu    sync.RWMutex
}

func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{
		items: make(map[string]catalog.ReconstructionDTO),
	}
}

func (r *MockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !item.IsNew() {
		existing, exists := r.items[item.ID()]
		if !exists {
			return catalog.NewItemNotFoundError(item.ID())
		}
		if existing.Version != item.Version() {
			return catalog.NewConcurrentModificationError(item.ID())
		}
	}

	snapshot := item.ToDTO()
	snapshot.Version = item.Version() + 1
	r.items[item.ID()] = snapshot
	item.IncrementVersionForSave()
	return nil
}

func (r *MockItemRepository) FindByID(ctx context.Context, id string) (*catalog.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, exists := r.items[id]
	if !exists {
		return nil, catalog.NewItemNotFoundError(id)
	}
	return catalog.RebuildFromDTO(snapshot), nil
}

func (r *MockItemRepository) FindAll(ctx context.Context, page shared.PageRequest) (shared.Page[*catalog.Item], error) {
	r.mu.RLock()
	items := make([]*catalog.Item, 0, len(r.items))
	for _, snapshot := range r.items {
		if !snapshot.Deleted {
			items = append(items, catalog.RebuildFromDTO(snapshot))
		}
	}
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name() != items[j].Name() {
			return items[i].Name() < items[j].Name()
		}
		return items[i].ID() < items[j].ID()
	})
	return shared.Paginate(items, page), nil
}

var _ catalog.Repository = (*MockItemRepository)(nil)
