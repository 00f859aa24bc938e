package mocks

import (
	"context"
	"sort"
	"sync"

	"ordersvc/domain/order"
	"ordersvc/domain/shared"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory order.Repository.
// It stores snapshots, so an aggregate handed out by FindByID never aliases
// the stored state, and it enforces the same optimistic lock as MySQL.
type MockOrderRepository struct {
	orders map[string]order.ReconstructionDTO
	mu     sync.RWMutex
}

// NewMockOrderRepository Create Mock order repository
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]order.ReconstructionDTO),
	}
}

// NextIdentity Generate new order ID
func (r *MockOrderRepository) NextIdentity() string {
	return uuid.NewString()
}

func (r *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := o.ToDTO()
	if o.IsNew() {
		if _, exists := r.orders[o.ID()]; exists {
			return shared.NewConflictError("order", "order already exists")
		}
	} else {
		existing, exists := r.orders[o.ID()]
		if !exists {
			return order.NewOrderNotFoundError(o.ID())
		}
		if existing.Version != o.Version() {
			return order.NewConcurrentModificationError(o.ID())
		}
	}

	snapshot.Version = o.Version() + 1
	r.orders[o.ID()] = snapshot
	o.IncrementVersionForSave()
	return nil
}

func (r *MockOrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, exists := r.orders[id]
	if !exists {
		return nil, order.NewOrderNotFoundError(id)
	}
	return order.RebuildFromDTO(snapshot), nil
}

func (r *MockOrderRepository) FindByUserID(ctx context.Context, userID string) ([]*order.Order, error) {
	return r.matching(ctx, order.Active(order.ByUserIDSpecification{UserID: userID})), nil
}

func (r *MockOrderRepository) Query(ctx context.Context, spec shared.Specification[*order.Order], page shared.PageRequest) (shared.Page[*order.Order], error) {
	if spec == nil {
		spec = shared.MatchAll[*order.Order]()
	}
	return shared.Paginate(r.matching(ctx, spec), page), nil
}

// matching evaluates spec in memory, newest first.
func (r *MockOrderRepository) matching(ctx context.Context, spec shared.Specification[*order.Order]) []*order.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*order.Order, 0)
	for _, snapshot := range r.orders {
		o := order.RebuildFromDTO(snapshot)
		if spec.IsSatisfiedBy(ctx, o) {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt().Equal(result[j].CreatedAt()) {
			return result[i].CreatedAt().After(result[j].CreatedAt())
		}
		return result[i].ID() > result[j].ID()
	})
	return result
}

func (r *MockOrderRepository) Remove(ctx context.Context, id string) error {
	o, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	o.MarkDeleted()
	return r.Save(ctx, o)
}

// Compile-time interface implementation check
var _ order.Repository = (*MockOrderRepository)(nil)
