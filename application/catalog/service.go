// Package catalog holds the item management use cases. Reads are open to
// every caller; writes need the administrator role.
package catalog

import (
	"context"
	"time"

	"ordersvc/domain/catalog"
	"ordersvc/domain/identity"
	"ordersvc/domain/shared"
)

// CreateItemRequest Create item request DTO
type CreateItemRequest struct {
	Name  string       `json:"name" binding:"required"`
	Price shared.Money `json:"price"`
}

// UpdateItemRequest changes the present fields only.
type UpdateItemRequest struct {
	Name  *string       `json:"name"`
	Price *shared.Money `json:"price"`
}

// ItemResponse Item response DTO
type ItemResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Price     shared.Money `json:"price"`
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ItemPageResponse is one page of the catalog.
type ItemPageResponse struct {
	Items      []*ItemResponse `json:"items"`
	Page       int             `json:"page"`
	Size       int             `json:"size"`
	TotalItems int64           `json:"total_items"`
	TotalPages int             `json:"total_pages"`
}

type ApplicationService struct {
	itemRepo   catalog.Repository
	uowFactory shared.UnitOfWorkFactory
}

func NewApplicationService(itemRepo catalog.Repository, uowFactory shared.UnitOfWorkFactory) *ApplicationService {
	return &ApplicationService{itemRepo: itemRepo, uowFactory: uowFactory}
}

func (s *ApplicationService) CreateItem(ctx context.Context, actor identity.Actor, req CreateItemRequest) (*ItemResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var item *catalog.Item
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		if item, err = catalog.NewItem(req.Name, req.Price); err != nil {
			return err
		}
		if err := s.itemRepo.Save(ctx, item); err != nil {
			return err
		}
		uow.RegisterNew(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetItem hides soft-deleted items.
func (s *ApplicationService) GetItem(ctx context.Context, itemID string) (*ItemResponse, error) {
	item, err := catalog.RepositoryLookup{Repo: s.itemRepo}.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

func (s *ApplicationService) ListItems(ctx context.Context, page shared.PageRequest) (*ItemPageResponse, error) {
	result, err := s.itemRepo.FindAll(ctx, page)
	if err != nil {
		return nil, err
	}
	items := make([]*ItemResponse, len(result.Items))
	for i, item := range result.Items {
		items[i] = toItemResponse(item)
	}
	return &ItemPageResponse{
		Items:      items,
		Page:       result.Page,
		Size:       result.Size,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages(),
	}, nil
}

// UpdateItem changes name and/or price. Existing order lines keep the price
// they were added at until the item is added to them again.
func (s *ApplicationService) UpdateItem(ctx context.Context, actor identity.Actor, itemID string, req UpdateItemRequest) (*ItemResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var item *catalog.Item
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		if item, err = s.itemRepo.FindByID(ctx, itemID); err != nil {
			return err
		}
		if err := item.Update(req.Name, req.Price); err != nil {
			return err
		}
		if err := s.itemRepo.Save(ctx, item); err != nil {
			return err
		}
		uow.RegisterDirty(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// DeleteItem soft-deletes an item; orders keep their lines for it.
func (s *ApplicationService) DeleteItem(ctx context.Context, actor identity.Actor, itemID string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}

	uow := s.uowFactory.New()
	return uow.Execute(ctx, func(ctx context.Context) error {
		item, err := catalog.RepositoryLookup{Repo: s.itemRepo}.FindItem(ctx, itemID)
		if err != nil {
			return err
		}
		item.MarkDeleted()
		if err := s.itemRepo.Save(ctx, item); err != nil {
			return err
		}
		uow.RegisterRemoved(item)
		return nil
	})
}

func toItemResponse(item *catalog.Item) *ItemResponse {
	return &ItemResponse{
		ID:        item.ID(),
		Name:      item.Name(),
		Price:     item.Price(),
		Version:   item.Version(),
		CreatedAt: item.CreatedAt(),
		UpdatedAt: item.UpdatedAt(),
	}
}
