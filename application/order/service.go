/*
Package order orchestrates the order use cases.

Every mutation runs inside its own unit of work: load, call the aggregate,
save, register. The unit of work writes the recorded events to the outbox in
the same transaction and retries the whole closure on optimistic lock
conflicts, so closures always reload what they change.
*/
package order

import (
	"context"

	"ordersvc/domain/catalog"
	"ordersvc/domain/identity"
	"ordersvc/domain/order"
	"ordersvc/domain/shared"
	"ordersvc/pkg/logger"

	"go.uber.org/zap"
)

// ApplicationService Order application service
type ApplicationService struct {
	orderRepo  order.Repository
	lookup     catalog.Lookup
	uowFactory shared.UnitOfWorkFactory
}

// NewApplicationService Create order application service
func NewApplicationService(
	orderRepo order.Repository,
	lookup catalog.Lookup,
	uowFactory shared.UnitOfWorkFactory,
) *ApplicationService {
	return &ApplicationService{
		orderRepo:  orderRepo,
		lookup:     lookup,
		uowFactory: uowFactory,
	}
}

// CreateOrder places a PENDING order with the requested lines.
func (s *ApplicationService) CreateOrder(ctx context.Context, actor identity.Actor, req CreateOrderRequest) (*OrderResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = actor.UserID
	}
	if err := actor.RequireOwnerOrAdmin(userID); err != nil {
		return nil, err
	}

	var o *order.Order
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		o, err = order.NewOrder(ctx, userID, toLineRequests(req.Items), s.lookup)
		if err != nil {
			return err
		}
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterNew(o)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Order placed",
		zap.String("order_id", o.ID()),
		zap.String("user_id", userID),
		zap.String("total_price", o.TotalPrice().String()),
	)
	return toOrderResponse(o), nil
}

// GetOrder returns an order to its owner or an administrator. Deleted
// orders are only visible to administrators.
func (s *ApplicationService) GetOrder(ctx context.Context, actor identity.Actor, orderID string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.IsDeleted() && !actor.IsAdmin() {
		return nil, order.NewOrderNotFoundError(orderID)
	}
	if err := actor.RequireOwnerOrAdmin(o.UserID()); err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// GetUserOrders returns the non-deleted orders of userID, newest first.
func (s *ApplicationService) GetUserOrders(ctx context.Context, actor identity.Actor, userID string) ([]*OrderResponse, error) {
	if err := actor.RequireOwnerOrAdmin(userID); err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

// SearchOrders pages through non-deleted orders matching the filter,
// newest first. Administrators only.
func (s *ApplicationService) SearchOrders(ctx context.Context, actor identity.Actor, req SearchOrdersRequest) (*OrderPageResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	filter := order.Filter{CreatedBefore: req.CreatedBefore, CreatedAfter: req.CreatedAfter}
	if req.Status != "" {
		status, err := order.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	page, err := s.orderRepo.Query(ctx, order.Active(filter.Compile()), shared.PageRequest{Page: req.Page, Size: req.Size})
	if err != nil {
		return nil, err
	}
	return toPageResponse(page), nil
}

// UpdateOrder applies the administrative update in a fixed order: lines,
// status, then the deleted flag. Lines are replaced only when Items is
// non-nil.
func (s *ApplicationService) UpdateOrder(ctx context.Context, actor identity.Actor, orderID string, req UpdateOrderRequest) (*OrderResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var target order.Status
	if req.Status != nil {
		var err error
		if target, err = order.ParseStatus(*req.Status); err != nil {
			return nil, err
		}
	}

	var o *order.Order
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		if o, err = s.orderRepo.FindByID(ctx, orderID); err != nil {
			return err
		}
		if req.Items != nil {
			if err := o.ReplaceAllLines(ctx, toLineRequests(req.Items), s.lookup); err != nil {
				return err
			}
		}
		if req.Status != nil {
			if err := o.ChangeStatus(target, "updated by "+actor.UserID); err != nil {
				return err
			}
		}
		if req.Deleted != nil {
			if *req.Deleted {
				o.MarkDeleted()
			} else {
				o.Restore()
			}
		}
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterDirty(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// AddItem adds units of an item to an order of the caller.
func (s *ApplicationService) AddItem(ctx context.Context, actor identity.Actor, orderID string, req ChangeQuantityRequest) (*OrderResponse, error) {
	return s.mutateLines(ctx, actor, orderID, func(ctx context.Context, o *order.Order) error {
		item, err := s.lookup.FindItem(ctx, req.ItemID)
		if err != nil {
			return err
		}
		return o.AddItem(item, req.Quantity)
	})
}

// RemoveItem removes units of an item from an order of the caller.
func (s *ApplicationService) RemoveItem(ctx context.Context, actor identity.Actor, orderID string, req ChangeQuantityRequest) (*OrderResponse, error) {
	return s.mutateLines(ctx, actor, orderID, func(_ context.Context, o *order.Order) error {
		return o.RemoveItem(req.ItemID, req.Quantity)
	})
}

func (s *ApplicationService) mutateLines(ctx context.Context, actor identity.Actor, orderID string, mutate func(context.Context, *order.Order) error) (*OrderResponse, error) {
	var o *order.Order
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		if o, err = s.loadActive(ctx, orderID); err != nil {
			return err
		}
		if err := actor.RequireOwnerOrAdmin(o.UserID()); err != nil {
			return err
		}
		if err := mutate(ctx, o); err != nil {
			return err
		}
		if err := o.RefreshPrices(ctx, s.lookup); err != nil {
			return err
		}
		o.RecomputeTotalPrice()
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterDirty(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// DeleteOrder soft-deletes an order. Administrators only.
func (s *ApplicationService) DeleteOrder(ctx context.Context, actor identity.Actor, orderID string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}

	uow := s.uowFactory.New()
	return uow.Execute(ctx, func(ctx context.Context) error {
		o, err := s.loadActive(ctx, orderID)
		if err != nil {
			return err
		}
		o.MarkDeleted()
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterRemoved(o)
		return nil
	})
}

// loadActive treats a soft-deleted order as missing.
func (s *ApplicationService) loadActive(ctx context.Context, orderID string) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.IsDeleted() {
		return nil, order.NewOrderNotFoundError(orderID)
	}
	return o, nil
}
