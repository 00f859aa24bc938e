package order

import (
	"ordersvc/domain/order"
	"ordersvc/domain/shared"
)

func toLineRequests(items []OrderLineRequest) []order.LineRequest {
	requests := make([]order.LineRequest, len(items))
	for i, item := range items {
		requests[i] = order.LineRequest{ItemID: item.ItemID, Quantity: item.Quantity}
	}
	return requests
}

// toOrderResponse only exposes active lines.
func toOrderResponse(o *order.Order) *OrderResponse {
	lines := o.ActiveLines()
	items := make([]OrderLineResponse, len(lines))
	for i, line := range lines {
		items[i] = OrderLineResponse{
			ID:        line.ID(),
			ItemID:    line.ItemID(),
			ItemName:  line.ItemName(),
			UnitPrice: line.UnitPrice(),
			Quantity:  line.Quantity(),
			Subtotal:  line.Subtotal(),
		}
	}

	return &OrderResponse{
		ID:         o.ID(),
		UserID:     o.UserID(),
		Items:      items,
		TotalPrice: o.TotalPrice(),
		Status:     string(o.Status()),
		Deleted:    o.IsDeleted(),
		Version:    o.Version(),
		CreatedAt:  o.CreatedAt(),
		UpdatedAt:  o.UpdatedAt(),
	}
}

func toOrderResponses(orders []*order.Order) []*OrderResponse {
	responses := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		responses[i] = toOrderResponse(o)
	}
	return responses
}

func toPageResponse(page shared.Page[*order.Order]) *OrderPageResponse {
	return &OrderPageResponse{
		Items:      toOrderResponses(page.Items),
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages(),
	}
}
