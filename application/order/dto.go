package order

import (
	"time"

	"ordersvc/domain/shared"
)

// CreateOrderRequest places an order. UserID defaults to the caller; only
// administrators may place orders for somebody else.
type CreateOrderRequest struct {
	UserID string             `json:"user_id"`
	Items  []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderLineRequest asks for Quantity units of an item.
type OrderLineRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// UpdateOrderRequest is the administrative update. Absent fields are left
// alone; a present items list, even an empty one, replaces every line.
type UpdateOrderRequest struct {
	Status  *string            `json:"status"`
	Deleted *bool              `json:"deleted"`
	Items   []OrderLineRequest `json:"items" binding:"omitempty,dive"`
}

// ChangeQuantityRequest adds or removes units of one item.
type ChangeQuantityRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// SearchOrdersRequest filters non-deleted orders. Bounds are exclusive.
type SearchOrdersRequest struct {
	CreatedBefore *time.Time
	CreatedAfter  *time.Time
	Status        string
	Page          int
	Size          int
}

// OrderResponse Order response DTO
type OrderResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	Items      []OrderLineResponse `json:"items"`
	TotalPrice shared.Money        `json:"total_price"`
	Status     string              `json:"status"`
	Deleted    bool                `json:"deleted"`
	Version    int                 `json:"version"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// OrderLineResponse Order line response DTO
type OrderLineResponse struct {
	ID        string       `json:"id"`
	ItemID    string       `json:"item_id"`
	ItemName  string       `json:"item_name"`
	UnitPrice shared.Money `json:"unit_price"`
	Quantity  int          `json:"quantity"`
	Subtotal  shared.Money `json:"subtotal"`
}

// OrderPageResponse is one page of search results.
type OrderPageResponse struct {
	Items      []*OrderResponse `json:"items"`
	Page       int              `json:"page"`
	Size       int              `json:"size"`
	TotalItems int64            `json:"total_items"`
	TotalPages int              `json:"total_pages"`
}
