/*
Package order exposes the order use cases over HTTP.

Binding and parameter errors are answered directly with 400 through
response.HandleError; everything returned by the application service goes
through response.HandleAppError, which maps domain sentinels to status codes.
*/
package order

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"ordersvc/api/ctxutil"
	"ordersvc/api/response"
	orderapp "ordersvc/application/order"

	"github.com/gin-gonic/gin"
)

var errInvalidQuantity = errors.New("quantity must be a positive integer")

type Controller struct {
	orderService *orderapp.ApplicationService
}

func NewController(orderService *orderapp.ApplicationService) *Controller {
	return &Controller{orderService: orderService}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	orderGroup := router.Group("/orders")
	{
		orderGroup.POST("", c.CreateOrder)
		orderGroup.GET("", c.SearchOrders)
		orderGroup.GET("/:id", c.GetOrder)
		orderGroup.GET("/user/:userId", c.GetUserOrders)
		orderGroup.PUT("/:id", c.UpdateOrder)
		orderGroup.DELETE("/:id", c.DeleteOrder)
		orderGroup.POST("/:id/items", c.AddItem)
		orderGroup.DELETE("/:id/items/:itemId", c.RemoveItem)
	}
}

// CreateOrder POST /api/v1/orders
func (c *Controller) CreateOrder(ctx *gin.Context) {
	var req orderapp.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	order, err := c.orderService.CreateOrder(ctxutil.WithRequestID(ctx), ctxutil.Actor(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, order, "order created successfully")
}

// GetOrder GET /api/v1/orders/:id
func (c *Controller) GetOrder(ctx *gin.Context) {
	order, err := c.orderService.GetOrder(ctxutil.WithRequestID(ctx), ctxutil.Actor(ctx), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, order, "order retrieved successfully")
}

// GetUserOrders GET /api/v1/orders/user/:userId
func (c *Controller) GetUserOrders(ctx *gin.Context) {
	orders, err := c.orderService.GetUserOrders(ctxutil.WithRequestID(ctx), ctxutil.Actor(ctx), ctx.Param("userId"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, orders, "user orders retrieved successfully")
}

// SearchOrders GET /api/v1/orders?status=PAYED&created_after=...&page=1&size=20
// Time bounds are RFC 3339 and exclusive.
func (c *Controller) SearchOrders(ctx *gin.Context) {
	var req orderapp.SearchOrdersRequest
	var err error
	if req.CreatedBefore, err = optionalTime(ctx, "created_before"); err != nil {
		response.HandleError(ctx, err, "invalid created_before", http.StatusBadRequest)
		return
	}
	if req.CreatedAfter, err = optionalTime(ctx, "created_after"); err != nil {
		response.HandleError(ctx, err, "invalid created_after", http.StatusBadRequest)
		return
	}
	if req.Page, err = optionalInt(ctx, "page"); err != nil {
		response.HandleError(ctx, err, "invalid page", http.StatusBadRequest)
		return
	}
	if req.Size, err = optionalInt(ctx, "size"); err != nil {
		response.HandleError(ctx, err, "invalid size", http.StatusBadRequest)
		return
	}
	req.Status = ctx.Query("status")

	page, err := c.orderService.SearchOrders(ctxutil.WithRequestID(ctx), ctxutil.Actor(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandlePaginated(ctx, page.Items, response.Pagination{
		Page:       page.Page,
		PageSize:   page.Size,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}, "orders retrieved successfully")
}

// UpdateOrder PUT /api/v1/orders/:id
func (c *Controller) UpdateOrder(ctx *gin.Context) {
	var req orderapp.UpdateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	order, err := c.orderService.UpdateOrder(ctxutil.WithRequestID(ctx), ctxutil.Actor(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, order, "order updated successfully")
}

// DeleteOrder DELETE /api/v1/orders/:id (soft delete)
func (c *Controller) DeleteOrder(ctx *gin.Context) {
	if err := c.orderService.DeleteOrder(ctxutil.WithRequestID(ctx), ctxutil.Actor(ctx), ctx.Param("id")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleNoContent(ctx)
}

// AddItem POST /api/v1/orders/:id/items
func (c *Controller) AddItem(ctx *gin.Context) {
	var req orderapp.ChangeQuantityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	order, err := c.orderService.AddItem(ctxutil.WithRequestID(ctx), ctxutil.Actor(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, order, "item added successfully")
}

// RemoveItem DELETE /api/v1/orders/:id/items/:itemId?quantity=n
func (c *Controller) RemoveItem(ctx *gin.Context) {
	quantity, err := strconv.Atoi(ctx.DefaultQuery("quantity", "1"))
	if err != nil || quantity < 1 {
		response.HandleError(ctx, errInvalidQuantity, "invalid quantity", http.StatusBadRequest)
		return
	}

	req := orderapp.ChangeQuantityRequest{ItemID: ctx.Param("itemId"), Quantity: quantity}
	order, err := c.orderService.RemoveItem(ctxutil.WithRequestID(ctx), ctxutil.Actor(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, order, "item removed successfully")
}

func optionalTime(ctx *gin.Context, key string) (*time.Time, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optionalInt(ctx *gin.Context, key string) (int, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
