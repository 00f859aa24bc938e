// Package item exposes the catalog over HTTP. Reads are public.
package item

import (
	"net/http"
	"strconv"

	"ordersvc/api/ctxutil"
	"ordersvc/api/response"
	catalogapp "ordersvc/application/catalog"
	"ordersvc/domain/shared"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	itemService *catalogapp.ApplicationService
}

func NewController(itemService *catalogapp.ApplicationService) *Controller {
	return &Controller{itemService: itemService}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	itemGroup := router.Group("/items")
	{
		itemGroup.GET("", c.ListItems)
		itemGroup.GET("/:id", c.GetItem)
		itemGroup.POST("", c.CreateItem)
		itemGroup.PUT("/:id", c.UpdateItem)
		itemGroup.DELETE("/:id", c.DeleteItem)
	}
}

// ListItems GET /api/v1/items?page=1&size=20
func (c *Controller) ListItems(ctx *gin.Context) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil {
		response.HandleError(ctx, err, "invalid page", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(ctx.DefaultQuery("size", strconv.Itoa(shared.DefaultPageSize)))
	if err != nil {
		response.HandleError(ctx, err, "invalid size", http.StatusBadRequest)
		return
	}

	result, err := c.itemService.ListItems(ctxutil.WithRequestID(ctx), shared.PageRequest{Page: page, Size: size})
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandlePaginated(ctx, result.Items, response.Pagination{
		Page:       result.Page,
		PageSize:   result.Size,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	}, "items retrieved successfully")
}

// GetItem GET /api/v1/items/:id
func (c *Controller) GetItem(ctx *gin.Context) {
	item, err := c.itemService.GetItem(ctxutil.WithRequestID(ctx), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, item, "item retrieved successfully")
}

// CreateItem POST /api/v1/items
func (c *Controller) CreateItem(ctx *gin.Context) {
	var req catalogapp.CreateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	item, err := c.itemService.CreateItem(ctxutil.WithRequestID(ctx), ctxutil.Actor(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, item, "item created successfully")
}

// UpdateItem PUT /api/v1/items/:id
func (c *Controller) UpdateItem(ctx *gin.Context) {
	var req catalogapp.UpdateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	item, err := c.itemService.UpdateItem(ctxutil.WithRequestID(ctx), ctxutil.Actor(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, item, "item updated successfully")
}

// DeleteItem DELETE /api/v1/items/:id (soft delete)
func (c *Controller) DeleteItem(ctx *gin.Context) {
	if err := c.itemService.DeleteItem(ctxutil.WithRequestID(ctx), ctxutil.Actor(ctx), ctx.Param("id")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleNoContent(ctx)
}
