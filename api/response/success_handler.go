package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context, status int, data any, message string) {
	c.JSON(status, &Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Code:      status,
		RequestID: getRequestID(c),
	})
}

func HandleSuccess(c *gin.Context, data any, message string) {
	ok(c, http.StatusOK, data, message)
}

func HandleCreated(c *gin.Context, data any, message string) {
	ok(c, http.StatusCreated, data, message)
}

// HandleNoContent answers deletes; the envelope is omitted.
func HandleNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// HandlePaginated wraps one page of a listing. items is never encoded as
// null, an empty page is an empty array.
func HandlePaginated[T any](c *gin.Context, items []T, pagination Pagination, message string) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, &PaginatedResponse{
		Success:    true,
		Data:       items,
		Pagination: pagination,
		Message:    message,
		Code:       http.StatusOK,
		RequestID:  getRequestID(c),
	})
}
