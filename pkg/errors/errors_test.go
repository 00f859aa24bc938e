package errors

import (
	"errors"
	"fmt"
	"testing"

	"ordersvc/domain/catalog"
	"ordersvc/domain/order"
	"ordersvc/domain/shared"

	"github.com/stretchr/testify/assert"
)

func TestFromDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{"order not found", order.NewOrderNotFoundError("o-1"), CodeOrderNotFound},
		{"item not found", catalog.NewItemNotFoundError("i-1"), CodeItemNotFound},
		{"transition", order.NewInvalidTransitionError(order.StatusPayed, order.StatusPending), CodeInvalidOrderState},
		{"quantity", order.NewQuantityExceededError("i-1", 1, 2), CodeQuantityExceeded},
		{"not in order", order.NewItemNotInOrderError("i-1"), CodeItemNotInOrder},
		{"frozen lines", order.NewCannotModifyOrderError(order.StatusDelivered), CodeOrderNotModifiable},
		{"order conflict", order.NewConcurrentModificationError("o-1"), CodeConcurrentModify},
		{"item conflict", catalog.NewConcurrentModificationError("i-1"), CodeConcurrentModify},
		{"validation", shared.NewValidationError("order", "size", "too large"), CodeValidation},
		{"forbidden", shared.NewForbiddenError("actor", "no"), CodeForbidden},
		{"unauthorized", fmt.Errorf("wrapped: %w", shared.ErrUnauthorized), CodeUnauthorized},
		{"persistence", shared.NewPersistenceError("order", "update", errors.New("connection refused")), CodePersistenceFailure},
		{"unknown", errors.New("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomainError(tt.err)
			assert.Equal(t, tt.code, appErr.Code)
			assert.ErrorIs(t, appErr, tt.err)
		})
	}
}

func TestFromDomainError_HidesStorageDetails(t *testing.T) {
	appErr := FromDomainError(shared.NewPersistenceError("order", "update", errors.New("dial tcp 10.0.0.5:3306")))
	assert.NotContains(t, appErr.Message, "10.0.0.5")

	appErr = FromDomainError(errors.New("secret"))
	assert.Equal(t, "internal server error", appErr.Message)
}

func TestFromDomainError_KeepsAppErrors(t *testing.T) {
	original := Forbidden("nope")
	assert.Same(t, original, FromDomainError(fmt.Errorf("ctx: %w", original)))
	assert.Nil(t, FromDomainError(nil))
	assert.True(t, Is(original, CodeForbidden))
	assert.False(t, Is(errors.New("x"), CodeForbidden))
}
