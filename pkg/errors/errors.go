// Package errors defines the application error codes returned to clients
// and the mapping from domain sentinels to those codes. HTTP status codes
// are chosen by the API layer, not here.
package errors

import (
	"errors"
	"fmt"

	"ordersvc/domain/catalog"
	"ordersvc/domain/order"
	"ordersvc/domain/shared"
)

// ErrorCode is the stable, client visible error identifier.
type ErrorCode string

const (
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"

	CodeOrderNotFound       ErrorCode = "ORDER_NOT_FOUND"
	CodeItemNotFound        ErrorCode = "ITEM_NOT_FOUND"
	CodeInvalidOrderState   ErrorCode = "INVALID_ORDER_STATE"
	CodeConcurrentModify    ErrorCode = "CONCURRENT_MODIFICATION"
	CodeQuantityExceeded    ErrorCode = "QUANTITY_EXCEEDED"
	CodeItemNotInOrder      ErrorCode = "ITEM_NOT_IN_ORDER"
	CodeOrderNotModifiable  ErrorCode = "ORDER_NOT_MODIFIABLE"
	CodeInvalidPaymentEvent ErrorCode = "INVALID_PAYMENT_EVENT"
	CodePersistenceFailure  ErrorCode = "PERSISTENCE_FAILURE"
)

// AppError is an error with a code the client can branch on.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError      { return New(CodeBadRequest, message) }
func NotFound(message string) *AppError        { return New(CodeNotFound, message) }
func Internal(message string) *AppError        { return New(CodeInternal, message) }
func Unauthorized(message string) *AppError    { return New(CodeUnauthorized, message) }
func Forbidden(message string) *AppError       { return New(CodeForbidden, message) }
func Conflict(message string) *AppError        { return New(CodeConflict, message) }
func TooManyRequests(message string) *AppError { return New(CodeTooManyRequest, message) }
func Validation(message string) *AppError      { return New(CodeValidation, message) }

// Is reports whether err is an AppError carrying code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// domainCodes is checked in order; specific sentinels come before the
// shared ones they wrap.
var domainCodes = []struct {
	target error
	code   ErrorCode
}{
	{order.ErrOrderNotFound, CodeOrderNotFound},
	{catalog.ErrItemNotFound, CodeItemNotFound},
	{order.ErrInvalidOrderStateTransition, CodeInvalidOrderState},
	{order.ErrQuantityExceeded, CodeQuantityExceeded},
	{order.ErrItemNotInOrder, CodeItemNotInOrder},
	{order.ErrCannotModifyOrder, CodeOrderNotModifiable},
	{order.ErrInvalidPaymentEvent, CodeInvalidPaymentEvent},
	{shared.ErrConflict, CodeConcurrentModify},
	{shared.ErrNotFound, CodeNotFound},
	{shared.ErrInvalidInput, CodeValidation},
	{shared.ErrUnauthorized, CodeUnauthorized},
	{shared.ErrForbidden, CodeForbidden},
	{shared.ErrPersistence, CodePersistenceFailure},
}

// FromDomainError classifies err with errors.Is. The domain message is kept
// for client errors; storage and unknown failures get a generic message and
// keep the cause for logging only.
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	for _, m := range domainCodes {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.code == CodePersistenceFailure {
			return Wrap(err, m.code, "storage temporarily unavailable")
		}
		return Wrap(err, m.code, err.Error())
	}
	return Wrap(err, CodeInternal, "internal server error")
}
