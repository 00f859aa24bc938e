package order

import (
	"time"

	"ordersvc/domain/shared"
)

type OrderPlacedEvent struct {
	orderID    string
	userID     string
	totalPrice shared.Money
	occurredOn time.Time
}

func NewOrderPlacedEvent(orderID, userID string, totalPrice shared.Money) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		orderID:    orderID,
		userID:     userID,
		totalPrice: totalPrice,
		occurredOn: time.Now(),
	}
}

func (e *OrderPlacedEvent) EventName() string        { return "order.placed" }
func (e *OrderPlacedEvent) OccurredOn() time.Time    { return e.occurredOn }
func (e *OrderPlacedEvent) GetAggregateID() string   { return e.orderID }
func (e *OrderPlacedEvent) UserID() string           { return e.userID }
func (e *OrderPlacedEvent) TotalPrice() shared.Money { return e.totalPrice }
func (e *OrderPlacedEvent) Payload() map[string]any {
	return map[string]any{"user_id": e.userID, "total_price": e.totalPrice.String()}
}

// OrderStatusChangedEvent is recorded for every effective status move.
type OrderStatusChangedEvent struct {
	orderID    string
	from       Status
	to         Status
	reason     string
	occurredOn time.Time
}

func NewOrderStatusChangedEvent(orderID string, from, to Status, reason string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		orderID:    orderID,
		from:       from,
		to:         to,
		reason:     reason,
		occurredOn: time.Now(),
	}
}

func (e *OrderStatusChangedEvent) EventName() string      { return "order.status_changed" }
func (e *OrderStatusChangedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderStatusChangedEvent) GetAggregateID() string { return e.orderID }
func (e *OrderStatusChangedEvent) From() Status           { return e.from }
func (e *OrderStatusChangedEvent) To() Status             { return e.to }
func (e *OrderStatusChangedEvent) Payload() map[string]any {
	return map[string]any{"from": string(e.from), "to": string(e.to), "reason": e.reason}
}

// OrderLinesChangedEvent is recorded when the line set and total were rewritten.
type OrderLinesChangedEvent struct {
	orderID    string
	totalPrice shared.Money
	occurredOn time.Time
}

func NewOrderLinesChangedEvent(orderID string, totalPrice shared.Money) *OrderLinesChangedEvent {
	return &OrderLinesChangedEvent{orderID: orderID, totalPrice: totalPrice, occurredOn: time.Now()}
}

func (e *OrderLinesChangedEvent) EventName() string      { return "order.lines_changed" }
func (e *OrderLinesChangedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderLinesChangedEvent) GetAggregateID() string { return e.orderID }
func (e *OrderLinesChangedEvent) Payload() map[string]any {
	return map[string]any{"total_price": e.totalPrice.String()}
}

// OrderPaymentMismatchEvent keeps a durable record of a SUCCESS payment
// whose amount differed from the order total.
type OrderPaymentMismatchEvent struct {
	orderID    string
	paymentID  string
	expected   shared.Money
	received   string
	occurredOn time.Time
}

func NewOrderPaymentMismatchEvent(orderID, paymentID string, expected shared.Money, received string) *OrderPaymentMismatchEvent {
	return &OrderPaymentMismatchEvent{
		orderID:    orderID,
		paymentID:  paymentID,
		expected:   expected,
		received:   received,
		occurredOn: time.Now(),
	}
}

func (e *OrderPaymentMismatchEvent) EventName() string      { return "order.payment_mismatch" }
func (e *OrderPaymentMismatchEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderPaymentMismatchEvent) GetAggregateID() string { return e.orderID }
func (e *OrderPaymentMismatchEvent) Payload() map[string]any {
	return map[string]any{
		"payment_id": e.paymentID,
		"expected":   e.expected.String(),
		"received":   e.received,
	}
}

type OrderDeletedEvent struct {
	orderID    string
	occurredOn time.Time
}

func NewOrderDeletedEvent(orderID string) *OrderDeletedEvent {
	return &OrderDeletedEvent{orderID: orderID, occurredOn: time.Now()}
}

func (e *OrderDeletedEvent) EventName() string      { return "order.deleted" }
func (e *OrderDeletedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *OrderDeletedEvent) GetAggregateID() string { return e.orderID }
