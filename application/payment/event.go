package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ordersvc/domain/order"

	"github.com/shopspring/decimal"
)

// Event is the payment message published by the payment system.
//
//	{"payment_id":"p-1","order_id":"o-1","payment_amount":"25.00",
//	 "timestamp":"2024-03-01T10:00:00Z","status":"SUCCESS"}
//
// payment_amount may be a JSON string or number; order_id may be a string
// or an integer.
type Event struct {
	PaymentID     string          `json:"payment_id"`
	OrderID       FlexibleID      `json:"order_id"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	Timestamp     time.Time       `json:"timestamp"`
	Status        string          `json:"status"`
}

// FlexibleID accepts both "42" and 42.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("order_id must be a string or a number: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// Decode parses and validates a raw message. Any error means the message
// can never be handled and should be dead-lettered.
func Decode(data []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return Event{}, order.NewInvalidPaymentEventError("malformed payment event: " + err.Error())
	}
	if err := event.ToDomain().Validate(); err != nil {
		return Event{}, err
	}
	return event, nil
}

// ToDomain maps the wire contract to the domain event.
func (e Event) ToDomain() order.PaymentEvent {
	return order.PaymentEvent{
		PaymentID: e.PaymentID,
		OrderID:   string(e.OrderID),
		Amount:    e.PaymentAmount,
		Timestamp: e.Timestamp,
		Status:    order.PaymentStatus(strings.ToUpper(strings.TrimSpace(e.Status))),
	}
}
