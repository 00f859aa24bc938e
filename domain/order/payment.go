package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the outcome reported by the payment system.
type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "SUCCESS"
	PaymentFailed    PaymentStatus = "FAILED"
)

// PaymentEvent is one payment outcome for one order.
type PaymentEvent struct {
	PaymentID string
	OrderID   string
	Amount    decimal.Decimal
	Timestamp time.Time
	Status    PaymentStatus
}

// Validate checks the fields ApplyPayment relies on.
func (e PaymentEvent) Validate() error {
	if e.OrderID == "" {
		return NewInvalidPaymentEventError("order id is required")
	}
	switch e.Status {
	case PaymentSucceeded, PaymentFailed:
	default:
		return NewInvalidPaymentEventError("unknown payment status: " + string(e.Status))
	}
	if e.Status == PaymentSucceeded && e.Amount.IsNegative() {
		return NewInvalidPaymentEventError("payment amount cannot be negative")
	}
	return nil
}

// ReconciliationOutcome describes what a payment event did to an order.
// Every outcome is a handled event and is acknowledged by the consumer.
type ReconciliationOutcome string

const (
	OutcomePayed           ReconciliationOutcome = "PAYED"
	OutcomeCanceled        ReconciliationOutcome = "CANCELED"
	OutcomeAmountMismatch  ReconciliationOutcome = "AMOUNT_MISMATCH"
	OutcomeIgnoredTerminal ReconciliationOutcome = "IGNORED_TERMINAL"
	OutcomeIgnoredDeleted  ReconciliationOutcome = "IGNORED_DELETED"
)

// ChangesState reports whether the outcome requires a save.
func (o ReconciliationOutcome) ChangesState() bool {
	return o == OutcomePayed || o == OutcomeCanceled || o == OutcomeAmountMismatch
}

// ApplyPayment reconciles the order status with a payment outcome.
//
//   - PAYED, CANCELED and DELIVERED orders are never changed by payment
//     events, so redelivered and out of order events are harmless.
//   - FAILED cancels the order.
//   - SUCCESS with an amount exactly equal to the total marks it PAYED.
//   - SUCCESS with any other amount leaves the status alone and records an
//     order.payment_mismatch event.
func (o *Order) ApplyPayment(event PaymentEvent) (ReconciliationOutcome, error) {
	if err := event.Validate(); err != nil {
		return "", err
	}
	if event.OrderID != o.id {
		return "", NewInvalidPaymentEventError("payment event for order " + event.OrderID + " applied to order " + o.id)
	}
	if o.deleted {
		return OutcomeIgnoredDeleted, nil
	}
	if o.status.IsTerminalForPayment() {
		return OutcomeIgnoredTerminal, nil
	}

	if event.Status == PaymentFailed {
		if err := o.ChangeStatus(StatusCanceled, "payment "+event.PaymentID+" failed"); err != nil {
			return "", err
		}
		return OutcomeCanceled, nil
	}

	if !o.totalPrice.EqualsDecimal(event.Amount) {
		o.events = append(o.events, NewOrderPaymentMismatchEvent(o.id, event.PaymentID, o.totalPrice, event.Amount.String()))
		return OutcomeAmountMismatch, nil
	}

	if err := o.ChangeStatus(StatusPayed, "payment "+event.PaymentID+" succeeded"); err != nil {
		return "", err
	}
	return OutcomePayed, nil
}
