package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentFor(o *Order, status PaymentStatus, amount string) PaymentEvent {
	return PaymentEvent{
		PaymentID: "pay-1",
		OrderID:   o.ID(),
		Amount:    decimal.RequireFromString(amount),
		Status:    status,
	}
}

func TestApplyPayment_SuccessWithMatchingAmount(t *testing.T) {
	o := newFixture(t).twoLineOrder(t)
	o.PullEvents()

	outcome, err := o.ApplyPayment(paymentFor(o, PaymentSucceeded, "40.00"))
	require.NoError(t, err)
	assert.Equal(t, OutcomePayed, outcome)
	assert.Equal(t, StatusPayed, o.Status())

	events := o.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "order.status_changed", events[0].EventName())
}

func TestApplyPayment_AmountEqualityIgnoresScale(t *testing.T) {
	o := newFixture(t).twoLineOrder(t)

	outcome, err := o.ApplyPayment(paymentFor(o, PaymentSucceeded, "40"))
	require.NoError(t, err)
	assert.Equal(t, OutcomePayed, outcome)
}

func TestApplyPayment_Mismatch(t *testing.T) {
	for _, amount := range []string{"39.00", "40.001", "0"} {
		t.Run(amount, func(t *testing.T) {
			o := newFixture(t).twoLineOrder(t)
			o.PullEvents()

			outcome, err := o.ApplyPayment(paymentFor(o, PaymentSucceeded, amount))
			require.NoError(t, err)
			assert.Equal(t, OutcomeAmountMismatch, outcome)
			assert.Equal(t, StatusPending, o.Status())

			events := o.PullEvents()
			require.Len(t, events, 1)
			assert.Equal(t, "order.payment_mismatch", events[0].EventName())
		})
	}
}

func TestApplyPayment_FailureCancels(t *testing.T) {
	for _, start := range []Status{StatusPending, StatusConfirmed, StatusFailed} {
		t.Run(string(start), func(t *testing.T) {
			o := newFixture(t).twoLineOrder(t)
			o.status = start

			outcome, err := o.ApplyPayment(paymentFor(o, PaymentFailed, "0"))
			require.NoError(t, err)
			assert.Equal(t, OutcomeCanceled, outcome)
			assert.Equal(t, StatusCanceled, o.Status())
		})
	}
}

func TestApplyPayment_IdempotentSuccess(t *testing.T) {
	o := newFixture(t).twoLineOrder(t)
	event := paymentFor(o, PaymentSucceeded, "40.00")

	_, err := o.ApplyPayment(event)
	require.NoError(t, err)
	o.PullEvents()

	outcome, err := o.ApplyPayment(event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnoredTerminal, outcome)
	assert.Equal(t, StatusPayed, o.Status())
	assert.Empty(t, o.PullEvents())
}

func TestApplyPayment_OutOfOrderFailureAfterSuccess(t *testing.T) {
	o := newFixture(t).twoLineOrder(t)

	_, err := o.ApplyPayment(paymentFor(o, PaymentSucceeded, "40.00"))
	require.NoError(t, err)

	outcome, err := o.ApplyPayment(paymentFor(o, PaymentFailed, "40.00"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnoredTerminal, outcome)
	assert.Equal(t, StatusPayed, o.Status())
}

func TestApplyPayment_SuccessAfterCancel(t *testing.T) {
	o := newFixture(t).twoLineOrder(t)

	_, err := o.ApplyPayment(paymentFor(o, PaymentFailed, "0"))
	require.NoError(t, err)

	outcome, err := o.ApplyPayment(paymentFor(o, PaymentSucceeded, "40.00"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnoredTerminal, outcome)
	assert.Equal(t, StatusCanceled, o.Status())
}

func TestApplyPayment_DeliveredIsNeverRegressed(t *testing.T) {
	o := newFixture(t).twoLineOrder(t)
	o.status = StatusDelivered

	outcome, err := o.ApplyPayment(paymentFor(o, PaymentFailed, "0"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnoredTerminal, outcome)
	assert.Equal(t, StatusDelivered, o.Status())
}

func TestApplyPayment_DeletedOrder(t *testing.T) {
	o := newFixture(t).twoLineOrder(t)
	o.MarkDeleted()

	outcome, err := o.ApplyPayment(paymentFor(o, PaymentSucceeded, "40.00"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnoredDeleted, outcome)
	assert.Equal(t, StatusPending, o.Status())
}

func TestApplyPayment_InvalidEvent(t *testing.T) {
	o := newFixture(t).twoLineOrder(t)

	_, err := o.ApplyPayment(PaymentEvent{OrderID: o.ID(), Status: "REFUNDED"})
	assert.ErrorIs(t, err, ErrInvalidPaymentEvent)

	_, err = o.ApplyPayment(paymentFor(o, PaymentSucceeded, "-1"))
	assert.ErrorIs(t, err, ErrInvalidPaymentEvent)

	other := paymentFor(o, PaymentSucceeded, "40.00")
	other.OrderID = "someone-else"
	_, err = o.ApplyPayment(other)
	assert.ErrorIs(t, err, ErrInvalidPaymentEvent)
	assert.Equal(t, StatusPending, o.Status())
}
