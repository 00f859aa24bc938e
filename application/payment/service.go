/*
Package payment reconciles orders with the outcome of their payments.

Handle is the decision point of the payment consumer: a nil error means the
message is done and may be acknowledged, any error means it must be
delivered again. Amount mismatches are a handled outcome, not an error.
*/
package payment

import (
	"context"
	"errors"

	"ordersvc/domain/order"
	"ordersvc/domain/shared"
	"ordersvc/pkg/logger"
	"ordersvc/pkg/metrics"

	"go.uber.org/zap"
)

type ReconciliationService struct {
	orderRepo  order.Repository
	uowFactory shared.UnitOfWorkFactory
}

func NewReconciliationService(orderRepo order.Repository, uowFactory shared.UnitOfWorkFactory) *ReconciliationService {
	return &ReconciliationService{orderRepo: orderRepo, uowFactory: uowFactory}
}

// Handle applies one payment event to its order inside one unit of work.
// A missing order and persistence failures are returned so the message is
// redelivered; a soft-deleted order yields OutcomeIgnoredDeleted.
func (s *ReconciliationService) Handle(ctx context.Context, event order.PaymentEvent) (order.ReconciliationOutcome, error) {
	if err := event.Validate(); err != nil {
		metrics.PaymentEventsTotal.WithLabelValues("poison").Inc()
		return "", err
	}

	var outcome order.ReconciliationOutcome
	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		o, err := s.orderRepo.FindByID(ctx, event.OrderID)
		if err != nil {
			return err
		}
		if outcome, err = o.ApplyPayment(event); err != nil {
			return err
		}
		if !outcome.ChangesState() {
			return nil
		}
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}
		uow.RegisterDirty(o)
		return nil
	})

	fields := []zap.Field{
		zap.String("payment_id", event.PaymentID),
		zap.String("order_id", event.OrderID),
		zap.String("payment_status", string(event.Status)),
		zap.String("payment_amount", event.Amount.String()),
	}
	log := logger.Ctx(ctx)
	if err != nil {
		metrics.PaymentEventsTotal.WithLabelValues("error").Inc()
		level := log.Error
		if errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrConflict) {
			level = log.Warn
		}
		level("Payment event not handled", append(fields, zap.Error(err))...)
		return "", err
	}

	metrics.PaymentEventsTotal.WithLabelValues(string(outcome)).Inc()
	switch outcome {
	case order.OutcomeAmountMismatch:
		log.Warn("Payment amount does not match order total", fields...)
	case order.OutcomeIgnoredTerminal, order.OutcomeIgnoredDeleted:
		log.Info("Payment event ignored", append(fields, zap.String("outcome", string(outcome)))...)
	default:
		log.Info("Payment event applied", append(fields, zap.String("outcome", string(outcome)))...)
	}
	return outcome, nil
}
