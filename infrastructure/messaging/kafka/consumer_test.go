package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ordersvc/application/payment"
	"ordersvc/domain/catalog"
	"ordersvc/domain/order"
	"ordersvc/domain/shared"
	"ordersvc/infrastructure/persistence/mocks"
	"ordersvc/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	commitErr error
}

func (s *fakeSource) FetchMessage(ctx context.Context) (kafka.Message, error) {
	s.mu.Lock()
	if len(s.queue) > 0 {
		msg := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		return msg, nil
	}
	s.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (s *fakeSource) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr != nil {
		return s.commitErr
	}
	s.committed = append(s.committed, msgs...)
	return nil
}

func (s *fakeSource) Close() error { return nil }

func (s *fakeSource) Committed() []kafka.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]kafka.Message(nil), s.committed...)
}

type fakeWriter struct {
	mu       sync.Mutex
	written  []kafka.Message
	failures int
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failures > 0 {
		w.failures--
		return errors.New("broker unavailable")
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// scriptedHandler returns errs in order, then nil.
type scriptedHandler struct {
	errs   []error
	always error
	calls  int
	onCall func(n int)
}

func (h *scriptedHandler) Handle(ctx context.Context, event order.PaymentEvent) (order.ReconciliationOutcome, error) {
	h.calls++
	if h.onCall != nil {
		h.onCall(h.calls)
	}
	if h.always != nil {
		return "", h.always
	}
	if len(h.errs) > 0 {
		err := h.errs[0]
		h.errs = h.errs[1:]
		return "", err
	}
	return order.OutcomePayed, nil
}

const validPayment = `{"payment_id":"pay-1","order_id":"order-1","payment_amount":"25.00","timestamp":"2024-03-01T10:00:00Z","status":"SUCCESS"}`

func message(value string, offset int64) kafka.Message {
	return kafka.Message{Topic: "payments", Partition: 0, Offset: offset, Value: []byte(value)}
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func noBackoff() ConsumerOption {
	return WithBackoff(0, 0)
}

func TestProcess_CommitsHandledMessage(t *testing.T) {
	source := &fakeSource{}
	handler := &scriptedHandler{}
	c := NewPaymentConsumer(source, handler, noBackoff())

	require.NoError(t, c.Process(context.Background(), message(validPayment, 7)))
	assert.Equal(t, 1, handler.calls)
	require.Len(t, source.Committed(), 1)
	assert.Equal(t, int64(7), source.Committed()[0].Offset)
}

func TestProcess_PoisonGoesToDeadLetter(t *testing.T) {
	source := &fakeSource{}
	handler := &scriptedHandler{}
	dlq := &fakeWriter{}
	c := NewPaymentConsumer(source, handler, noBackoff(), WithDeadLetter(dlq))
	before := testutil.ToFloat64(metrics.DeadLetteredTotal.WithLabelValues(ReasonPoison))

	require.NoError(t, c.Process(context.Background(), message("{not json", 3)))

	assert.Zero(t, handler.calls)
	require.Len(t, dlq.written, 1)
	assert.Equal(t, "{not json", string(dlq.written[0].Value))
	assert.Equal(t, ReasonPoison, header(dlq.written[0], "dlq_reason"))
	assert.Equal(t, "payments/0/3", header(dlq.written[0], "dlq_source"))
	assert.Len(t, source.Committed(), 1)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.DeadLetteredTotal.WithLabelValues(ReasonPoison)))
}

func TestProcess_PoisonWithoutDeadLetterIsSkipped(t *testing.T) {
	source := &fakeSource{}
	c := NewPaymentConsumer(source, &scriptedHandler{}, noBackoff())

	require.NoError(t, c.Process(context.Background(), message(`{"order_id":true}`, 1)))
	assert.Len(t, source.Committed(), 1)
}

func TestProcess_ValidationFailureIsNotRedelivered(t *testing.T) {
	source := &fakeSource{}
	handler := &scriptedHandler{always: order.NewInvalidPaymentEventError("payment_id is required")}
	dlq := &fakeWriter{}
	c := NewPaymentConsumer(source, handler, noBackoff(), WithDeadLetter(dlq))

	require.NoError(t, c.Process(context.Background(), message(validPayment, 1)))
	assert.Equal(t, 1, handler.calls)
	require.Len(t, dlq.written, 1)
	assert.Equal(t, ReasonPoison, header(dlq.written[0], "dlq_reason"))
	assert.Len(t, source.Committed(), 1)
}

func TestProcess_RecoversAfterTransientFailures(t *testing.T) {
	source := &fakeSource{}
	handler := &scriptedHandler{errs: []error{errors.New("db down"), order.NewConcurrentModificationError("order-1")}}
	dlq := &fakeWriter{}
	c := NewPaymentConsumer(source, handler, noBackoff(), WithDeadLetter(dlq), WithMaxRedeliveries(5))

	require.NoError(t, c.Process(context.Background(), message(validPayment, 1)))
	assert.Equal(t, 3, handler.calls)
	assert.Empty(t, dlq.written)
	assert.Len(t, source.Committed(), 1)
}

func TestProcess_DeadLettersAfterMaxRedeliveries(t *testing.T) {
	source := &fakeSource{}
	handler := &scriptedHandler{always: shared.NewPersistenceError("order", "update", errors.New("lock wait timeout"))}
	dlq := &fakeWriter{failures: 1}
	c := NewPaymentConsumer(source, handler, noBackoff(), WithDeadLetter(dlq), WithMaxRedeliveries(2))

	require.NoError(t, c.Process(context.Background(), message(validPayment, 9)))
	assert.Equal(t, 3, handler.calls)
	require.Len(t, dlq.written, 1)
	assert.Equal(t, ReasonMaxRedeliveries, header(dlq.written[0], "dlq_reason"))
	assert.Contains(t, header(dlq.written[0], "dlq_error"), "lock wait timeout")
	assert.Len(t, source.Committed(), 1)
}

func TestProcess_MissingOrderIsNeverDeadLettered(t *testing.T) {
	source := &fakeSource{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := &scriptedHandler{
		always: order.NewOrderNotFoundError("order-1"),
		onCall: func(n int) {
			if n == 6 {
				cancel()
			}
		},
	}
	dlq := &fakeWriter{}
	c := NewPaymentConsumer(source, handler, noBackoff(), WithDeadLetter(dlq), WithMaxRedeliveries(1))

	err := c.Process(ctx, message(validPayment, 4))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 6, handler.calls)
	assert.Empty(t, dlq.written)
	assert.Empty(t, source.Committed())
}

func TestProcess_CancelLeavesMessageUncommitted(t *testing.T) {
	source := &fakeSource{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := &scriptedHandler{
		always: errors.New("db down"),
		onCall: func(n int) {
			if n == 4 {
				cancel()
			}
		},
	}
	c := NewPaymentConsumer(source, handler, noBackoff(), WithMaxRedeliveries(1))

	err := c.Process(ctx, message(validPayment, 1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 4, handler.calls, "without a dead letter topic the message is retried past the limit")
	assert.Empty(t, source.Committed())
}

func TestProcess_CommitFailureIsReturned(t *testing.T) {
	source := &fakeSource{commitErr: errors.New("rebalance in progress")}
	c := NewPaymentConsumer(source, &scriptedHandler{}, noBackoff())

	err := c.Process(context.Background(), message(validPayment, 1))
	assert.ErrorContains(t, err, "payments/0/1")
}

func TestRun_ReconcilesAndStopsOnCancel(t *testing.T) {
	ctx := context.Background()
	items := mocks.NewMockItemRepository()
	item, err := catalog.NewItem("Widget", shared.MustParseMoney("12.50"))
	require.NoError(t, err)
	require.NoError(t, items.Save(ctx, item))
	o, err := order.NewOrder(ctx, "alice", []order.LineRequest{{ItemID: item.ID(), Quantity: 2}}, catalog.RepositoryLookup{Repo: items})
	require.NoError(t, err)
	orders := mocks.NewMockOrderRepository()
	require.NoError(t, orders.Save(ctx, o))

	source := &fakeSource{queue: []kafka.Message{
		message(`{"payment_id":"pay-1","order_id":"`+o.ID()+`","payment_amount":25,"timestamp":"2024-03-01T10:00:00Z","status":"success"}`, 1),
	}}
	c := NewPaymentConsumer(source, payment.NewReconciliationService(orders, mocks.NewMockUnitOfWorkFactory()), noBackoff())

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- c.Run(runCtx) }()

	require.Eventually(t, func() bool { return len(source.Committed()) == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}

	stored, err := orders.FindByID(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.StatusPayed, stored.Status())
}
