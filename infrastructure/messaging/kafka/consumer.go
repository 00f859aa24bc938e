package kafka

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ordersvc/application/payment"
	"ordersvc/config"
	"ordersvc/domain/order"
	"ordersvc/domain/shared"
	"ordersvc/infrastructure/persistence"
	"ordersvc/infrastructure/persistence/retry"
	"ordersvc/pkg/logger"
	"ordersvc/pkg/metrics"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageSource is the part of *kafka.Reader the consumer needs.
type MessageSource interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageWriter is the part of *kafka.Writer the consumer and publisher need.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PaymentHandler reconciles one decoded payment event.
type PaymentHandler interface {
	Handle(ctx context.Context, event order.PaymentEvent) (order.ReconciliationOutcome, error)
}

// Dead-letter reasons, also used as metric labels.
const (
	ReasonPoison          = "poison"
	ReasonMaxRedeliveries = "max_redeliveries"
)

// PaymentConsumer reads payment events and commits each offset only after
// the event is handled, ignored, or dead-lettered. A failed message blocks
// its partition and is redelivered in process with a growing backoff.
type PaymentConsumer struct {
	source          MessageSource
	handler         PaymentHandler
	deadLetter      MessageWriter
	maxRedeliveries int
	backoff         retry.Config
}

type ConsumerOption func(*PaymentConsumer)

// WithDeadLetter enables dead-lettering. Without it poison messages are
// logged and skipped, and failing messages are retried forever.
func WithDeadLetter(w MessageWriter) ConsumerOption {
	return func(c *PaymentConsumer) {
		c.deadLetter = w
	}
}

func WithMaxRedeliveries(n int) ConsumerOption {
	return func(c *PaymentConsumer) {
		c.maxRedeliveries = n
	}
}

func WithBackoff(minDelay, maxDelay time.Duration) ConsumerOption {
	return func(c *PaymentConsumer) {
		c.backoff.InitialDelay = minDelay
		c.backoff.MaxDelay = maxDelay
	}
}

func NewPaymentConsumer(source MessageSource, handler PaymentHandler, opts ...ConsumerOption) *PaymentConsumer {
	c := &PaymentConsumer{
		source:          source,
		handler:         handler,
		maxRedeliveries: 5,
		backoff: retry.Config{
			InitialDelay:  200 * time.Millisecond,
			MaxDelay:      10 * time.Second,
			BackoffFactor: 2,
			JitterEnabled: true,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConsumerOptions maps the kafka section of the configuration.
func ConsumerOptions(cfg config.KafkaConfig, deadLetter MessageWriter) []ConsumerOption {
	opts := []ConsumerOption{
		WithMaxRedeliveries(cfg.MaxRedeliveries),
		WithBackoff(cfg.MinBackoff, cfg.MaxBackoff),
	}
	if deadLetter != nil && cfg.DeadLetterTopic != "" {
		opts = append(opts, WithDeadLetter(deadLetter))
	}
	return opts
}

// Run consumes until ctx is canceled. A canceled context is a clean stop.
func (c *PaymentConsumer) Run(ctx context.Context) error {
	logger.Info("Payment consumer started",
		zap.Int("max_redeliveries", c.maxRedeliveries),
		zap.Bool("dead_letter", c.deadLetter != nil),
	)
	fetchFailures := 0
	for {
		msg, err := c.source.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Payment consumer stopped")
				return nil
			}
			fetchFailures++
			logger.Warn("Failed to fetch payment message", zap.Int("failures", fetchFailures), zap.Error(err))
			if err := retry.Sleep(ctx, retry.ExponentialBackoffWithJitter(fetchFailures, c.backoff)); err != nil {
				logger.Info("Payment consumer stopped")
				return nil
			}
			continue
		}
		fetchFailures = 0

		if err := c.Process(ctx, msg); err != nil {
			if ctx.Err() != nil {
				logger.Info("Payment consumer stopped")
				return nil
			}
			logger.Error("Payment message left uncommitted",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// Process handles one message to completion and commits it. It returns an
// error only when ctx ends first or the commit itself fails.
func (c *PaymentConsumer) Process(ctx context.Context, msg kafka.Message) error {
	ctx = persistence.ContextWithRequestID(ctx, messageID(msg))
	fields := []zap.Field{
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	}

	event, err := payment.Decode(msg.Value)
	if err != nil {
		metrics.PaymentEventsTotal.WithLabelValues(ReasonPoison).Inc()
		logger.Warn("Poison payment message", append(fields, zap.Error(err))...)
		if err := c.sendToDeadLetter(ctx, msg, ReasonPoison, err); err != nil {
			return err
		}
		return c.commit(ctx, msg)
	}

	for attempt := 1; ; attempt++ {
		_, err := c.handler.Handle(ctx, event.ToDomain())
		if err == nil {
			return c.commit(ctx, msg)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Validation failures will not get better on redelivery.
		if errors.Is(err, shared.ErrInvalidInput) {
			logger.Warn("Poison payment message", append(fields, zap.Error(err))...)
			if err := c.sendToDeadLetter(ctx, msg, ReasonPoison, err); err != nil {
				return err
			}
			return c.commit(ctx, msg)
		}

		// An order that is not visible yet is never acknowledged; keep
		// redelivering at the capped backoff.
		if c.deadLetter != nil && attempt > c.maxRedeliveries && !errors.Is(err, shared.ErrNotFound) {
			logger.Warn("Payment message exhausted redeliveries",
				append(fields, zap.Int("attempts", attempt), zap.Error(err))...)
			if err := c.sendToDeadLetter(ctx, msg, ReasonMaxRedeliveries, err); err != nil {
				return err
			}
			return c.commit(ctx, msg)
		}

		if err := retry.Sleep(ctx, retry.ExponentialBackoffWithJitter(attempt, c.backoff)); err != nil {
			return err
		}
	}
}

// sendToDeadLetter keeps trying until the write succeeds or ctx ends, since
// committing a message that reached neither handler nor DLQ would lose it.
func (c *PaymentConsumer) sendToDeadLetter(ctx context.Context, msg kafka.Message, reason string, cause error) error {
	if c.deadLetter == nil {
		return nil
	}
	dead := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Time:  time.Now().UTC(),
		Headers: append(append([]kafka.Header{}, msg.Headers...),
			kafka.Header{Key: "dlq_reason", Value: []byte(reason)},
			kafka.Header{Key: "dlq_error", Value: []byte(cause.Error())},
			kafka.Header{Key: "dlq_source", Value: []byte(messageID(msg))},
		),
	}
	for attempt := 1; ; attempt++ {
		err := c.deadLetter.WriteMessages(ctx, dead)
		if err == nil {
			metrics.DeadLetteredTotal.WithLabelValues(reason).Inc()
			return nil
		}
		logger.Error("Failed to write dead letter", zap.String("reason", reason), zap.Error(err))
		if err := retry.Sleep(ctx, retry.ExponentialBackoffWithJitter(attempt, c.backoff)); err != nil {
			return err
		}
	}
}

func (c *PaymentConsumer) commit(ctx context.Context, msg kafka.Message) error {
	if err := c.source.CommitMessages(ctx, msg); err != nil {
		return fmt.Errorf("commit %s: %w", messageID(msg), err)
	}
	return nil
}

func (c *PaymentConsumer) Close() error {
	var errs []error
	if err := c.source.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.deadLetter != nil {
		if err := c.deadLetter.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func messageID(msg kafka.Message) string {
	return msg.Topic + "/" + strconv.Itoa(msg.Partition) + "/" + strconv.FormatInt(msg.Offset, 10)
}
