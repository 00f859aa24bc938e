package mysql

import (
	"context"
	"errors"
	"time"

	"ordersvc/pkg/logger"
	"ordersvc/pkg/metrics"

	"go.uber.org/zap"
)

// OutboxPublisher delivers one stored event. key is the aggregate id so a
// partitioned broker keeps the events of one order in sequence.
type OutboxPublisher interface {
	Publish(ctx context.Context, eventType, key, payload string) error
}

// LoggingOutboxPublisher only logs; used when no broker is configured.
type LoggingOutboxPublisher struct{}

func (p *LoggingOutboxPublisher) Publish(ctx context.Context, eventType, key, payload string) error {
	logger.Ctx(ctx).Info("Outbox event relayed to log",
		zap.String("event_type", eventType),
		zap.String("key", key),
		zap.String("payload", payload),
	)
	return nil
}

// OutboxWorker polls the outbox and relays pending events. A failed publish
// is retried on later polls until maxRetries failures, then parked as FAILED.
type OutboxWorker struct {
	outbox       *OutboxRepository
	publisher    OutboxPublisher
	pollInterval time.Duration
	batchSize    int
	maxRetries   int
}

func NewOutboxWorker(outbox *OutboxRepository, publisher OutboxPublisher, pollInterval time.Duration, batchSize, maxRetries int) (*OutboxWorker, error) {
	switch {
	case outbox == nil:
		return nil, errors.New("outbox repository is required")
	case publisher == nil:
		return nil, errors.New("outbox publisher is required")
	case pollInterval <= 0:
		return nil, errors.New("poll interval must be positive")
	case batchSize <= 0:
		return nil, errors.New("batch size must be positive")
	case maxRetries <= 0:
		return nil, errors.New("max retries must be positive")
	}
	return &OutboxWorker{
		outbox:       outbox,
		publisher:    publisher,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		maxRetries:   maxRetries,
	}, nil
}

// Run polls until ctx is canceled. A canceled context is a clean stop.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	logger.Info("Outbox worker started",
		zap.Duration("poll_interval", w.pollInterval),
		zap.Int("batch_size", w.batchSize),
	)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Outbox worker stopped")
			return nil
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
				logger.Error("Outbox batch processing failed", zap.Error(err))
			}
		}
	}
}

// ProcessBatch relays up to batchSize pending events and reports how many
// were published.
func (w *OutboxWorker) ProcessBatch(ctx context.Context) (int, error) {
	events, err := w.outbox.GetPendingEvents(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, event := range events {
		if ctx.Err() != nil {
			break
		}
		if w.relay(ctx, event.ID, event.EventType, event.AggregateID, event.Payload) {
			published++
		}
	}
	return published, nil
}

func (w *OutboxWorker) relay(ctx context.Context, id, eventType, key, payload string) bool {
	log := logger.Ctx(ctx).With(zap.String("event_id", id), zap.String("event_type", eventType))

	claimed, err := w.outbox.MarkEventProcessing(ctx, id)
	if err != nil {
		log.Warn("Failed to claim outbox event", zap.Error(err))
		return false
	}
	if !claimed {
		return false
	}

	if err := w.publisher.Publish(ctx, eventType, key, payload); err != nil {
		metrics.OutboxEventsTotal.WithLabelValues(eventType, "failed").Inc()
		log.Warn("Failed to publish outbox event", zap.Error(err))
		if markErr := w.outbox.MarkEventFailed(ctx, id, w.maxRetries, err); markErr != nil {
			log.Error("Failed to record outbox publish failure", zap.Error(markErr))
		}
		return false
	}

	if err := w.outbox.MarkEventPublished(ctx, id); err != nil {
		log.Error("Failed to mark outbox event as published", zap.Error(err))
		return false
	}
	metrics.OutboxEventsTotal.WithLabelValues(eventType, "published").Inc()
	return true
}
