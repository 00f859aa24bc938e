package kafka

import (
	"context"
	"time"

	"ordersvc/infrastructure/persistence/mysql"

	"github.com/segmentio/kafka-go"
)

// EventPublisher relays outbox events to a topic, keyed by aggregate id.
type EventPublisher struct {
	writer MessageWriter
}

func NewEventPublisher(writer MessageWriter) *EventPublisher {
	return &EventPublisher{writer: writer}
}

func (p *EventPublisher) Publish(ctx context.Context, eventType, key, payload string) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: []byte(payload),
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	})
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}

var _ mysql.OutboxPublisher = (*EventPublisher)(nil)
