package cmd

import (
	"context"

	"ordersvc/application/payment"
	"ordersvc/config"
	"ordersvc/infrastructure/messaging/kafka"
	"ordersvc/infrastructure/persistence/mysql"
	"ordersvc/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner is a background loop that stops cleanly when ctx is canceled.
type Runner struct {
	Name string
	Run  func(ctx context.Context) error
}

// NewRunners builds the outbox relay (database storage only) and the
// payment consumer (when Kafka is enabled).
func NewRunners(cfg *config.Config, infra *Infrastructure) ([]Runner, error) {
	if !cfg.Worker.Enabled {
		return nil, nil
	}

	var runners []Runner
	client := kafka.NewClient(cfg.Kafka.Brokers)
	useKafka := cfg.Kafka.Enabled && client.Enabled()

	if infra.Outbox != nil {
		var publisher mysql.OutboxPublisher = &mysql.LoggingOutboxPublisher{}
		var eventPublisher *kafka.EventPublisher
		if useKafka {
			eventPublisher = kafka.NewEventPublisher(client.NewWriter(cfg.Kafka.EventsTopic))
			publisher = eventPublisher
		}
		worker, err := mysql.NewOutboxWorker(infra.Outbox, publisher,
			cfg.Worker.PollInterval, cfg.Worker.BatchSize, cfg.Worker.MaxRetries)
		if err != nil {
			return nil, err
		}
		runners = append(runners, Runner{Name: "outbox", Run: func(ctx context.Context) error {
			if eventPublisher != nil {
				defer eventPublisher.Close()
			}
			return worker.Run(ctx)
		}})
	}

	if useKafka {
		var deadLetter kafka.MessageWriter
		if cfg.Kafka.DeadLetterTopic != "" {
			deadLetter = client.NewWriter(cfg.Kafka.DeadLetterTopic)
		}
		consumer := kafka.NewPaymentConsumer(
			client.NewReader(cfg.Kafka.PaymentTopic, cfg.Kafka.ConsumerGroup),
			payment.NewReconciliationService(infra.OrderRepo, infra.UoWFactory),
			kafka.ConsumerOptions(cfg.Kafka, deadLetter)...,
		)
		runners = append(runners, Runner{Name: "payments", Run: func(ctx context.Context) error {
			defer consumer.Close()
			return consumer.Run(ctx)
		}})
	}
	return runners, nil
}

// RunAll runs every runner until ctx is canceled or one of them fails.
func RunAll(ctx context.Context, runners []Runner) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		r := r
		g.Go(func() error {
			logger.Info("Background runner started", zap.String("runner", r.Name))
			err := r.Run(ctx)
			if err != nil {
				logger.Error("Background runner failed", zap.String("runner", r.Name), zap.Error(err))
			}
			return err
		})
	}
	return g.Wait()
}
