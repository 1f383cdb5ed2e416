// Command crm-audit consumes CRM change events from Kafka and writes them to
// the log as an audit trail.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gartstein/crm/internal/crm/config"
	"github.com/gartstein/crm/internal/crm/events"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if !cfg.EventsEnabled() {
		logger.Fatal("KAFKA_BROKERS is required")
	}

	consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, cfg.Topic, logger)
	consumer.RegisterHandler(func(_ context.Context, ev events.Event) error {
		logger.Info("CRM event",
			zap.String("type", string(ev.Type)),
			zap.String("entity", string(ev.Entity)),
			zap.Stringer("entity_id", ev.EntityID),
			zap.Time("occurred_at", ev.OccurredAt),
		)
		return nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer.Start(ctx)
	logger.Info("Audit consumer started",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.Topic),
		zap.String("group", cfg.ConsumerGroup),
	)

	<-ctx.Done()
	<-consumer.Done()
	consumer.Close()
	logger.Info("Audit consumer stopped")
}
