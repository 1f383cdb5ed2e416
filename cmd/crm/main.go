package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gartstein/crm/internal/crm/config"
	"github.com/gartstein/crm/internal/crm/controller"
	"github.com/gartstein/crm/internal/crm/db"
	"github.com/gartstein/crm/internal/crm/events"
	"github.com/gartstein/crm/internal/crm/handlers"
	"github.com/gartstein/crm/internal/crm/metrics"
	"github.com/gartstein/crm/internal/crm/query"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const healthInterval = 15 * time.Second

type eventProducer interface {
	controller.EventProducer
	Close()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger depends on the environment from the config.
		fallback, _ := zap.NewProduction()
		fallback.Fatal("failed to load config", zap.Error(err))
	}

	logger := initLogger(cfg)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	repo, err := db.NewRepository(cfg.Database())
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}()

	producer := initProducer(cfg, logger)
	defer producer.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := metrics.NewStoreMetrics(registry)

	builder := query.NewBuilder(cfg.Query())
	companySvc := controller.NewCompanyService(repo, producer, builder, storeMetrics, logger)
	contactSvc := controller.NewContactService(repo, producer, builder, storeMetrics, logger)

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger,
		handlers.WithCORSOrigins(cfg.CORSOrigins...),
		handlers.WithMetrics(registry),
		handlers.WithShutdownTimeout(cfg.ShutdownTimeout),
	)
	if err := server.RegisterRoutes(
		handlers.NewCompanyHandler(companySvc, logger),
		handlers.NewContactHandler(contactSvc, logger),
	); err != nil {
		logger.Fatal("Failed to register routes", zap.Error(err))
	}
	if err := server.RegisterHealth(repo); err != nil {
		logger.Fatal("Failed to register health check", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server.WatchHealth(ctx, repo, healthInterval)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start servers", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

// initLogger builds a development logger when ENVIRONMENT=development and a
// production logger otherwise.
func initLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger.With(zap.String("service", "crm"))
}

// initProducer falls back to a no-op producer when no brokers are configured
// or Kafka cannot be reached.
func initProducer(cfg *config.Config, logger *zap.Logger) eventProducer {
	if !cfg.EventsEnabled() {
		logger.Info("Kafka brokers not configured, events disabled")
		return events.NewNopProducer(logger)
	}
	producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
	if err != nil {
		logger.Error("failed to initialize Kafka producer, events disabled", zap.Error(err))
		return events.NewNopProducer(logger)
	}
	return producer
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then shuts down servers.
func waitForShutdown(server *handlers.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.Stop()
	logger.Info("Servers stopped properly")
}
