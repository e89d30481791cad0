package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/adapters/event"
	"github.com/whopranjalshah/me-api-playground/adapters/persistence"
	auditUC "github.com/whopranjalshah/me-api-playground/internal/application/usecase/audit"
	"github.com/whopranjalshah/me-api-playground/internal/config"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

// The worker consumes profile events and writes them to the audit log.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	log := logger.NewZapLogger(cfg.App.Env, cfg.App.LogLevel).With(zap.String("component", "audit-worker"))
	defer log.Sync()

	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Brokers[0] == "" {
		log.Fatal("Worker needs kafka.brokers", errors.New("no brokers configured"))
	}

	dbPool, err := persistence.NewPostgresPool(cfg, log)
	if err != nil {
		log.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	recordEventUC := auditUC.NewRecordEventUseCase(persistence.NewPostgresAuditRepo(dbPool), log)

	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicProfileEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Worker listening", zap.String("topic", event.TopicProfileEvents), zap.String("group_id", cfg.Kafka.GroupID))

	err = event.NewProfileEventConsumer(consumer, recordEventUC.Execute, log).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Worker stopped unexpectedly", err)
		return
	}
	log.Info("Worker stopped")
}
