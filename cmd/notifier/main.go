package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"skybridge/internal/notifications"
	"skybridge/pkg/config"
	"skybridge/pkg/kafka"
	kafka_config "skybridge/pkg/kafka/config"
	kafka_middleware "skybridge/pkg/kafka/middleware"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	defer cfg.GracefulShutdown()

	kcfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kcfg.LogConfiguration(cfg.Log)

	if cfg.SMTP.Host == "" {
		cfg.Log.Warn("SMTP host not configured, confirmation emails will fail and land in the DLQ")
	}
	handler := notifications.NewHandler(notifications.NewSMTPMailer(cfg.SMTP), cfg.Log)

	consumer, err := kafka.NewConsumer(
		kcfg,
		cfg.BookingEventsTopic,
		cfg.NotifierGroupID,
		config.DefaultNotifierDLQ,
		handler.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kcfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(metrics.ConsumerMiddleware())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notifier",
		"topic", cfg.BookingEventsTopic,
		"group_id", cfg.NotifierGroupID,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}

	_, consumed := metrics.Snapshot()
	for eventType, c := range consumed {
		cfg.Log.Info("Consumed events",
			"event_type", eventType,
			"succeeded", c.Succeeded,
			"failed", c.Failed,
			"avg_duration", c.AvgDuration(),
		)
	}
	cfg.Log.Info("Notifier stopped")
}
