package kafka_middleware

import (
	"context"
	"time"

	"skybridge/pkg/kafka"
	"skybridge/pkg/logger"
)

func messageAttrs(msg kafka.Message) []any {
	return []any{
		"topic", msg.Topic,
		"key", msg.Key,
		"event_id", msg.EventID(),
		"event_type", msg.EventType(),
		"correlation_id", msg.CorrelationID(),
	}
}

func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		l := log.Ctx(ctx).With(messageAttrs(msg)...)

		err := next(ctx, msg)

		if err != nil {
			l.Error("Failed to publish message", "duration_ms", time.Since(start).Milliseconds(), "error", err)
			return err
		}
		l.Debug("Published message", "duration_ms", time.Since(start).Milliseconds())
		return nil
	}
}

// LoggingConsumerMiddleware also carries the message correlation id into the
// handler context as its request id.
func LoggingConsumerMiddleware(log *logger.Logger) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		if id := msg.CorrelationID(); id != "" {
			ctx = logger.WithRequestID(ctx, id)
		}
		l := log.Ctx(ctx).With(messageAttrs(msg)...).With(
			"partition", msg.Partition,
			"offset", msg.Offset,
			"retry_count", msg.RetryCount(),
		)
		l.Debug("Processing message")

		err := next(ctx, msg)

		if err != nil {
			l.Error("Failed to process message", "duration_ms", time.Since(start).Milliseconds(), "error", err)
			return err
		}
		l.Info("Processed message", "duration_ms", time.Since(start).Milliseconds())
		return nil
	}
}
