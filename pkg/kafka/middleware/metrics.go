package kafka_middleware

import (
	"context"
	"sync"
	"time"

	"skybridge/pkg/kafka"
)

// Counters are per event type totals for one direction of traffic.
type Counters struct {
	Succeeded int64
	Failed    int64
	Duration  time.Duration
}

func (c Counters) AvgDuration() time.Duration {
	total := c.Succeeded + c.Failed
	if total == 0 {
		return 0
	}
	return c.Duration / time.Duration(total)
}

type Metrics struct {
	mu        sync.Mutex
	published map[string]Counters
	consumed  map[string]Counters
}

func NewMetrics() *Metrics {
	return &Metrics{
		published: make(map[string]Counters),
		consumed:  make(map[string]Counters),
	}
}

func (m *Metrics) record(target map[string]Counters, eventType string, d time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := target[eventType]
	if err != nil {
		c.Failed++
	} else {
		c.Succeeded++
	}
	c.Duration += d
	target[eventType] = c
}

func (m *Metrics) Published(eventType string) Counters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.published[eventType]
}

func (m *Metrics) Consumed(eventType string) Counters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consumed[eventType]
}

// Snapshot copies both counter sets.
func (m *Metrics) Snapshot() (published, consumed map[string]Counters) {
	m.mu.Lock()
	defer m.mu.Unlock()

	published = make(map[string]Counters, len(m.published))
	for k, v := range m.published {
		published[k] = v
	}
	consumed = make(map[string]Counters, len(m.consumed))
	for k, v := range m.consumed {
		consumed[k] = v
	}
	return published, consumed
}

func (m *Metrics) ProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.record(m.published, msg.EventType(), time.Since(start), err)
		return err
	}
}

func (m *Metrics) ConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.record(m.consumed, msg.EventType(), time.Since(start), err)
		return err
	}
}
