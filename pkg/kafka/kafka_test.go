package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skybridge/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
}

type mockWriter struct {
	mu        sync.Mutex
	messages  []kafka.Message
	writeFunc func(msgs ...kafka.Message) error
	closed    bool
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.writeFunc != nil {
		if err := w.writeFunc(msgs...); err != nil {
			return err
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *mockWriter) Close() error {
	w.closed = true
	return nil
}

func header(km kafka.Message, key string) string {
	for _, h := range km.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

type mockReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
	closed    chan struct{}
	once      sync.Once
}

func newMockReader(msgs ...kafka.Message) *mockReader {
	return &mockReader{pending: msgs, closed: make(chan struct{})}
}

func (r *mockReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		km := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return km, nil
	}
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case <-r.closed:
		return kafka.Message{}, io.EOF
	}
}

func (r *mockReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *mockReader) Close() error {
	r.once.Do(func() { close(r.closed) })
	return nil
}

func (r *mockReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func sampleEvent() BookingEvent {
	return BookingEvent{
		BookingID:     "65f000000000000000000001",
		BookingRef:    "GEM-ABC123",
		UserID:        "user-1",
		RoomTypeID:    "65f000000000000000000002",
		TotalAmount:   335.97,
		BookingStatus: "PENDING",
	}
}

func TestNewBookingEventMessage(t *testing.T) {
	msg, err := NewBookingEventMessage(EventBookingCreated, "bookings", "req-1", sampleEvent())
	require.NoError(t, err)

	assert.Equal(t, "GEM-ABC123", msg.Key)
	assert.Equal(t, EventBookingCreated, msg.EventType())
	assert.Equal(t, "GEM-ABC123", msg.BookingRef())
	assert.Equal(t, "req-1", msg.CorrelationID())
	assert.NotEmpty(t, msg.EventID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])

	var decoded BookingEvent
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, 335.97, decoded.TotalAmount)
	assert.False(t, decoded.OccurredAt.IsZero())
}

func TestNewPropertyEventMessage(t *testing.T) {
	msg, err := NewPropertyEventMessage(EventPropertyRejected, "bookings", "", PropertyEvent{
		PropertyID:      "65f0000000000000000000a1",
		PropertyName:    "Cebu Seaside Resort & Spa",
		OwnerEmail:      "owner@cordovahotels.com",
		Status:          "REJECTED",
		RejectionReason: "Photos are blurry",
	})
	require.NoError(t, err)

	assert.Equal(t, "65f0000000000000000000a1", msg.Key)
	assert.Equal(t, "65f0000000000000000000a1", msg.PropertyID())
	assert.Empty(t, msg.BookingRef())
	assert.Empty(t, msg.CorrelationID())
	assert.Equal(t, PropertyEventSchemaVersion, msg.Headers[HeaderSchemaVersion])

	var decoded PropertyEvent
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, "Photos are blurry", decoded.RejectionReason)
	assert.False(t, decoded.OccurredAt.IsZero())
}

func TestMessageBuilder_EncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Equal(t, ErrorTypePermanent, ClassifyError(err))
}

func TestMessage_RetryCount(t *testing.T) {
	var msg Message
	assert.Equal(t, 0, msg.RetryCount())

	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.RetryCount())
	assert.Equal(t, "12", msg.Headers[HeaderRetryCount])
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("smtp down", errors.New("eof")), ErrorTypeTransient},
		{"explicit permanent", NewPermanentError("bad payload", nil), ErrorTypePermanent},
		{"deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"network text", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown", errors.New("something odd"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("timeout", nil)
	assert.True(t, ShouldRetry(transient, 0, 3))
	assert.False(t, ShouldRetry(transient, 3, 3))
	assert.False(t, ShouldRetry(NewPermanentError("bad", nil), 0, 3))
	assert.False(t, ShouldRetry(nil, 0, 3))
}

func TestProducer_Publish(t *testing.T) {
	writer := &mockWriter{}
	p := newProducer(writer, nil, "booking-events", testLogger())

	var seen []string
	p.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		seen = append(seen, msg.Topic)
		return next(ctx, msg)
	})

	msg, err := NewBookingEventMessage(EventBookingCreated, "bookings", "", sampleEvent())
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), msg))

	require.Len(t, writer.messages, 1)
	assert.Equal(t, "GEM-ABC123", string(writer.messages[0].Key))
	assert.Equal(t, EventBookingCreated, header(writer.messages[0], HeaderEventType))
	assert.Equal(t, []string{"booking-events"}, seen)
}

func TestProducer_Validation(t *testing.T) {
	p := newProducer(&mockWriter{}, nil, "booking-events", testLogger())

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("{}")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")}), ErrProducerClosed)
}

func TestProducer_FailureGoesToDLQ(t *testing.T) {
	writeErr := errors.New("leader not available")
	writer := &mockWriter{writeFunc: func(...kafka.Message) error { return writeErr }}
	dlq := &mockWriter{}
	p := newProducer(writer, dlq, "booking-events", testLogger())

	msg, err := NewBookingEventMessage(EventBookingCancelled, "bookings", "", sampleEvent())
	require.NoError(t, err)

	err = p.Publish(context.Background(), msg)
	assert.ErrorIs(t, err, writeErr)
	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "booking-events", header(dlq.messages[0], HeaderOriginalTopic))
	assert.Equal(t, writeErr.Error(), header(dlq.messages[0], headerDLQError))
	_, hasOriginal := msg.Headers[HeaderOriginalTopic]
	assert.False(t, hasOriginal, "caller's headers must not be mutated")
}

func runConsumer(t *testing.T, c *Consumer, reader *mockReader, want int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return reader.committedCount() == want }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestConsumer_ProcessesAndCommits(t *testing.T) {
	msg, err := NewBookingEventMessage(EventBookingConfirmed, "payments", "", sampleEvent())
	require.NoError(t, err)
	reader := newMockReader(toKafkaMessage(msg))

	var got []string
	c := newConsumer(reader, nil, "booking-events", "notifier", 3, func(_ context.Context, m Message) error {
		got = append(got, m.EventType())
		return nil
	}, testLogger())

	runConsumer(t, c, reader, 1)
	assert.Equal(t, []string{EventBookingConfirmed}, got)
}

func TestConsumer_RetriesTransientThenDeadLetters(t *testing.T) {
	msg, err := NewBookingEventMessage(EventBookingConfirmed, "payments", "", sampleEvent())
	require.NoError(t, err)
	reader := newMockReader(toKafkaMessage(msg))
	dlq := &mockWriter{}

	attempts := 0
	c := newConsumer(reader, dlq, "booking-events", "notifier", 2, func(context.Context, Message) error {
		attempts++
		return NewTransientError("smtp unavailable", nil)
	}, testLogger())
	c.backoff = func(int) time.Duration { return time.Millisecond }

	runConsumer(t, c, reader, 1)

	assert.Equal(t, 3, attempts)
	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "notifier", header(dlq.messages[0], headerDLQGroup))
	assert.Equal(t, "2", header(dlq.messages[0], HeaderRetryCount))
}

func TestConsumer_PermanentErrorIsNotRetried(t *testing.T) {
	reader := newMockReader(kafka.Message{Key: []byte("GEM-ABC123"), Value: []byte("not json")})
	dlq := &mockWriter{}

	attempts := 0
	c := newConsumer(reader, dlq, "booking-events", "notifier", 3, func(_ context.Context, m Message) error {
		attempts++
		var event BookingEvent
		return m.DecodeValue(&event)
	}, testLogger())

	runConsumer(t, c, reader, 1)

	assert.Equal(t, 1, attempts)
	assert.Len(t, dlq.messages, 1)
}

func TestConsumer_CloseStopsStart(t *testing.T) {
	reader := newMockReader()
	c := newConsumer(reader, nil, "booking-events", "notifier", 0, func(context.Context, Message) error { return nil }, testLogger())

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background()) }()

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, c.Close())
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrConsumerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Close")
	}
	assert.ErrorIs(t, c.Start(context.Background()), ErrConsumerClosed)
}
