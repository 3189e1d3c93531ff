package notifications

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"skybridge/pkg/kafka"
	"skybridge/pkg/logger"
)

type mockSender struct {
	sent []Email
	err  error
}

func (m *mockSender) Send(ctx context.Context, email Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
}

func confirmedEvent() kafka.BookingEvent {
	return kafka.BookingEvent{
		BookingID:     "65f0000000000000000000c1",
		BookingRef:    "GEM-ABC123",
		GuestEmail:    "guest@example.com",
		CheckInDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate:  time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		Nights:        3,
		Adults:        2,
		Children:      1,
		TotalAmount:   335.97,
		BookingStatus: "CONFIRMED",
	}
}

func message(t *testing.T, eventType string, value any) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey("GEM-ABC123").
		WithValue(value).
		WithEventType(eventType).
		WithBookingRef("GEM-ABC123").
		Build()
	require.NoError(t, err)
	return msg
}

func TestConfirmationEmail(t *testing.T) {
	email, err := ConfirmationEmail(confirmedEvent())
	require.NoError(t, err)

	assert.Equal(t, "guest@example.com", email.To)
	assert.Equal(t, "Booking Confirmed - GEM-ABC123", email.Subject)
	assert.Contains(t, email.Text, "Check-in: March 1, 2026")
	assert.Contains(t, email.Text, "Number of nights: 3")
	assert.Contains(t, email.Text, "2 adult(s), 1 child(ren)")
	assert.Contains(t, email.Text, "PHP 335.97")
	assert.Contains(t, email.HTML, "<strong>GEM-ABC123</strong>")
}

func TestConfirmationEmail_EscapesHTML(t *testing.T) {
	event := confirmedEvent()
	event.BookingRef = "<script>"

	email, err := ConfirmationEmail(event)
	require.NoError(t, err)
	assert.NotContains(t, email.HTML, "<script>")
}

func TestHandle(t *testing.T) {
	sender := &mockSender{}
	h := NewHandler(sender, testLogger())

	require.NoError(t, h.Handle(context.Background(), message(t, kafka.EventBookingConfirmed, confirmedEvent())))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "guest@example.com", sender.sent[0].To)
}

func TestHandle_IgnoresOtherEvents(t *testing.T) {
	sender := &mockSender{}
	h := NewHandler(sender, testLogger())

	for _, eventType := range []string{kafka.EventBookingCreated, kafka.EventBookingCancelled, kafka.EventPaymentFailed} {
		require.NoError(t, h.Handle(context.Background(), message(t, eventType, confirmedEvent())))
	}
	assert.Empty(t, sender.sent)
}

func TestHandle_MalformedPayloadIsPermanent(t *testing.T) {
	h := NewHandler(&mockSender{}, testLogger())

	msg := message(t, kafka.EventBookingConfirmed, confirmedEvent())
	msg.Value = []byte(`{"booking_ref":`)

	err := h.Handle(context.Background(), msg)
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
}

func TestHandle_SendFailureIsTransient(t *testing.T) {
	h := NewHandler(&mockSender{err: errors.New("dial tcp: connection refused")}, testLogger())

	err := h.Handle(context.Background(), message(t, kafka.EventBookingConfirmed, confirmedEvent()))
	assert.Equal(t, kafka.ErrorTypeTransient, kafka.ClassifyError(err))
}

func TestHandle_NoGuestEmail(t *testing.T) {
	sender := &mockSender{}
	event := confirmedEvent()
	event.GuestEmail = ""

	err := NewHandler(sender, testLogger()).Handle(context.Background(), message(t, kafka.EventBookingConfirmed, event))
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

type mockDialer struct {
	messages []*gomail.Message
}

func (d *mockDialer) DialAndSend(m ...*gomail.Message) error {
	d.messages = append(d.messages, m...)
	return nil
}

func TestSMTPMailer_Send(t *testing.T) {
	d := &mockDialer{}
	mailer := &SMTPMailer{dialer: d, from: "bookings@skybridge.local"}

	err := mailer.Send(context.Background(), Email{To: "guest@example.com", Subject: "Hi", Text: "body"})
	require.NoError(t, err)
	require.Len(t, d.messages, 1)
	assert.Equal(t, []string{"guest@example.com"}, d.messages[0].GetHeader("To"))
	assert.Equal(t, []string{"Hi"}, d.messages[0].GetHeader("Subject"))
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	d := &mockDialer{}
	mailer := &SMTPMailer{dialer: d, from: "bookings@skybridge.local"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, mailer.Send(ctx, Email{To: "guest@example.com"}), context.Canceled)
	assert.Empty(t, d.messages)
}

func reviewedEvent(status, reason string) kafka.PropertyEvent {
	return kafka.PropertyEvent{
		PropertyID:      "65f0000000000000000000a1",
		PropertyName:    "Cebu Seaside Resort",
		OwnerID:         "owner-1",
		OwnerEmail:      "owner@cordovahotels.com",
		Status:          status,
		RejectionReason: reason,
	}
}

func propertyMessage(t *testing.T, eventType string, event kafka.PropertyEvent) kafka.Message {
	t.Helper()
	msg, err := kafka.NewPropertyEventMessage(eventType, "bookings", "req-1", event)
	require.NoError(t, err)
	return msg
}

func TestPropertyEmail(t *testing.T) {
	tests := []struct {
		name        string
		eventType   string
		event       kafka.PropertyEvent
		wantSubject string
		wantText    string
	}{
		{"submitted", kafka.EventPropertySubmitted, reviewedEvent("PENDING", ""), "Property Submitted - Under Review", "is now under review"},
		{"approved", kafka.EventPropertyApproved, reviewedEvent("PUBLISHED", ""), "Property Approved - Cebu Seaside Resort", "is now live"},
		{"rejected with reason", kafka.EventPropertyRejected, reviewedEvent("REJECTED", "Photos are blurry"), "Property Submission Feedback - Cebu Seaside Resort", "Reason: Photos are blurry"},
		{"rejected without reason", kafka.EventPropertyRejected, reviewedEvent("REJECTED", ""), "Property Submission Feedback - Cebu Seaside Resort", "Reason: No specific reason provided"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, ok, err := PropertyEmail(tt.eventType, tt.event)
			require.NoError(t, err)
			require.True(t, ok)

			assert.Equal(t, "owner@cordovahotels.com", email.To)
			assert.Equal(t, tt.wantSubject, email.Subject)
			assert.Contains(t, email.Text, "Dear Hotel Owner")
			assert.Contains(t, email.Text, tt.wantText)
			assert.Contains(t, email.Text, "65f0000000000000000000a1")
		})
	}
}

func TestPropertyEmail_UnknownEvent(t *testing.T) {
	_, ok, err := PropertyEmail(kafka.EventBookingCreated, reviewedEvent("PENDING", ""))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandle_PropertyEvents(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		event     kafka.PropertyEvent
		wantSent  int
	}{
		{"submitted", kafka.EventPropertySubmitted, reviewedEvent("PENDING", ""), 1},
		{"approved", kafka.EventPropertyApproved, reviewedEvent("PUBLISHED", ""), 1},
		{"rejected", kafka.EventPropertyRejected, reviewedEvent("REJECTED", "Incomplete address"), 1},
		{"owner without email", kafka.EventPropertyApproved, kafka.PropertyEvent{PropertyID: "65f0000000000000000000a1", Status: "PUBLISHED"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &mockSender{}
			err := NewHandler(sender, testLogger()).Handle(context.Background(), propertyMessage(t, tt.eventType, tt.event))
			require.NoError(t, err)
			assert.Len(t, sender.sent, tt.wantSent)
		})
	}
}

func TestHandle_PropertyEventFailures(t *testing.T) {
	tests := []struct {
		name     string
		sender   *mockSender
		mutate   func(msg *kafka.Message)
		wantType kafka.ErrorType
	}{
		{"malformed payload", &mockSender{}, func(msg *kafka.Message) { msg.Value = []byte(`{"property_id":`) }, kafka.ErrorTypePermanent},
		{"missing property id", &mockSender{}, func(msg *kafka.Message) { msg.Value = []byte(`{"owner_email":"owner@cordovahotels.com"}`) }, kafka.ErrorTypePermanent},
		{"smtp down", &mockSender{err: errors.New("dial tcp: connection refused")}, func(*kafka.Message) {}, kafka.ErrorTypeTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := propertyMessage(t, kafka.EventPropertyRejected, reviewedEvent("REJECTED", ""))
			tt.mutate(&msg)

			err := NewHandler(tt.sender, testLogger()).Handle(context.Background(), msg)
			assert.Equal(t, tt.wantType, kafka.ClassifyError(err))
		})
	}
}
