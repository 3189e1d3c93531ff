// Package notifications turns booking events into guest e-mails and
// property review events into owner e-mails.
package notifications

import (
	"context"

	"skybridge/pkg/kafka"
	"skybridge/pkg/logger"
)

type Handler struct {
	sender Sender
	log    *logger.Logger
}

func NewHandler(sender Sender, log *logger.Logger) *Handler {
	return &Handler{sender: sender, log: log}
}

// Handle is a kafka.MessageHandler. Undecodable events are permanent errors
// and go to the dead letter topic; SMTP failures are retried.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	switch msg.EventType() {
	case kafka.EventBookingConfirmed:
		return h.bookingConfirmed(ctx, msg)
	case kafka.EventPropertySubmitted, kafka.EventPropertyApproved, kafka.EventPropertyRejected:
		return h.propertyReviewed(ctx, msg)
	}
	h.log.Ctx(ctx).Debug("Event needs no notification", "event_type", msg.EventType())
	return nil
}

func (h *Handler) bookingConfirmed(ctx context.Context, msg kafka.Message) error {
	log := h.log.Ctx(ctx).With("event_type", msg.EventType(), "booking_ref", msg.BookingRef())

	var event kafka.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	if event.BookingRef == "" {
		return kafka.NewPermanentError("booking event without booking_ref", nil)
	}
	if event.GuestEmail == "" {
		log.Warn("Booking has no guest email, skipping confirmation")
		return nil
	}

	email, err := ConfirmationEmail(event)
	if err != nil {
		return kafka.NewPermanentError("failed to render confirmation email", err)
	}
	if err := h.sender.Send(ctx, email); err != nil {
		log.Error("Failed to send confirmation email", "error", err)
		return kafka.NewTransientError("smtp send failed", err)
	}

	log.Info("Confirmation email sent")
	return nil
}

func (h *Handler) propertyReviewed(ctx context.Context, msg kafka.Message) error {
	log := h.log.Ctx(ctx).With("event_type", msg.EventType(), "property_id", msg.PropertyID())

	var event kafka.PropertyEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	if event.PropertyID == "" {
		return kafka.NewPermanentError("property event without property_id", nil)
	}
	if event.OwnerEmail == "" {
		log.Warn("Property owner has no email, skipping notification")
		return nil
	}

	email, _, err := PropertyEmail(msg.EventType(), event)
	if err != nil {
		return kafka.NewPermanentError("failed to render property email", err)
	}
	if err := h.sender.Send(ctx, email); err != nil {
		log.Error("Failed to send property email", "error", err)
		return kafka.NewTransientError("smtp send failed", err)
	}

	log.Info("Property owner notified", "status", event.Status)
	return nil
}
