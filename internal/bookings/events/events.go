// Package events publishes booking lifecycle events to Kafka.
package events

import (
	"context"

	"skybridge/pkg/kafka"
	"skybridge/pkg/logger"
	"skybridge/pkg/model"
)

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Emitter turns booking state changes into messages. Publishing is best
// effort: the booking is already committed, so a broker failure is logged
// and left to the producer's DLQ.
type Emitter struct {
	publisher Publisher
	source    string
	log       *logger.Logger
}

func NewEmitter(publisher Publisher, source string, log *logger.Logger) *Emitter {
	return &Emitter{publisher: publisher, source: source, log: log}
}

func FromBooking(b *model.Booking, reason string) kafka.BookingEvent {
	return kafka.BookingEvent{
		BookingID:     b.ID,
		BookingRef:    b.BookingRef,
		UserID:        b.UserID,
		GuestEmail:    b.GuestEmail,
		PropertyID:    b.PropertyID,
		RoomTypeID:    b.RoomTypeID,
		CheckInDate:   b.CheckInDate,
		CheckOutDate:  b.CheckOutDate,
		Nights:        b.NumberOfNights,
		Adults:        b.Adults,
		Children:      b.Children,
		TotalAmount:   b.TotalAmount,
		BookingStatus: string(b.BookingStatus),
		Reason:        reason,
	}
}

func (e *Emitter) Emit(ctx context.Context, eventType string, b *model.Booking, reason string) {
	if e == nil || e.publisher == nil {
		return
	}
	log := e.log.Ctx(ctx).With("event_type", eventType, "booking_ref", b.BookingRef)

	msg, err := kafka.NewBookingEventMessage(eventType, e.source, logger.RequestID(ctx), FromBooking(b, reason))
	if err != nil {
		log.Error("Failed to build booking event", "error", err)
		return
	}
	if err := e.publisher.Publish(ctx, msg); err != nil {
		log.Error("Failed to publish booking event", "error", err)
		return
	}
	log.Debug("Booking event published")
}
