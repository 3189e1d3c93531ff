package kafka

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventPaymentFailed    = "payment.failed"

	EventPropertySubmitted = "property.submitted"
	EventPropertyApproved  = "property.approved"
	EventPropertyRejected  = "property.rejected"

	BookingEventSchemaVersion  = "1"
	PropertyEventSchemaVersion = "1"
)

// BookingEvent is the payload of every event on the booking events topic.
type BookingEvent struct {
	BookingID     string    `json:"booking_id"`
	BookingRef    string    `json:"booking_ref"`
	UserID        string    `json:"user_id"`
	GuestEmail    string    `json:"guest_email,omitempty"`
	PropertyID    string    `json:"property_id"`
	RoomTypeID    string    `json:"room_type_id"`
	CheckInDate   time.Time `json:"check_in_date"`
	CheckOutDate  time.Time `json:"check_out_date"`
	Nights        int       `json:"number_of_nights"`
	Adults        int       `json:"adults"`
	Children      int       `json:"children"`
	TotalAmount   float64   `json:"total_amount"`
	BookingStatus string    `json:"booking_status"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewBookingEventMessage keys the message by booking ref so every event of
// one booking lands on the same partition in order.
func NewBookingEventMessage(eventType, source, correlationID string, event BookingEvent) (Message, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return NewMessage().
		WithKey(event.BookingRef).
		WithValue(event).
		WithEventType(eventType).
		WithBookingRef(event.BookingRef).
		WithSchemaVersion(BookingEventSchemaVersion).
		WithSource(source).
		WithCorrelationID(correlationID).
		Build()
}

// PropertyEvent reports a listing entering or leaving review.
type PropertyEvent struct {
	PropertyID      string    `json:"property_id"`
	PropertyName    string    `json:"property_name"`
	OwnerID         string    `json:"owner_id"`
	OwnerEmail      string    `json:"owner_email,omitempty"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func NewPropertyEventMessage(eventType, source, correlationID string, event PropertyEvent) (Message, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return NewMessage().
		WithKey(event.PropertyID).
		WithValue(event).
		WithEventType(eventType).
		WithPropertyID(event.PropertyID).
		WithSchemaVersion(PropertyEventSchemaVersion).
		WithSource(source).
		WithCorrelationID(correlationID).
		Build()
}
