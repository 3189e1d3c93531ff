package model

import (
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking is a reservation of one room of a room type for a half-open
// date range [CheckInDate, CheckOutDate).
type Booking struct {
	ID             string        `json:"id,omitempty" bson:"_id,omitempty"`
	BookingRef     string        `json:"booking_ref" bson:"booking_ref"`
	UserID         string        `json:"user_id" bson:"user_id"`
	GuestEmail     string        `json:"guest_email,omitempty" bson:"guest_email,omitempty"`
	PropertyID     string        `json:"property_id" bson:"property_id"`
	RoomTypeID     string        `json:"room_type_id" bson:"room_type_id"`
	CheckInDate    time.Time     `json:"check_in_date" bson:"check_in_date"`
	CheckOutDate   time.Time     `json:"check_out_date" bson:"check_out_date"`
	NumberOfNights int           `json:"number_of_nights" bson:"number_of_nights"`
	Adults         int           `json:"adults" bson:"adults"`
	Children       int           `json:"children" bson:"children"`
	Subtotal       float64       `json:"subtotal" bson:"subtotal"`
	TaxesAndFees   float64       `json:"taxes_and_fees" bson:"taxes_and_fees"`
	TotalAmount    float64       `json:"total_amount" bson:"total_amount"`
	BookingStatus  BookingStatus `json:"booking_status" bson:"booking_status"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) IsCancelled() bool {
	return b.BookingStatus == BookingCancelled
}

// BookingRequest is the client payload for a new booking. Dates are kept as
// strings so both YYYY-MM-DD and RFC3339 forms can be accepted.
type BookingRequest struct {
	PropertyID   string `json:"property_id" validate:"required,mongodb"`
	RoomTypeID   string `json:"room_type_id" validate:"required,mongodb"`
	CheckInDate  string `json:"check_in_date" validate:"required,booking_date"`
	CheckOutDate string `json:"check_out_date" validate:"required,booking_date"`
	Adults       int    `json:"adults" validate:"required,min=1,max=10"`
	Children     int    `json:"children" validate:"min=0,max=10"`
	GuestEmail   string `json:"guest_email,omitempty" validate:"omitempty,email,max=254"`
}

// BookingQuote is the priced availability answer for a date range.
type BookingQuote struct {
	RoomTypeID     string    `json:"room_type_id"`
	CheckInDate    time.Time `json:"check_in_date"`
	CheckOutDate   time.Time `json:"check_out_date"`
	Available      bool      `json:"available"`
	NumberOfNights int       `json:"number_of_nights"`
	Subtotal       float64   `json:"subtotal"`
	TaxesAndFees   float64   `json:"taxes_and_fees"`
	TotalAmount    float64   `json:"total_amount"`
}
