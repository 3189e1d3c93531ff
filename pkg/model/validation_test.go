package model

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

const propertyID = "65f1a2b3c4d5e6f708192a3b"

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New(validator.WithRequiredStructEnabled())
	// the real date rule lives with the booking validator
	if err := v.RegisterValidation("booking_date", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) >= 10
	}); err != nil {
		t.Fatalf("RegisterValidation() error = %v", err)
	}
	return v
}

func validRoomType() RoomType {
	return RoomType{
		PropertyID:     propertyID,
		Name:           "Deluxe King",
		PricePerNight:  99.99,
		AvailableRooms: 5,
		MaxAdults:      2,
		MaxChildren:    1,
	}
}

func TestRoomType_Validation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*RoomType)
		expectValid bool
	}{
		{"valid room type", func(*RoomType) {}, true},
		{"missing property", func(rt *RoomType) { rt.PropertyID = "" }, false},
		{"property not an object id", func(rt *RoomType) { rt.PropertyID = "hotel-1" }, false},
		{"short name", func(rt *RoomType) { rt.Name = "D" }, false},
		{"free room", func(rt *RoomType) { rt.PricePerNight = 0 }, false},
		{"negative price", func(rt *RoomType) { rt.PricePerNight = -10 }, false},
		{"no rooms", func(rt *RoomType) { rt.AvailableRooms = 0 }, false},
		{"no adults", func(rt *RoomType) { rt.MaxAdults = 0 }, false},
		{"children optional", func(rt *RoomType) { rt.MaxChildren = 0 }, true},
		{"too many children", func(rt *RoomType) { rt.MaxChildren = 11 }, false},
	}

	v := newValidate(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := validRoomType()
			tt.mutate(&rt)

			err := v.Struct(rt)
			if (err == nil) != tt.expectValid {
				t.Errorf("Struct() error = %v, expectValid %v", err, tt.expectValid)
			}
		})
	}
}

func TestBookingRequest_Validation(t *testing.T) {
	valid := func() BookingRequest {
		return BookingRequest{
			PropertyID:   propertyID,
			RoomTypeID:   "65f1a2b3c4d5e6f708192a3c",
			CheckInDate:  "2026-03-01",
			CheckOutDate: "2026-03-04",
			Adults:       2,
		}
	}

	tests := []struct {
		name        string
		mutate      func(*BookingRequest)
		expectValid bool
	}{
		{"valid request", func(*BookingRequest) {}, true},
		{"with guest email", func(r *BookingRequest) { r.GuestEmail = "guest@example.com" }, true},
		{"bad guest email", func(r *BookingRequest) { r.GuestEmail = "guest" }, false},
		{"missing room type", func(r *BookingRequest) { r.RoomTypeID = "" }, false},
		{"missing check in", func(r *BookingRequest) { r.CheckInDate = "" }, false},
		{"zero adults", func(r *BookingRequest) { r.Adults = 0 }, false},
		{"negative children", func(r *BookingRequest) { r.Children = -1 }, false},
	}

	v := newValidate(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)

			err := v.Struct(req)
			if (err == nil) != tt.expectValid {
				t.Errorf("Struct() error = %v, expectValid %v", err, tt.expectValid)
			}
		})
	}
}

func TestInvoiceRequest_Validation(t *testing.T) {
	v := newValidate(t)

	if err := v.Struct(InvoiceRequest{BookingRef: "GEM-7QK2ZD"}); err != nil {
		t.Errorf("Struct() error = %v", err)
	}
	if err := v.Struct(InvoiceRequest{}); err == nil {
		t.Error("expected missing booking_ref to fail")
	}
}

func TestRoomType_Fits(t *testing.T) {
	rt := validRoomType()

	tests := []struct {
		adults, children int
		want             bool
	}{
		{2, 1, true},
		{1, 0, true},
		{3, 0, false},
		{2, 2, false},
	}
	for _, tt := range tests {
		if got := rt.Fits(tt.adults, tt.children); got != tt.want {
			t.Errorf("Fits(%d, %d) = %v, want %v", tt.adults, tt.children, got, tt.want)
		}
	}
}

func TestBooking_IsCancelled(t *testing.T) {
	for status, want := range map[BookingStatus]bool{
		BookingPending:   false,
		BookingConfirmed: false,
		BookingCancelled: true,
	} {
		b := &Booking{BookingStatus: status}
		if got := b.IsCancelled(); got != want {
			t.Errorf("IsCancelled() for %s = %v, want %v", status, got, want)
		}
	}
}
