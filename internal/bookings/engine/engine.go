// Package engine holds the pure booking rules: date overlap, room capacity,
// night counting, price breakdown, cancellation policy and payment
// reconciliation. Nothing here performs I/O, so every function is safe for
// concurrent use.
package engine

import (
	"fmt"
	"math"
	"time"

	"skybridge/pkg/model"
)

const (
	DefaultTaxRate         = 0.12
	CancellationNoticeDays = 7
	PaymentTolerance       = 1.0

	day = 24 * time.Hour
)

// Quote is a price breakdown rounded half-up to cents.
// TotalAmount is always Subtotal + TaxesAndFees.
type Quote struct {
	Nights       int     `json:"number_of_nights"`
	Subtotal     float64 `json:"subtotal"`
	TaxesAndFees float64 `json:"taxes_and_fees"`
	TotalAmount  float64 `json:"total_amount"`
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Back-to-back stays (one checks out the day the other checks in) do not.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// CountOverlapping counts the non-cancelled bookings of rt that intersect
// [checkIn, checkOut). Bookings of other room types are ignored.
func CountOverlapping(rt *model.RoomType, existing []*model.Booking, checkIn, checkOut time.Time) int {
	count := 0
	for _, b := range existing {
		if b == nil || b.RoomTypeID != rt.ID || b.IsCancelled() {
			continue
		}
		if Overlaps(b.CheckInDate, b.CheckOutDate, checkIn, checkOut) {
			count++
		}
	}
	return count
}

func IsAvailable(rt *model.RoomType, existing []*model.Booking, checkIn, checkOut time.Time) bool {
	return CountOverlapping(rt, existing, checkIn, checkOut) < rt.AvailableRooms
}

// CheckAvailability is IsAvailable with the reason attached.
func CheckAvailability(rt *model.RoomType, existing []*model.Booking, checkIn, checkOut time.Time) error {
	n := CountOverlapping(rt, existing, checkIn, checkOut)
	if n >= rt.AvailableRooms {
		return &CapacityError{RoomTypeID: rt.ID, Overlapping: n, Capacity: rt.AvailableRooms}
	}
	return nil
}

// Nights returns the number of nights between check-in and check-out,
// rounded to the nearest whole day so DST shifts do not lose a night.
func Nights(checkIn, checkOut time.Time) (int, error) {
	n := int(math.Round(float64(checkOut.Sub(checkIn)) / float64(day)))
	if n < 1 {
		return 0, &ValidationError{
			Field:   "check_out_date",
			Message: "check-out date must be at least one night after check-in date",
		}
	}
	return n, nil
}

func Price(pricePerNight float64, nights int, taxRate float64) Quote {
	raw := pricePerNight * float64(nights)
	subtotal := roundCents(raw)
	tax := roundCents(raw * taxRate)
	return Quote{
		Nights:       nights,
		Subtotal:     subtotal,
		TaxesAndFees: tax,
		TotalAmount:  roundCents(subtotal + tax),
	}
}

// roundCents rounds half-up to two decimal places.
func roundCents(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

// DaysUntil is the number of started days from now until t.
func DaysUntil(t, now time.Time) int {
	return int(math.Ceil(float64(t.Sub(now)) / float64(day)))
}

func CheckCancellable(b *model.Booking, now time.Time) error {
	return DefaultPolicy().CheckCancellable(b, now)
}

func CanCancel(b *model.Booking, now time.Time) bool {
	return CheckCancellable(b, now) == nil
}

// ReconcilePayment reports whether the amount paid settles the booking total.
func ReconcilePayment(total, paid float64) bool {
	return DefaultPolicy().ReconcilePayment(total, paid)
}

// Policy carries the tunable parts of the rules. The zero value is not
// useful; start from DefaultPolicy.
type Policy struct {
	TaxRate          float64
	NoticeDays       int
	PaymentTolerance float64
}

func DefaultPolicy() Policy {
	return Policy{
		TaxRate:          DefaultTaxRate,
		NoticeDays:       CancellationNoticeDays,
		PaymentTolerance: PaymentTolerance,
	}
}

func (p Policy) Price(pricePerNight float64, nights int) Quote {
	return Price(pricePerNight, nights, p.TaxRate)
}

// Quote counts the nights of the stay and prices them.
func (p Policy) Quote(pricePerNight float64, checkIn, checkOut time.Time) (Quote, error) {
	nights, err := Nights(checkIn, checkOut)
	if err != nil {
		return Quote{}, err
	}
	return p.Price(pricePerNight, nights), nil
}

func (p Policy) CheckCancellable(b *model.Booking, now time.Time) error {
	if b.IsCancelled() {
		return &ConflictError{Reason: "booking is already cancelled"}
	}
	if DaysUntil(b.CheckInDate, now) < p.NoticeDays {
		return &ConflictError{Reason: fmt.Sprintf("bookings can only be cancelled at least %d days before check-in", p.NoticeDays)}
	}
	return nil
}

func (p Policy) ReconcilePayment(total, paid float64) bool {
	return math.Abs(total-paid) <= p.PaymentTolerance
}
