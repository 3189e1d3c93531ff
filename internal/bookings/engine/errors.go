package engine

import "fmt"

// ValidationError reports input that can never be booked as given.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CapacityError reports a date range with no free room left. It is a
// validation failure: errors.As with a *ValidationError target matches it.
type CapacityError struct {
	RoomTypeID  string
	Overlapping int
	Capacity    int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("room type %s is fully booked for the selected dates (%d of %d rooms taken)",
		e.RoomTypeID, e.Overlapping, e.Capacity)
}

func (e *CapacityError) As(target any) bool {
	v, ok := target.(**ValidationError)
	if !ok {
		return false
	}
	*v = &ValidationError{Field: "room_type_id", Message: e.Error()}
	return true
}

// ConflictError reports an operation that is illegal in the booking's current state.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}
