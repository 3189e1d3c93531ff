package errors

import (
	"errors"

	"skybridge/internal/bookings/engine"
	apperrors "skybridge/pkg/errors"
)

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrDuplicateRef = errors.New("booking reference already exists")

	// ErrStatusChanged means a conditional status update matched no document
	// because another request moved the booking first.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)

// FromEngine maps a rule violation from the engine onto the API error it is
// reported as. ok is false for any other error.
func FromEngine(err error) (appErr *apperrors.AppError, ok bool) {
	var capErr *engine.CapacityError
	if errors.As(err, &capErr) {
		return apperrors.CapacityExceeded("No rooms available for selected dates", map[string]any{
			"room_type_id": capErr.RoomTypeID,
			"capacity":     capErr.Capacity,
		}), true
	}

	var valErr *engine.ValidationError
	if errors.As(err, &valErr) {
		return apperrors.Validation(valErr.Message, map[string]any{"field": valErr.Field}), true
	}

	var conflictErr *engine.ConflictError
	if errors.As(err, &conflictErr) {
		return apperrors.Conflict(conflictErr.Reason), true
	}

	return nil, false
}
