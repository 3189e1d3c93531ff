package errors

import "errors"

var (
	ErrNotFound = errors.New("payment not found")

	ErrInvalidID = errors.New("invalid payment ID format")

	// ErrAlreadyExists is returned when a booking or invoice already has a
	// payment record.
	ErrAlreadyExists = errors.New("payment already exists")

	ErrStatusChanged = errors.New("payment status changed concurrently")
)
