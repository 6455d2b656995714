package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrSlotConflict = errors.New("the space is already booked for the requested time")

	ErrStaleBooking = errors.New("booking was modified concurrently")
)
