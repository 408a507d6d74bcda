package domain

import "errors"

var (
	// ErrMissingEntity is returned when an entity that must already exist is absent
	ErrMissingEntity = errors.New("missing required entity")

	// ErrDuplicateEntity is returned when an entity that must be new already exists
	ErrDuplicateEntity = errors.New("entity already exists")

	// ErrUnderflow is returned when a subtraction would go below zero
	ErrUnderflow = errors.New("arithmetic underflow")

	// ErrOverflow is returned when a quantity exceeds 256 bits
	ErrOverflow = errors.New("arithmetic overflow")

	// ErrCounterUnderflow is returned when a counter would be decremented below zero
	ErrCounterUnderflow = errors.New("counter underflow")

	// ErrInvalidTransition is returned when an order is moved outside its state machine
	ErrInvalidTransition = errors.New("invalid order transition")

	// ErrMalformedEvent is returned when an event's fields cannot be decoded
	ErrMalformedEvent = errors.New("malformed event")
)
