package model

import "errors"

// Domain errors shared by every storage backend. All four are recoverable,
// caller-visible outcomes, never fatal to the process.
var (
	// ErrNotFound is returned when a requested event, participant or
	// registration does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when a required identity field is missing or
	// malformed. No mutation has happened when it is returned.
	ErrValidation = errors.New("validation failed")

	// ErrCapacityExceeded is returned when an event has no remaining slots at
	// admission time.
	ErrCapacityExceeded = errors.New("event capacity exceeded")

	// ErrAlreadyRegistered is returned when the (event, participant) pair
	// already holds a registration. During reconciliation this is an expected
	// duplicate signal, not a failure.
	ErrAlreadyRegistered = errors.New("participant already registered for this event")
)
