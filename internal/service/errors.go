package service

import "errors"

// Sentinel errors let HTTP handlers map business failures to status codes
// without inspecting error strings.
var (
	// ErrNotFound covers missing records and inventory that is private or
	// self-owned (reported as missing, not forbidden, so browsers cannot
	// probe other parties' private stock).
	ErrNotFound = errors.New("not found")

	// ErrValidation covers malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden covers acting on a record the caller does not own.
	ErrForbidden = errors.New("forbidden")

	// ErrInsufficientStock is returned when a placement asks for more than
	// the available quantity.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidTransition is returned for a status edge outside the
	// transition graph, including any move out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrBadSignature is returned when a webhook HMAC check fails.
	ErrBadSignature = errors.New("invalid webhook signature")
)
