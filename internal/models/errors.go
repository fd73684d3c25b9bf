package models

import "errors"

// Domain errors surfaced by the booking and payment services. Handlers map
// these onto HTTP statuses with errors.Is; everything else is a server fault.
var (
	// Validation
	ErrInvalidInterval    = errors.New("end time must be after start time")
	ErrPastBooking        = errors.New("cannot book in the past")
	ErrUnknownBillingMode = errors.New("unknown billing mode")

	// Not found
	ErrSpaceNotFound   = errors.New("space not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrPaymentNotFound = errors.New("payment record not found")

	// Conflict: availability was lost between the free check and the insert.
	// Retryable and user-actionable, never a server fault.
	ErrSlotUnavailable = errors.New("space is not available for the requested time slot")

	// Pricing
	ErrUnpriceable = errors.New("could not determine pricing for this space and billing mode")

	// Lifecycle
	ErrIllegalTransition = errors.New("illegal booking status transition")
	ErrAlreadyTerminal   = errors.New("booking is already in a terminal state")
	ErrNotOwner          = errors.New("booking belongs to another user")
)
