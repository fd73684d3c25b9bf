package models

import (
	"time"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusFailed    BookingStatus = "failed"
	BookingStatusCompleted BookingStatus = "completed"
)

// BillingMode represents how a booking is priced
type BillingMode string

const (
	BillingModeHourly  BillingMode = "hourly"
	BillingModeDaily   BillingMode = "daily"
	BillingModeMonthly BillingMode = "monthly"
)

// Booking represents a workspace reservation. The interval is half-open
// [StartTime, EndTime) so back-to-back bookings do not overlap.
//
// Status lifecycle: pending -> confirmed | cancelled | failed. Confirmed
// bookings may still be cancelled by their owner; completed is set by
// operations after the stay and is terminal.
type Booking struct {
	ID             string        `json:"id" db:"id"`
	UserID         string        `json:"user_id" db:"user_id"`
	SpaceID        string        `json:"space_id" db:"space_id"`
	StartTime      time.Time     `json:"start_time" db:"start_time"`
	EndTime        time.Time     `json:"end_time" db:"end_time"`
	BillingMode    BillingMode   `json:"billing_mode" db:"billing_mode"`
	AttendeesCount int           `json:"attendees_count" db:"attendees_count"`
	TotalAmount    float64       `json:"total_amount" db:"total_amount"`
	Currency       string        `json:"currency" db:"currency"`
	Status         BookingStatus `json:"status" db:"status"`
	Notes          *string       `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// IsValidBillingMode checks whether the given string is a known billing mode
func IsValidBillingMode(m string) bool {
	switch BillingMode(m) {
	case BillingModeHourly, BillingModeDaily, BillingModeMonthly:
		return true
	}
	return false
}

// IsValidBookingStatus checks whether the given string is a known status
func IsValidBookingStatus(s string) bool {
	switch BookingStatus(s) {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled,
		BookingStatusFailed, BookingStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further payment-driven
// transitions.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCancelled ||
		s == BookingStatusCompleted
}

// CanTransitionTo reports whether the ledger allows moving from the current
// status to target. Only pending bookings move; re-applying the current
// status is an idempotent no-op handled by the caller.
func (b *Booking) CanTransitionTo(target BookingStatus) bool {
	if b.Status != BookingStatusPending {
		return false
	}
	switch target {
	case BookingStatusConfirmed, BookingStatusCancelled, BookingStatusFailed:
		return true
	}
	return false
}

// CanBeCancelledBy reports whether userID may cancel this booking
func (b *Booking) CanBeCancelledBy(userID string) error {
	if b.UserID != userID {
		return ErrNotOwner
	}
	if b.Status != BookingStatusPending && b.Status != BookingStatusConfirmed {
		return ErrAlreadyTerminal
	}
	return nil
}

// DurationHours returns the exact elapsed time of the booking in hours
func (b *Booking) DurationHours() float64 {
	return b.EndTime.Sub(b.StartTime).Hours()
}

// Overlaps reports whether the half-open intervals [b.StartTime, b.EndTime)
// and [start, end) intersect.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

// BookingFilter holds optional filters for listing a user's bookings
type BookingFilter struct {
	Status       *BookingStatus
	UpcomingOnly bool
}
