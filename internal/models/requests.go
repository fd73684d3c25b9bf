package models

import (
	"errors"
	"fmt"
)

// CreateBookingRequest represents the request to create a booking.
// Date and times are accepted in the same flexible formats the original
// frontend sends ("2025-12-09" or "today"; "14:00", "2pm", "2:00 PM").
type CreateBookingRequest struct {
	SpaceID        string  `json:"space_id" binding:"required"`
	Date           string  `json:"date" binding:"required"`
	StartTime      string  `json:"start_time" binding:"required"`
	EndTime        string  `json:"end_time" binding:"required"`
	BillingMode    string  `json:"billing_mode,omitempty"`
	AttendeesCount int     `json:"attendees_count,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// Validate validates field values that binding tags cannot express
func (r *CreateBookingRequest) Validate() error {
	if r.BillingMode == "" {
		r.BillingMode = string(BillingModeHourly)
	}
	if !IsValidBillingMode(r.BillingMode) {
		return fmt.Errorf("%w: %s", ErrUnknownBillingMode, r.BillingMode)
	}
	if r.AttendeesCount == 0 {
		r.AttendeesCount = 1
	}
	if r.AttendeesCount < 0 {
		return errors.New("attendees_count must be at least 1")
	}
	return nil
}

// CreateBookingResponse is returned from booking creation. PaymentLink is
// empty when the payment gateway call failed; PaymentError then explains
// why and the booking itself is still created.
type CreateBookingResponse struct {
	Booking         *Booking `json:"booking"`
	SpaceName       string   `json:"space_name"`
	Message         string   `json:"message"`
	PaymentLink     string   `json:"payment_link,omitempty"`
	PaymentProvider string   `json:"payment_provider,omitempty"`
	PaymentError    string   `json:"payment_error,omitempty"`
}

// ReconcileResponse is returned from the pull-path reconciliation trigger
type ReconcileResponse struct {
	Status          BookingStatus `json:"status"`
	Booking         *Booking      `json:"booking,omitempty"`
	PaymentIntentID string        `json:"payment_intent_id,omitempty"`
	Message         string        `json:"message,omitempty"`
}

// AvailabilityResponse is returned from the read-only availability check
type AvailabilityResponse struct {
	SpaceID   string `json:"space_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}
