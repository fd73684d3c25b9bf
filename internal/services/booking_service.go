package services

import (
	"context"
	"fmt"
	"time"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultCurrency is the only currency the rate cards are denominated in
const DefaultCurrency = "MYR"

// PaymentProviderName identifies the configured payment provider
const PaymentProviderName = "stripe"

// BookingService owns the booking lifecycle: availability-checked
// creation, status transitions and owner cancellation. It is the single
// writer of Booking.status.
type BookingService struct {
	bookings BookingStore
	spaces   SpaceStore
	payments PaymentStore
	pricing  *PricingService
	gateway  PaymentGateway
	logger   *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookings BookingStore,
	spaces SpaceStore,
	payments PaymentStore,
	pricing *PricingService,
	gateway PaymentGateway,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		spaces:   spaces,
		payments: payments,
		pricing:  pricing,
		gateway:  gateway,
		logger:   logger,
	}
}

// CreateParams carries the validated, parsed inputs for a new booking
type CreateParams struct {
	UserID         string
	SpaceID        string
	StartTime      time.Time
	EndTime        time.Time
	BillingMode    models.BillingMode
	AttendeesCount int
	Notes          *string
}

// Create reserves a slot and best-effort mints a payment link.
//
// The booking insert and the gateway call are deliberately decoupled: a
// slow or failing payment provider leaves the reservation in place as
// pending with no payment record, and the caller is told to retry the
// payment separately.
func (s *BookingService) Create(ctx context.Context, params CreateParams) (*models.CreateBookingResponse, error) {
	now := time.Now()
	if !params.EndTime.After(params.StartTime) {
		return nil, models.ErrInvalidInterval
	}
	if params.StartTime.Before(now) {
		return nil, models.ErrPastBooking
	}

	space, err := s.spaces.GetByID(params.SpaceID)
	if err != nil {
		return nil, err
	}
	if !space.IsActive {
		return nil, models.ErrSpaceNotFound
	}

	// Friendly pre-check. The database exclusion constraint remains the
	// authoritative defense against a concurrent writer.
	overlapping, err := s.bookings.CountOverlapping(space.ID, params.StartTime, params.EndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if overlapping > 0 {
		return nil, models.ErrSlotUnavailable
	}

	total, err := s.pricing.Price(space, params.StartTime, params.EndTime, params.BillingMode)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		UserID:         params.UserID,
		SpaceID:        space.ID,
		StartTime:      params.StartTime,
		EndTime:        params.EndTime,
		BillingMode:    params.BillingMode,
		AttendeesCount: params.AttendeesCount,
		TotalAmount:    total,
		Currency:       DefaultCurrency,
		Status:         models.BookingStatusPending,
		Notes:          params.Notes,
	}

	if err := s.bookings.Create(booking); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"space_id":     space.ID,
		"user_id":      booking.UserID,
		"total_amount": booking.TotalAmount,
	}).Info("Booking created")

	resp := &models.CreateBookingResponse{
		Booking:   booking,
		SpaceName: space.Name,
		Message:   "Booking created successfully. Please complete payment to confirm.",
	}

	s.attachPaymentLink(ctx, resp, booking, space)
	return resp, nil
}

// attachPaymentLink mints a payment link and records the pending payment.
// Failures degrade the response instead of failing the booking.
func (s *BookingService) attachPaymentLink(ctx context.Context, resp *models.CreateBookingResponse, booking *models.Booking, space *models.Space) {
	if s.gateway == nil || !s.gateway.Enabled() {
		return
	}

	link, err := s.gateway.CreatePaymentLink(ctx, booking, space)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).
			Warn("Failed to create payment link")
		resp.PaymentError = fmt.Sprintf("Failed to create payment link: %v", err)
		resp.Message = "Booking created successfully, but payment link could not be generated automatically. " +
			"Please retry payment or contact support."
		return
	}

	resp.PaymentLink = link.URL
	resp.PaymentProvider = PaymentProviderName

	linkID := link.ID
	payment := &models.Payment{
		BookingID:     booking.ID,
		UserID:        booking.UserID,
		Amount:        booking.TotalAmount,
		Currency:      booking.Currency,
		Status:        models.PaymentStatusPending,
		Provider:      PaymentProviderName,
		TransactionID: &linkID,
	}
	if err := s.payments.Create(payment); err != nil {
		// The link is already live; the pull-path metadata search still
		// reconciles this booking even without a local record.
		s.logger.WithError(err).WithField("booking_id", booking.ID).
			Warn("Failed to create payment record")
	}
}

// GetBooking retrieves a booking by ID
func (s *BookingService) GetBooking(bookingID string) (*models.Booking, error) {
	return s.bookings.GetByID(bookingID)
}

// ListUserBookings retrieves a user's bookings
func (s *BookingService) ListUserBookings(userID string, filter models.BookingFilter) ([]models.Booking, error) {
	return s.bookings.GetByUserID(userID, filter)
}

// IsSpaceFree reports whether the space has no non-cancelled booking
// overlapping [start, end). Read-only; past intervals are allowed here.
func (s *BookingService) IsSpaceFree(spaceID string, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, models.ErrInvalidInterval
	}
	if _, err := s.spaces.GetByID(spaceID); err != nil {
		return false, err
	}

	count, err := s.bookings.CountOverlapping(spaceID, start, end)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Transition moves a pending booking to the target status.
//
// Allowed edges are pending->confirmed, pending->cancelled and
// pending->failed. Re-applying the status a booking already holds is an
// idempotent no-op that succeeds without effect; any other edge is an
// illegal transition. This rule is what makes redundant reconciliation
// calls safe.
func (s *BookingService) Transition(bookingID string, target models.BookingStatus) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status == target {
		return booking, nil
	}
	if !booking.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrIllegalTransition, booking.Status, target)
	}

	updated, err := s.bookings.UpdateStatusFrom(bookingID, models.BookingStatusPending, target)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost a race: re-read and decide again. If the concurrent writer
		// applied the same target the transition already happened.
		booking, err = s.bookings.GetByID(bookingID)
		if err != nil {
			return nil, err
		}
		if booking.Status == target {
			return booking, nil
		}
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrIllegalTransition, booking.Status, target)
	}

	booking.Status = target
	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"status":     target,
	}).Info("Booking status updated")
	return booking, nil
}

// Cancel cancels a booking on behalf of its owner
func (s *BookingService) Cancel(bookingID, userID string) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if err := booking.CanBeCancelledBy(userID); err != nil {
		return nil, err
	}

	cancelled, err := s.bookings.CancelOwned(bookingID, userID)
	if err != nil {
		return nil, err
	}
	if !cancelled {
		// Status changed between read and write
		return nil, models.ErrAlreadyTerminal
	}

	booking.Status = models.BookingStatusCancelled
	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"user_id":    userID,
	}).Info("Booking cancelled")
	return booking, nil
}
