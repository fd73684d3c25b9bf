package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/models"
	"github.com/sirupsen/logrus"
)

// Ledger is the slice of the booking service the reconciler drives.
type Ledger interface {
	GetBooking(bookingID string) (*models.Booking, error)
	Transition(bookingID string, target models.BookingStatus) (*models.Booking, error)
}

// ReconcileService converges booking state with provider payment state.
// It serves two paths: the push path, fed by verified webhook events, and
// the pull path, where a client asks whether its payment has landed yet.
type ReconcileService struct {
	ledger   Ledger
	payments PaymentStore
	gateway  PaymentGateway
	notifier Notifier
	logger   *logrus.Logger
}

func NewReconcileService(ledger Ledger, payments PaymentStore, gateway PaymentGateway, notifier Notifier, logger *logrus.Logger) *ReconcileService {
	return &ReconcileService{
		ledger:   ledger,
		payments: payments,
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
	}
}

// ConfirmPaid records a proven successful payment: the booking moves to
// confirmed, the payment record is completed with the provider's
// transaction reference, and the confirmation email is dispatched.
// Replayed events land on the idempotent transition and change nothing.
func (s *ReconcileService) ConfirmPaid(bookingID, paymentIntentID, receiptEmail string) (*models.Booking, error) {
	booking, err := s.ledger.Transition(bookingID, models.BookingStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm booking %s: %w", bookingID, err)
	}

	if err := s.payments.MarkCompleted(bookingID, paymentIntentID, time.Now()); err != nil {
		// The booking is already confirmed; an unsynced payment row is
		// recoverable, a lost confirmation is not
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id":        bookingID,
			"payment_intent_id": paymentIntentID,
		}).Error("Booking confirmed but payment record update failed")
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":        bookingID,
		"payment_intent_id": paymentIntentID,
	}).Info("Booking confirmed from payment")

	if s.notifier != nil {
		s.notifier.MaybeNotifyAsync(bookingID, receiptEmail)
	}

	return booking, nil
}

// MarkPaymentFailed records a failed payment attempt. The booking stays
// pending: the customer can retry through the same payment link, and the
// slot is released only by explicit cancellation.
func (s *ReconcileService) MarkPaymentFailed(bookingID, reason string) error {
	if err := s.payments.MarkFailed(bookingID); err != nil {
		return fmt.Errorf("failed to record payment failure for booking %s: %w", bookingID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"reason":     reason,
	}).Warn("Payment attempt failed, booking remains pending")

	return nil
}

// Reconcile answers the pull path. A booking already confirmed returns
// immediately without touching the provider. A pending one triggers a
// provider-side search; a proven success confirms the booking on the
// spot, anything less reports "still pending" as a normal outcome, not
// an error.
func (s *ReconcileService) Reconcile(ctx context.Context, bookingID string) (*models.ReconcileResponse, error) {
	booking, err := s.ledger.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status == models.BookingStatusConfirmed {
		return &models.ReconcileResponse{
			Status:  models.BookingStatusConfirmed,
			Booking: booking,
			Message: "Booking is already confirmed.",
		}, nil
	}

	if booking.Status != models.BookingStatusPending {
		return &models.ReconcileResponse{
			Status:  booking.Status,
			Booking: booking,
			Message: fmt.Sprintf("Booking is %s and can no longer be confirmed.", booking.Status),
		}, nil
	}

	if s.gateway == nil || !s.gateway.Enabled() {
		return nil, fmt.Errorf("payment gateway not configured")
	}

	payment, err := s.gateway.FindSucceededPayment(ctx, bookingID, s.paymentLinkID(bookingID))
	if err != nil {
		return nil, fmt.Errorf("payment verification failed for booking %s: %w", bookingID, err)
	}

	if payment == nil {
		return &models.ReconcileResponse{
			Status:  booking.Status,
			Booking: booking,
			Message: "No successful payment found yet for this booking.",
		}, nil
	}

	confirmed, err := s.ConfirmPaid(bookingID, payment.IntentID, payment.ReceiptEmail)
	if err != nil {
		return nil, err
	}

	return &models.ReconcileResponse{
		Status:          models.BookingStatusConfirmed,
		Booking:         confirmed,
		PaymentIntentID: payment.IntentID,
		Message:         "Payment verified and booking confirmed.",
	}, nil
}

// paymentLinkID looks up the payment link minted at booking time. A
// missing record just narrows the provider search to metadata.
func (s *ReconcileService) paymentLinkID(bookingID string) string {
	payment, err := s.payments.GetByBookingID(bookingID)
	if err != nil {
		if !errors.Is(err, models.ErrPaymentNotFound) {
			s.logger.WithError(err).WithField("booking_id", bookingID).Warn("Payment record lookup failed")
		}
		return ""
	}
	if payment.TransactionID == nil {
		return ""
	}
	return *payment.TransactionID
}
