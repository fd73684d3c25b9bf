package services

import (
	"context"
	"fmt"
	"time"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/models"
	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/pkg/mail"
	"github.com/sirupsen/logrus"
)

// NotifyService dispatches the booking confirmation email at most once
// per booking, gated on the payment record's notification marker.
type NotifyService struct {
	bookings BookingStore
	spaces   SpaceStore
	payments PaymentStore
	sender   mail.Sender
	logger   *logrus.Logger
}

func NewNotifyService(bookings BookingStore, spaces SpaceStore, payments PaymentStore, sender mail.Sender, logger *logrus.Logger) *NotifyService {
	return &NotifyService{
		bookings: bookings,
		spaces:   spaces,
		payments: payments,
		sender:   sender,
		logger:   logger,
	}
}

// MaybeNotify sends the confirmation email unless the booking's payment
// record already carries the sent marker. The marker is read before the
// send and set after it, so two concurrent callers can in rare cases
// both send; a duplicate email is accepted over a dropped one.
func (s *NotifyService) MaybeNotify(ctx context.Context, bookingID, fallbackEmail string) error {
	payment, err := s.payments.GetByBookingID(bookingID)
	if err != nil {
		return fmt.Errorf("failed to load payment for booking %s: %w", bookingID, err)
	}

	if payment.NotificationSent() {
		s.logger.WithField("booking_id", bookingID).Debug("Confirmation already sent, skipping")
		return nil
	}

	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}

	space, err := s.spaces.GetByID(booking.SpaceID)
	if err != nil {
		return fmt.Errorf("failed to load space %s: %w", booking.SpaceID, err)
	}

	if fallbackEmail == "" {
		return fmt.Errorf("no recipient email for booking %s", bookingID)
	}

	msg := mail.Message{
		To:      fallbackEmail,
		Subject: fmt.Sprintf("Booking confirmed: %s", space.Name),
		HTML:    confirmationHTML(booking, space),
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send confirmation for booking %s: %w", bookingID, err)
	}

	if err := s.payments.MarkNotificationSent(bookingID); err != nil {
		s.logger.WithError(err).WithField("booking_id", bookingID).Error("Confirmation sent but marker update failed")
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"recipient":  fallbackEmail,
	}).Info("Booking confirmation email sent")

	return nil
}

// MaybeNotifyAsync fires MaybeNotify in the background so payment
// confirmation never waits on the mail provider.
func (s *NotifyService) MaybeNotifyAsync(bookingID, fallbackEmail string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.MaybeNotify(ctx, bookingID, fallbackEmail); err != nil {
			s.logger.WithError(err).WithField("booking_id", bookingID).Warn("Confirmation email not sent")
		}
	}()
}

func confirmationHTML(booking *models.Booking, space *models.Space) string {
	return fmt.Sprintf(`
		<h2>Your booking is confirmed</h2>
		<p>Thanks for booking with us. Here are your details:</p>
		<table cellpadding="6">
			<tr><td><strong>Space</strong></td><td>%s</td></tr>
			<tr><td><strong>Date</strong></td><td>%s</td></tr>
			<tr><td><strong>Time</strong></td><td>%s - %s</td></tr>
			<tr><td><strong>Total paid</strong></td><td>RM%.2f</td></tr>
			<tr><td><strong>Booking reference</strong></td><td>%s</td></tr>
		</table>
		<p>We look forward to seeing you.</p>
	`,
		space.Name,
		booking.StartTime.Format("Monday, 2 January 2006"),
		booking.StartTime.Format("3:04 PM"),
		booking.EndTime.Format("3:04 PM"),
		booking.TotalAmount,
		booking.ID,
	)
}
