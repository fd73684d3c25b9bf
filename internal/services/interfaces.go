package services

import (
	"context"
	"time"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/models"
)

// BookingStore abstracts booking persistence for the services layer
type BookingStore interface {
	Create(booking *models.Booking) error
	GetByID(bookingID string) (*models.Booking, error)
	GetByUserID(userID string, filter models.BookingFilter) ([]models.Booking, error)
	CountOverlapping(spaceID string, start, end time.Time) (int, error)
	UpdateStatusFrom(bookingID string, from, to models.BookingStatus) (bool, error)
	CancelOwned(bookingID, userID string) (bool, error)
}

// SpaceStore abstracts the read-only space catalog
type SpaceStore interface {
	GetByID(spaceID string) (*models.Space, error)
	List(filter models.SpaceFilter) ([]models.Space, error)
}

// PaymentStore abstracts payment record persistence
type PaymentStore interface {
	Create(payment *models.Payment) error
	GetByBookingID(bookingID string) (*models.Payment, error)
	MarkCompleted(bookingID, transactionID string, paidAt time.Time) error
	MarkFailed(bookingID string) error
	MarkNotificationSent(bookingID string) error
}

// PaymentLink is a minted provider-hosted payment page for one booking
type PaymentLink struct {
	ID          string
	URL         string
	PriceID     string
	AmountMinor int64
	Currency    string
}

// ProviderPayment is a confirmed successful payment found at the provider
type ProviderPayment struct {
	IntentID     string
	ReceiptEmail string
}

// PaymentGateway abstracts the external payment provider. All calls must
// respect the context deadline; the booking-creation path never waits on
// the provider beyond its configured hard timeout.
type PaymentGateway interface {
	// Enabled reports whether the gateway is configured at all
	Enabled() bool

	// CreatePaymentLink mints a payable link for a priced booking
	CreatePaymentLink(ctx context.Context, booking *models.Booking, space *models.Space) (*PaymentLink, error)

	// FindSucceededPayment searches the provider for a successful payment
	// matching the booking, preferring the sessions attached to the given
	// payment link and falling back to a metadata search. Returns
	// (nil, nil) when no successful payment exists yet.
	FindSucceededPayment(ctx context.Context, bookingID, paymentLinkID string) (*ProviderPayment, error)

	// ResolveBookingID fetches the booking reference stored in a payment
	// intent's metadata.
	ResolveBookingID(ctx context.Context, paymentIntentID string) (string, error)
}

// Notifier dispatches the at-most-once booking confirmation
type Notifier interface {
	MaybeNotify(ctx context.Context, bookingID, fallbackEmail string) error
	MaybeNotifyAsync(bookingID, fallbackEmail string)
}
