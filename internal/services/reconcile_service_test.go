package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reconcileFixture struct {
	service  *ReconcileService
	ledger   *BookingService
	bookings *fakeBookingStore
	payments *fakePaymentStore
	gateway  *fakeGateway
	notifier *fakeNotifier
	booking  *models.Booking
}

// newReconcileFixture seeds one pending booking with a pending payment
// record holding a payment link id.
func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()
	space := testSpace()
	bookings := newFakeBookingStore()
	spaces := newFakeSpaceStore(space)
	payments := newFakePaymentStore()
	gateway := newFakeGateway()
	notifier := &fakeNotifier{}

	ledger := NewBookingService(bookings, spaces, payments, NewPricingService(), gateway, testLogger())
	service := NewReconcileService(ledger, payments, gateway, notifier, testLogger())

	start := time.Now().Add(24 * time.Hour)
	booking := &models.Booking{
		ID:          uuid.New().String(),
		UserID:      uuid.New().String(),
		SpaceID:     space.ID,
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		BillingMode: models.BillingModeHourly,
		TotalAmount: 80.0,
		Currency:    "MYR",
		Status:      models.BookingStatusPending,
	}
	bookings.seed(booking)

	linkID := "plink_test_123"
	require.NoError(t, payments.Create(&models.Payment{
		BookingID:     booking.ID,
		UserID:        booking.UserID,
		Amount:        booking.TotalAmount,
		Currency:      booking.Currency,
		Status:        models.PaymentStatusPending,
		Provider:      PaymentProviderName,
		TransactionID: &linkID,
	}))

	return &reconcileFixture{
		service:  service,
		ledger:   ledger,
		bookings: bookings,
		payments: payments,
		gateway:  gateway,
		notifier: notifier,
		booking:  booking,
	}
}

func TestConfirmPaid(t *testing.T) {
	f := newReconcileFixture(t)

	booking, err := f.service.ConfirmPaid(f.booking.ID, "pi_test_1", "payer@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)

	// Payment record now carries the intent id and success status
	payment, err := f.payments.GetByBookingID(f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	require.NotNil(t, payment.TransactionID)
	assert.Equal(t, "pi_test_1", *payment.TransactionID)
	assert.NotNil(t, payment.PaidAt)

	assert.Equal(t, 1, f.notifier.callCount())
}

func TestConfirmPaid_ReplayedEvent(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.service.ConfirmPaid(f.booking.ID, "pi_test_1", "payer@example.com")
	require.NoError(t, err)

	// The same event delivered again changes nothing and still succeeds
	booking, err := f.service.ConfirmPaid(f.booking.ID, "pi_test_1", "payer@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)

	payment, err := f.payments.GetByBookingID(f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
}

func TestConfirmPaid_CancelledBooking(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.ledger.Cancel(f.booking.ID, f.booking.UserID)
	require.NoError(t, err)

	_, err = f.service.ConfirmPaid(f.booking.ID, "pi_test_1", "payer@example.com")
	assert.ErrorIs(t, err, models.ErrIllegalTransition)
}

func TestMarkPaymentFailed_BookingStaysPending(t *testing.T) {
	f := newReconcileFixture(t)

	require.NoError(t, f.service.MarkPaymentFailed(f.booking.ID, "card_declined"))

	booking, err := f.ledger.GetBooking(f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)

	payment, err := f.payments.GetByBookingID(f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
}

func TestMarkPaymentFailed_NeverUndoesSuccess(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.service.ConfirmPaid(f.booking.ID, "pi_test_1", "payer@example.com")
	require.NoError(t, err)

	// A stale failure event arriving after the success is absorbed
	require.NoError(t, f.service.MarkPaymentFailed(f.booking.ID, "card_declined"))

	payment, err := f.payments.GetByBookingID(f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
}

func TestReconcile_ConfirmedShortCircuits(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.service.ConfirmPaid(f.booking.ID, "pi_test_1", "payer@example.com")
	require.NoError(t, err)

	resp, err := f.service.Reconcile(context.Background(), f.booking.ID)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusConfirmed, resp.Status)
	// No provider round-trips for an already-confirmed booking
	assert.Equal(t, 0, f.gateway.findCalls)
}

func TestReconcile_FindsPayment(t *testing.T) {
	f := newReconcileFixture(t)
	f.gateway.findResult = &ProviderPayment{
		IntentID:     "pi_test_9",
		ReceiptEmail: "payer@example.com",
	}

	resp, err := f.service.Reconcile(context.Background(), f.booking.ID)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusConfirmed, resp.Status)
	assert.Equal(t, "pi_test_9", resp.PaymentIntentID)
	require.NotNil(t, resp.Booking)
	assert.Equal(t, models.BookingStatusConfirmed, resp.Booking.Status)
	assert.Equal(t, 1, f.gateway.findCalls)
	assert.Equal(t, 1, f.notifier.callCount())

	payment, err := f.payments.GetByBookingID(f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
}

func TestReconcile_NoPaymentYet(t *testing.T) {
	f := newReconcileFixture(t)
	f.gateway.findResult = nil

	resp, err := f.service.Reconcile(context.Background(), f.booking.ID)
	require.NoError(t, err)

	// "Still pending" is a normal answer, not an error
	assert.Equal(t, models.BookingStatusPending, resp.Status)
	assert.Contains(t, resp.Message, "No successful payment")
	assert.Equal(t, 0, f.notifier.callCount())
}

func TestReconcile_CancelledBooking(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.ledger.Cancel(f.booking.ID, f.booking.UserID)
	require.NoError(t, err)

	resp, err := f.service.Reconcile(context.Background(), f.booking.ID)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusCancelled, resp.Status)
	assert.Equal(t, 0, f.gateway.findCalls)
}

func TestReconcile_ProviderError(t *testing.T) {
	f := newReconcileFixture(t)
	f.gateway.findErr = errors.New("stripe unavailable")

	_, err := f.service.Reconcile(context.Background(), f.booking.ID)
	assert.Error(t, err)

	// The booking is untouched
	booking, err := f.ledger.GetBooking(f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
}

func TestReconcile_UnknownBooking(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.service.Reconcile(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, models.ErrBookingNotFound)
}
