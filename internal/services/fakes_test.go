package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func ptr[T any](v T) *T { return &v }

func testSpace() *models.Space {
	return &models.Space{
		ID:         uuid.New().String(),
		Name:       "Meeting Room Merdeka",
		Type:       models.SpaceTypeMeetingRoom,
		Capacity:   8,
		Location:   "Kuala Lumpur",
		HourlyRate: ptr(40.0),
		DailyRate:  ptr(280.0),
		IsActive:   true,
	}
}

// fakeBookingStore is an in-memory BookingStore that mimics the
// database's overlap rejection and conditional updates.
type fakeBookingStore struct {
	mu        sync.Mutex
	bookings  map[string]*models.Booking
	createErr error
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: map[string]*models.Booking{}}
}

func (s *fakeBookingStore) Create(booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.bookings {
		if existing.SpaceID == booking.SpaceID &&
			existing.Status != models.BookingStatusCancelled &&
			existing.Overlaps(booking.StartTime, booking.EndTime) {
			return models.ErrSlotUnavailable
		}
	}
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	copied := *booking
	s.bookings[booking.ID] = &copied
	return nil
}

func (s *fakeBookingStore) GetByID(bookingID string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[bookingID]
	if !ok {
		return nil, models.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (s *fakeBookingStore) GetByUserID(userID string, filter models.BookingFilter) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []models.Booking{}
	for _, booking := range s.bookings {
		if booking.UserID != userID {
			continue
		}
		if filter.Status != nil && booking.Status != *filter.Status {
			continue
		}
		if filter.UpcomingOnly && booking.StartTime.Before(time.Now()) {
			continue
		}
		result = append(result, *booking)
	}
	return result, nil
}

func (s *fakeBookingStore) CountOverlapping(spaceID string, start, end time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, booking := range s.bookings {
		if booking.SpaceID == spaceID &&
			booking.Status != models.BookingStatusCancelled &&
			booking.Overlaps(start, end) {
			count++
		}
	}
	return count, nil
}

func (s *fakeBookingStore) UpdateStatusFrom(bookingID string, from, to models.BookingStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[bookingID]
	if !ok || booking.Status != from {
		return false, nil
	}
	booking.Status = to
	booking.UpdatedAt = time.Now()
	return true, nil
}

func (s *fakeBookingStore) CancelOwned(bookingID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[bookingID]
	if !ok || booking.UserID != userID {
		return false, nil
	}
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
		return false, nil
	}
	booking.Status = models.BookingStatusCancelled
	booking.UpdatedAt = time.Now()
	return true, nil
}

// seed stores a booking directly, bypassing overlap checks
func (s *fakeBookingStore) seed(booking *models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	copied := *booking
	s.bookings[booking.ID] = &copied
}

// fakeSpaceStore is an in-memory SpaceStore
type fakeSpaceStore struct {
	spaces map[string]*models.Space
}

func newFakeSpaceStore(spaces ...*models.Space) *fakeSpaceStore {
	store := &fakeSpaceStore{spaces: map[string]*models.Space{}}
	for _, space := range spaces {
		store.spaces[space.ID] = space
	}
	return store
}

func (s *fakeSpaceStore) GetByID(spaceID string) (*models.Space, error) {
	space, ok := s.spaces[spaceID]
	if !ok {
		return nil, models.ErrSpaceNotFound
	}
	copied := *space
	return &copied, nil
}

func (s *fakeSpaceStore) List(filter models.SpaceFilter) ([]models.Space, error) {
	result := []models.Space{}
	for _, space := range s.spaces {
		if filter.ActiveOnly && !space.IsActive {
			continue
		}
		if filter.Type != nil && space.Type != *filter.Type {
			continue
		}
		result = append(result, *space)
	}
	return result, nil
}

// fakePaymentStore is an in-memory PaymentStore
type fakePaymentStore struct {
	mu        sync.Mutex
	payments  map[string]*models.Payment // keyed by booking ID
	createErr error
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[string]*models.Payment{}}
}

func (s *fakePaymentStore) Create(payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	copied := *payment
	s.payments[payment.BookingID] = &copied
	return nil
}

func (s *fakePaymentStore) GetByBookingID(bookingID string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments[bookingID]
	if !ok {
		return nil, models.ErrPaymentNotFound
	}
	copied := *payment
	return &copied, nil
}

func (s *fakePaymentStore) MarkCompleted(bookingID, transactionID string, paidAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments[bookingID]
	if !ok || payment.Status == models.PaymentStatusCompleted {
		return nil
	}
	payment.Status = models.PaymentStatusCompleted
	payment.TransactionID = &transactionID
	payment.PaidAt = &paidAt
	return nil
}

func (s *fakePaymentStore) MarkFailed(bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments[bookingID]
	if !ok || payment.Status == models.PaymentStatusCompleted {
		return nil
	}
	payment.Status = models.PaymentStatusFailed
	return nil
}

func (s *fakePaymentStore) MarkNotificationSent(bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments[bookingID]
	if !ok || payment.NotificationSentAt != nil {
		return nil
	}
	now := time.Now()
	payment.NotificationSentAt = &now
	return nil
}

// fakeGateway is a scripted PaymentGateway that counts provider calls
type fakeGateway struct {
	mu      sync.Mutex
	enabled bool

	link      *PaymentLink
	createErr error

	findResult *ProviderPayment
	findErr    error
	findCalls  int

	bookingByIntent map[string]string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		enabled: true,
		link: &PaymentLink{
			ID:  "plink_test_123",
			URL: "https://pay.example.com/plink_test_123",
		},
		bookingByIntent: map[string]string{},
	}
}

func (g *fakeGateway) Enabled() bool { return g.enabled }

func (g *fakeGateway) CreatePaymentLink(ctx context.Context, booking *models.Booking, space *models.Space) (*PaymentLink, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	link := *g.link
	link.AmountMinor = MinorUnits(booking.TotalAmount)
	link.Currency = booking.Currency
	return &link, nil
}

func (g *fakeGateway) FindSucceededPayment(ctx context.Context, bookingID, paymentLinkID string) (*ProviderPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.findCalls++
	if g.findErr != nil {
		return nil, g.findErr
	}
	return g.findResult, nil
}

func (g *fakeGateway) ResolveBookingID(ctx context.Context, paymentIntentID string) (string, error) {
	return g.bookingByIntent[paymentIntentID], nil
}

// fakeNotifier records notification dispatches
type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *fakeNotifier) MaybeNotify(ctx context.Context, bookingID, fallbackEmail string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, bookingID)
	return nil
}

func (n *fakeNotifier) MaybeNotifyAsync(bookingID, fallbackEmail string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, bookingID)
}

func (n *fakeNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}
