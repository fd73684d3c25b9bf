package database

import (
	"database/sql"
	"time"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/models"
	"github.com/google/uuid"
)

// PaymentRepository handles database operations for the payments table.
// One payment record exists per booking once a payment link has been
// minted; reconciliation is the only writer of its status.
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, booking_id, user_id, amount, currency, status,
	   provider, transaction_id, paid_at, notification_sent_at,
	   created_at, updated_at`

// Create inserts a new payment record
func (r *PaymentRepository) Create(payment *models.Payment) error {
	query := `
		INSERT INTO payments (
			id, booking_id, user_id, amount, currency, status,
			provider, transaction_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING created_at, updated_at
	`

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}

	return r.db.QueryRow(
		query,
		payment.ID, payment.BookingID, payment.UserID, payment.Amount,
		payment.Currency, payment.Status, payment.Provider,
		payment.TransactionID,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
}

// GetByBookingID retrieves the payment record for a booking
func (r *PaymentRepository) GetByBookingID(bookingID string) (*models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	payment, err := r.scanPayment(r.db.QueryRow(query, bookingID))
	if err == sql.ErrNoRows {
		return nil, models.ErrPaymentNotFound
	}
	return payment, err
}

// MarkCompleted records a successful payment. The status guard keeps a
// replayed notification from rewriting an already-completed record's
// transaction reference or paid-at instant.
func (r *PaymentRepository) MarkCompleted(bookingID, transactionID string, paidAt time.Time) error {
	query := `
		UPDATE payments
		SET status = 'completed', transaction_id = $2, paid_at = $3,
			updated_at = NOW()
		WHERE booking_id = $1 AND status != 'completed'
	`

	_, err := r.db.Exec(query, bookingID, transactionID, paidAt)
	return err
}

// MarkFailed records a failed payment attempt. Completed records are left
// alone: a failure event racing a success must not undo the success.
func (r *PaymentRepository) MarkFailed(bookingID string) error {
	query := `
		UPDATE payments
		SET status = 'failed', updated_at = NOW()
		WHERE booking_id = $1 AND status != 'completed'
	`

	_, err := r.db.Exec(query, bookingID)
	return err
}

// MarkNotificationSent stamps the dispatch-once marker for a booking's
// confirmation notification.
func (r *PaymentRepository) MarkNotificationSent(bookingID string) error {
	query := `
		UPDATE payments
		SET notification_sent_at = NOW(), updated_at = NOW()
		WHERE booking_id = $1 AND notification_sent_at IS NULL
	`

	_, err := r.db.Exec(query, bookingID)
	return err
}

// scanPayment scans a single payment row
func (r *PaymentRepository) scanPayment(row scanner) (*models.Payment, error) {
	payment := &models.Payment{}
	var transactionID sql.NullString
	var paidAt sql.NullTime
	var notificationSentAt sql.NullTime

	err := row.Scan(
		&payment.ID, &payment.BookingID, &payment.UserID, &payment.Amount,
		&payment.Currency, &payment.Status, &payment.Provider,
		&transactionID, &paidAt, &notificationSentAt,
		&payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if transactionID.Valid {
		payment.TransactionID = &transactionID.String
	}
	if paidAt.Valid {
		payment.PaidAt = &paidAt.Time
	}
	if notificationSentAt.Valid {
		payment.NotificationSentAt = &notificationSentAt.Time
	}

	return payment, nil
}
