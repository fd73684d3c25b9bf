package models

import "time"

// PaymentStatus represents the status of a payment record
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is the one-to-one payment record for a booking. It is created
// when a payment link has been minted and mutated only by reconciliation.
//
// TransactionID initially holds the payment link id; once a payment is
// confirmed it is replaced by the provider's payment intent id.
// NotificationSentAt is the dispatch-once marker for the confirmation
// notification; nil means not yet dispatched.
type Payment struct {
	ID                 string        `json:"id" db:"id"`
	BookingID          string        `json:"booking_id" db:"booking_id"`
	UserID             string        `json:"user_id" db:"user_id"`
	Amount             float64       `json:"amount" db:"amount"`
	Currency           string        `json:"currency" db:"currency"`
	Status             PaymentStatus `json:"status" db:"status"`
	Provider           string        `json:"provider" db:"provider"`
	TransactionID      *string       `json:"transaction_id,omitempty" db:"transaction_id"`
	PaidAt             *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	NotificationSentAt *time.Time    `json:"notification_sent_at,omitempty" db:"notification_sent_at"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

// IsCompleted reports whether the payment reached its success terminal state
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// NotificationSent reports whether the confirmation notification has
// already been dispatched for this payment.
func (p *Payment) NotificationSent() bool {
	return p.NotificationSentAt != nil
}
