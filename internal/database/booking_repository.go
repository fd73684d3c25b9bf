package database

import (
	"database/sql"
	"time"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// BookingRepository handles database operations for the bookings table.
//
// The table carries a btree_gist exclusion constraint over
// (space_id, tstzrange(start_time, end_time)) restricted to non-cancelled
// rows (see migrations/001_schema.sql). That constraint is the
// authoritative defense against two writers claiming the same slot; the
// application-level availability check only exists to give a friendly
// answer before money is involved.
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, user_id, space_id, start_time, end_time,
	   billing_mode, attendees_count, total_amount, currency, status,
	   notes, created_at, updated_at`

// Create inserts a new booking. A serialization conflict with a concurrent
// overlapping booking surfaces as models.ErrSlotUnavailable.
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, user_id, space_id, start_time, end_time,
			billing_mode, attendees_count, total_amount, currency,
			status, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		RETURNING created_at, updated_at
	`

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		booking.ID, booking.UserID, booking.SpaceID, booking.StartTime,
		booking.EndTime, booking.BillingMode, booking.AttendeesCount,
		booking.TotalAmount, booking.Currency, booking.Status, booking.Notes,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if isSlotConflict(err) {
		return models.ErrSlotUnavailable
	}
	return err
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID string) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`

	booking, err := r.scanBooking(r.db.QueryRow(query, bookingID))
	if err == sql.ErrNoRows {
		return nil, models.ErrBookingNotFound
	}
	return booking, err
}

// GetByUserID retrieves a user's bookings, newest first
func (r *BookingRepository) GetByUserID(userID string, filter models.BookingFilter) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
	`
	args := []interface{}{userID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` AND status = $2`
	}
	if filter.UpcomingOnly {
		query += ` AND start_time >= NOW()`
	}
	query += ` ORDER BY start_time`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}

// CountOverlapping counts non-cancelled bookings for a space whose
// half-open interval overlaps [start, end). Strict overlap semantics:
// [s1,e1) and [s2,e2) overlap iff s1 < e2 AND s2 < e1, so back-to-back
// bookings do not collide.
func (r *BookingRepository) CountOverlapping(spaceID string, start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE space_id = $1
		  AND status != 'cancelled'
		  AND start_time < $3
		  AND end_time > $2
	`

	var count int
	err := r.db.QueryRow(query, spaceID, start, end).Scan(&count)
	return count, err
}

// UpdateStatusFrom conditionally moves a booking from one status to
// another in a single row update. Returns true when the row was updated,
// false when the booking was not in the expected source status (including
// when it no longer exists). A terminal state is never blindly overwritten.
func (r *BookingRepository) UpdateStatusFrom(bookingID string, from, to models.BookingStatus) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := r.db.Exec(query, bookingID, from, to)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

// CancelOwned cancels a booking on behalf of its owner. The ownership and
// cancellable-status checks ride in the WHERE clause so the update is a
// single conditional write.
func (r *BookingRepository) CancelOwned(bookingID, userID string) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1
		  AND user_id = $2
		  AND status IN ('pending', 'confirmed')
	`

	result, err := r.db.Exec(query, bookingID, userID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

// isSlotConflict reports whether err is a Postgres exclusion or unique
// violation raised by the no-overlap constraint.
func isSlotConflict(err error) bool {
	if err == nil {
		return false
	}
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23P01" || pqErr.Code == "23505"
	}
	return false
}

// scanBooking scans a single booking row
func (r *BookingRepository) scanBooking(row scanner) (*models.Booking, error) {
	booking := &models.Booking{}
	var notes sql.NullString

	err := row.Scan(
		&booking.ID, &booking.UserID, &booking.SpaceID,
		&booking.StartTime, &booking.EndTime, &booking.BillingMode,
		&booking.AttendeesCount, &booking.TotalAmount, &booking.Currency,
		&booking.Status, &notes, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if notes.Valid {
		booking.Notes = &notes.String
	}

	return booking, nil
}
