package database

import (
	"database/sql"
	"fmt"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/models"
)

// SpaceRepository handles database operations for the spaces catalog.
// The catalog is read-only from the booking engine's point of view.
type SpaceRepository struct {
	db DB
}

// NewSpaceRepository creates a new SpaceRepository
func NewSpaceRepository(db DB) *SpaceRepository {
	return &SpaceRepository{db: db}
}

const spaceColumns = `id, name, type, description, capacity, location, floor,
	   hourly_rate, daily_rate, monthly_rate, amenities, is_active,
	   created_at, updated_at`

// GetByID retrieves a space by ID
func (r *SpaceRepository) GetByID(spaceID string) (*models.Space, error) {
	query := fmt.Sprintf(`SELECT %s FROM spaces WHERE id = $1`, spaceColumns)

	space, err := r.scanSpace(r.db.QueryRow(query, spaceID))
	if err == sql.ErrNoRows {
		return nil, models.ErrSpaceNotFound
	}
	return space, err
}

// List retrieves spaces matching the filter, ordered by location and name
func (r *SpaceRepository) List(filter models.SpaceFilter) ([]models.Space, error) {
	query := fmt.Sprintf(`SELECT %s FROM spaces WHERE 1=1`, spaceColumns)
	args := []interface{}{}

	if filter.ActiveOnly {
		query += ` AND is_active = true`
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if filter.Location != nil {
		args = append(args, "%"+*filter.Location+"%")
		query += fmt.Sprintf(` AND location ILIKE $%d`, len(args))
	}
	query += ` ORDER BY location, name`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spaces := []models.Space{}
	for rows.Next() {
		space, err := r.scanSpace(rows)
		if err != nil {
			return nil, err
		}
		spaces = append(spaces, *space)
	}

	return spaces, rows.Err()
}

// scanSpace scans a single space row
func (r *SpaceRepository) scanSpace(row scanner) (*models.Space, error) {
	space := &models.Space{}
	var description sql.NullString
	var floor sql.NullString
	var hourlyRate sql.NullFloat64
	var dailyRate sql.NullFloat64
	var monthlyRate sql.NullFloat64

	err := row.Scan(
		&space.ID, &space.Name, &space.Type, &description, &space.Capacity,
		&space.Location, &floor, &hourlyRate, &dailyRate, &monthlyRate,
		&space.Amenities, &space.IsActive, &space.CreatedAt, &space.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		space.Description = description.String
	}
	if floor.Valid {
		space.Floor = &floor.String
	}
	if hourlyRate.Valid {
		space.HourlyRate = &hourlyRate.Float64
	}
	if dailyRate.Valid {
		space.DailyRate = &dailyRate.Float64
	}
	if monthlyRate.Valid {
		space.MonthlyRate = &monthlyRate.Float64
	}

	return space, nil
}
