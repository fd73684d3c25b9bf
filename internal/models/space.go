package models

import (
	"time"

	"github.com/lib/pq"
)

// SpaceType represents the kind of bookable workspace
type SpaceType string

const (
	SpaceTypeHotDesk       SpaceType = "hot_desk"
	SpaceTypeMeetingRoom   SpaceType = "meeting_room"
	SpaceTypePrivateOffice SpaceType = "private_office"
)

// Space represents a bookable workspace in the catalog.
// Rates are nullable: a space only carries the rates that apply to its type
// (e.g. private offices are monthly-only).
type Space struct {
	ID          string         `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Type        SpaceType      `json:"type" db:"type"`
	Description string         `json:"description" db:"description"`
	Capacity    int            `json:"capacity" db:"capacity"`
	Location    string         `json:"location" db:"location"`
	Floor       *string        `json:"floor,omitempty" db:"floor"`
	HourlyRate  *float64       `json:"hourly_rate,omitempty" db:"hourly_rate"`
	DailyRate   *float64       `json:"daily_rate,omitempty" db:"daily_rate"`
	MonthlyRate *float64       `json:"monthly_rate,omitempty" db:"monthly_rate"`
	Amenities   pq.StringArray `json:"amenities" db:"amenities"`
	IsActive    bool           `json:"is_active" db:"is_active"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// SpaceFilter holds optional filters for listing spaces
type SpaceFilter struct {
	Type       *SpaceType
	Location   *string
	ActiveOnly bool
}

// IsValidSpaceType checks whether the given string is a known space type
func IsValidSpaceType(t string) bool {
	switch SpaceType(t) {
	case SpaceTypeHotDesk, SpaceTypeMeetingRoom, SpaceTypePrivateOffice:
		return true
	}
	return false
}
