package services

import (
	"fmt"
	"math"
	"time"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/models"
)

// PricingService derives a monetary amount from a space's rate card, a
// half-open time interval and a billing mode.
type PricingService struct{}

// NewPricingService creates a new PricingService
func NewPricingService() *PricingService {
	return &PricingService{}
}

// Price computes the total amount for booking the space over [start, end).
//
// Hourly mode charges hourly_rate x exact elapsed hours (fractions
// allowed). Daily and monthly modes are flat rates regardless of duration.
// When the requested mode's rate is absent the calculation falls back to
// hourly, then daily; if neither rate exists the request is unpriceable.
// Rounding to two decimals happens half-up, once, at the end.
func (s *PricingService) Price(space *models.Space, start, end time.Time, mode models.BillingMode) (float64, error) {
	if !end.After(start) {
		return 0, models.ErrInvalidInterval
	}

	durationHours := end.Sub(start).Hours()
	var raw float64

	switch {
	case mode == models.BillingModeHourly && space.HourlyRate != nil:
		raw = *space.HourlyRate * durationHours
	case mode == models.BillingModeDaily && space.DailyRate != nil:
		raw = *space.DailyRate
	case mode == models.BillingModeMonthly && space.MonthlyRate != nil:
		raw = *space.MonthlyRate
	case space.HourlyRate != nil:
		raw = *space.HourlyRate * durationHours
	case space.DailyRate != nil:
		raw = *space.DailyRate
	default:
		return 0, fmt.Errorf("%w: space %s, mode %s", models.ErrUnpriceable, space.ID, mode)
	}

	return roundAmount(raw), nil
}

// roundAmount rounds to two decimals, half-up. Fractional cents are never
// silently dropped.
func roundAmount(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// MinorUnits converts a two-decimal amount to minor currency units
// (cents), rounding half-up.
func MinorUnits(amount float64) int64 {
	return int64(math.Floor(amount*100 + 0.5))
}
