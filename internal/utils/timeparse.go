package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate parses a date in any of the accepted layouts, or the relative
// keywords "today", "tomorrow" and "next week". The result is midnight in
// the supplied location.
func ParseDate(dateStr string, now time.Time) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, dateStr, now.Location()); err == nil {
			return parsed, nil
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch strings.ToLower(strings.TrimSpace(dateStr)) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "next week":
		return today.AddDate(0, 0, 7), nil
	}

	return time.Time{}, fmt.Errorf("could not parse date: %s", dateStr)
}

// ParseTimeOfDay parses a wall-clock time such as "14:00", "2pm" or
// "2:00 PM" and returns the hour and minute.
func ParseTimeOfDay(timeStr string) (hour, minute int, err error) {
	upper := strings.ToUpper(strings.TrimSpace(timeStr))
	isPM := strings.Contains(upper, "PM")
	isAM := strings.Contains(upper, "AM")
	clean := strings.TrimSpace(strings.NewReplacer("AM", "", "PM", "").Replace(upper))

	if clean == "" {
		return 0, 0, fmt.Errorf("could not parse time: %s", timeStr)
	}

	if strings.Contains(clean, ":") {
		parts := strings.SplitN(clean, ":", 2)
		hour, err = strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return 0, 0, fmt.Errorf("could not parse time: %s", timeStr)
		}
		minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("could not parse time: %s", timeStr)
		}
	} else {
		hour, err = strconv.Atoi(clean)
		if err != nil {
			return 0, 0, fmt.Errorf("could not parse time: %s", timeStr)
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time out of range: %s", timeStr)
	}

	if isPM && hour < 12 {
		hour += 12
	} else if isAM && hour == 12 {
		hour = 0
	}

	return hour, minute, nil
}

// ParseDateTime combines a flexible date string and time string into a
// single instant in now's location.
func ParseDateTime(dateStr, timeStr string, now time.Time) (time.Time, error) {
	date, err := ParseDate(dateStr, now)
	if err != nil {
		return time.Time{}, err
	}

	hour, minute, err := ParseTimeOfDay(timeStr)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, now.Location()), nil
}
