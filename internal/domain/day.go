package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// dayFormat defines the ISO-8601 calendar-date layout used on every boundary.
const dayFormat = "2006-01-02"

// ParseDay parses an ISO-8601 calendar date ("YYYY-MM-DD") into a
// normalized day. Time-of-day and timezone components are not accepted.
func ParseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	day, err := time.Parse(dayFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, value)
	}
	return day.UTC(), nil
}

// FormatDay renders a day as an ISO-8601 calendar date.
func FormatDay(day time.Time) string {
	return NormalizeDay(day).Format(dayFormat)
}

// NormalizeDay strips any time-of-day component, leaving UTC midnight.
func NormalizeDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the calendar-day difference from a to b. Partial
// days round up so that a timestamp mid-day still lands on its own day.
func DaysBetween(a, b time.Time) int {
	return int(math.Ceil(b.UTC().Sub(a.UTC()).Hours() / 24))
}

// AddDays shifts a day by n calendar days, keeping it normalized.
func AddDays(day time.Time, n int) time.Time {
	return NormalizeDay(day).AddDate(0, 0, n)
}
