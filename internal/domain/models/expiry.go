package models

import "time"

// ExpiryStatus is the freshness classification derived from an expiry date.
type ExpiryStatus string

const (
	StatusExpired    ExpiryStatus = "EXPIRED"
	StatusNearExpiry ExpiryStatus = "NEAR_EXPIRY"
	StatusOK         ExpiryStatus = "OK"
)

// NearExpiryDays is the last day count, inclusive, that still reports NEAR_EXPIRY.
const NearExpiryDays = 3

// Statuses lists every status in display order.
var Statuses = []ExpiryStatus{StatusExpired, StatusNearExpiry, StatusOK}

// Classify maps an expiry date to a status relative to today.
func Classify(expiry, today time.Time) ExpiryStatus {
	daysLeft := DaysBetween(today, expiry)
	switch {
	case daysLeft < 0:
		return StatusExpired
	case daysLeft <= NearExpiryDays:
		return StatusNearExpiry
	default:
		return StatusOK
	}
}

// DaysBetween counts whole calendar days from one date to another.
// Only the year, month and day of each value are considered.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// DateOf truncates t to midnight UTC of its calendar date in t's own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}
