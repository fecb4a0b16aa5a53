package timecalc

import (
	"fmt"
	"math"
	"time"
)

const millisPerHour = 3_600_000

// HoursFromMillis converts a duration in milliseconds to hours at full
// precision. Rounding happens only at formatting time.
func HoursFromMillis(ms int64) float64 {
	return float64(ms) / millisPerHour
}

// FormatHHMM formats a duration in milliseconds as "HH:MM". Hours are
// zero-padded to at least two digits but not capped (e.g. "112:30").
func FormatHHMM(ms int64) string {
	totalMinutes := ms / 60_000
	h := totalMinutes / 60
	m := totalMinutes % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}

// FormatDecimalHours formats a duration in milliseconds as decimal hours
// with exactly two decimal places, e.g. "1.50".
func FormatDecimalHours(ms int64) string {
	return FormatHours(HoursFromMillis(ms))
}

// FormatHours formats an hour value with exactly two decimal places,
// rounding half away from zero.
func FormatHours(hours float64) string {
	return fmt.Sprintf("%.2f", math.Round(hours*100)/100)
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// ParseMonth parses a YYYY-MM month string and returns its first day.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return t, nil
}

// MonthRange returns the first and last day of the month containing t.
func MonthRange(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1)
	last = time.Date(last.Year(), last.Month(), last.Day(), 23, 59, 59, 0, t.Location())
	return first, last
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
