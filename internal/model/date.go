package model

import (
	"fmt"
	"time"
)

// DateFormat is the on-disk date layout for items, config, and generic CSVs.
const DateFormat = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC calendar date.
func Date(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of calendar days from a to b. It
// works from Unix seconds, so it holds for spans beyond time.Duration's
// range of about 292 years.
func DaysBetween(a, b time.Time) int {
	return int((Day(b).Unix() - Day(a).Unix()) / secondsPerDay)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate returns dayOfMonth in the given month, pulled back to the
// month's last day when the month is shorter.
func ClampedDate(year int, month time.Month, dayOfMonth int) time.Time {
	if last := DaysInMonth(year, month); dayOfMonth > last {
		dayOfMonth = last
	}
	return Date(year, month, dayOfMonth)
}

// MonthBounds returns the first and last day of the month containing t.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	return Date(y, m, 1), Date(y, m, DaysInMonth(y, m))
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}
