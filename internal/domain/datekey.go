package domain

import (
	"fmt"
	"time"
)

// DateKeyLayout is the canonical, fixed-width date key format. Because every
// key has the same width and is zero-padded, lexicographic order on keys is
// calendar order.
const DateKeyLayout = "2006-01-02"

// ParseDateKey validates s as a canonical date key and returns the date it names.
// Returns ErrInvalidKey for anything that is not exactly YYYY-MM-DD with a day
// that exists in that month.
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.Parse(DateKeyLayout, s)
	if err != nil || t.Format(DateKeyLayout) != s {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidKey, s)
	}
	return t, nil
}

// FormatDateKey returns the date key for the calendar day of t.
func FormatDateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// MonthBounds returns the inclusive key range used for month queries.
// The upper bound is always day 31 regardless of the month's length; keys are
// compared as strings, so the loose bound never admits another month.
func MonthBounds(year int, month time.Month) (start, end string) {
	return fmt.Sprintf("%04d-%02d-01", year, int(month)), fmt.Sprintf("%04d-%02d-31", year, int(month))
}

// YearBounds returns the inclusive key range used for year queries.
func YearBounds(year int) (start, end string) {
	return fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year)
}

// ValidateMonth rejects months outside January..December.
func ValidateMonth(month time.Month) error {
	if month < time.January || month > time.December {
		return fmt.Errorf("%w: month must be between 1 and 12, got %d", ErrValidation, int(month))
	}
	return nil
}
