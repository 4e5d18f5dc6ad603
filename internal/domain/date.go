package domain

import (
	"fmt"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Date is a calendar date with no time-of-day component. On the wire it is
// always the string "YYYY-MM-DD". Internally the date is anchored at midnight
// UTC and never converted through a local time zone, so the calendar day a
// user picked is the calendar day the server receives regardless of where or
// when they picked it.
type Date = openapi_types.Date

// NewDate returns the calendar date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("domain.ParseDate: %w", err)
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	year, month, day := t.UTC().Date()
	return NewDate(year, month, day)
}

// ValidateRange reports whether from..to is a valid span (from ≤ to).
// Returns a wrapped ErrValidation when it is not.
func ValidateRange(from, to Date) error {
	if from.After(to.Time) {
		return fmt.Errorf("%w: start date must not be after end date", ErrValidation)
	}
	return nil
}

// ValidateWithin reports whether d lies inside lower..upper inclusive.
// Returns a wrapped ErrValidation naming the allowed span when it does not.
func ValidateWithin(d, lower, upper Date) error {
	if d.Before(lower.Time) || d.After(upper.Time) {
		return fmt.Errorf("%w: date %s must be between %s and %s",
			ErrValidation,
			d.Format(time.DateOnly),
			lower.Format(time.DateOnly),
			upper.Format(time.DateOnly))
	}
	return nil
}
