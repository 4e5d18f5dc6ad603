package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Experience is a dated sub-event belonging to exactly one trip.
// TripID is a back-reference only; the trip owns the experience.
type Experience struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"tripId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        Date      `json:"date"`
	Photos      []Photo   `json:"photos,omitempty"`
}

// ExperienceDraft is the client-held editable subset of an Experience.
type ExperienceDraft struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"tripId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        Date      `json:"date"`
}

// Validate enforces the experience field invariants against the parent trip's
// date span: Title must be non-empty and Date must lie within tripFrom..tripTo
// inclusive. Returns a wrapped ErrValidation naming the offending field.
func (d ExperienceDraft) Validate(tripFrom, tripTo Date) error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return ValidateWithin(d.Date, tripFrom, tripTo)
}
