// Package domain contains the core data types for the travel journal client.
// This package has zero internal dependencies and is imported by every other
// internal package (session, api, controller, devserver).
//
// The server is the authoritative owner of all persistent state; these types
// are the shapes the client consumes and submits.
package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Trip is the top-level journal entry: a date range spent at a location.
// Experiences and Photos are owned by the trip; deleting a trip cascades to
// both on the server.
type Trip struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Location    string       `json:"location"`
	DateFrom    Date         `json:"dateFrom"`
	DateTo      Date         `json:"dateTo"`
	Experiences []Experience `json:"experiences,omitempty"`
	Photos      []Photo      `json:"photos,omitempty"`
}

// TripDraft is the client-held editable subset of a Trip. It is the body of
// both create (ID zero) and update (ID set) requests and is never persisted
// locally.
type TripDraft struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location"`
	DateFrom    Date      `json:"dateFrom"`
	DateTo      Date      `json:"dateTo"`
}

// Validate enforces the trip field invariants:
//   - Title must be non-empty (whitespace-only titles are rejected).
//   - Location must be non-empty.
//   - DateFrom must not be after DateTo.
//
// Returns a wrapped ErrValidation naming the offending field.
func (d TripDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(d.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrValidation)
	}
	return ValidateRange(d.DateFrom, d.DateTo)
}
