package domain

import "github.com/google/uuid"

// Photo is an image attached to a trip or an experience. ImageURL is an
// opaque server-relative path; resolve it against the API base URL for
// display. Photos are created by upload and destroyed by delete, never
// updated in place.
type Photo struct {
	ID       uuid.UUID `json:"id"`
	ImageURL string    `json:"imageUrl"`
}

// OwnerKind identifies which entity a photo is attached to.
type OwnerKind int

const (
	OwnerTrip OwnerKind = iota
	OwnerExperience
)

// PhotoOwner names the single entity a photo upload is tagged with.
type PhotoOwner struct {
	Kind OwnerKind
	ID   uuid.UUID
}

// FormField returns the multipart form field the upload endpoint expects
// for this owner kind.
func (o PhotoOwner) FormField() string {
	if o.Kind == OwnerExperience {
		return "experienceId"
	}
	return "tripId"
}
