package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/travel-journal/internal/domain"
)

// ListTrips returns the current user's trips. The server derives the user
// from the bearer token.
func (c *Client) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	var trips []domain.Trip
	if err := c.doJSON(ctx, http.MethodGet, "/api/trip/user", nil, &trips, true); err != nil {
		return nil, fmt.Errorf("api.Client.ListTrips: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}

// GetTrip returns a full trip including its experiences and photos.
func (c *Client) GetTrip(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	var trip domain.Trip
	if err := c.doJSON(ctx, http.MethodGet, "/api/trip/"+id.String(), nil, &trip, true); err != nil {
		return domain.Trip{}, fmt.Errorf("api.Client.GetTrip: %w", err)
	}
	return trip, nil
}

// CreateTrip submits a validated draft and returns the saved trip with its
// server-assigned ID.
func (c *Client) CreateTrip(ctx context.Context, draft domain.TripDraft) (domain.Trip, error) {
	var trip domain.Trip
	if err := c.doJSON(ctx, http.MethodPost, "/api/trip", draft, &trip, true); err != nil {
		return domain.Trip{}, fmt.Errorf("api.Client.CreateTrip: %w", err)
	}
	return trip, nil
}

// UpdateTrip overwrites the trip identified by draft.ID with the draft's
// fields and returns the saved record.
func (c *Client) UpdateTrip(ctx context.Context, draft domain.TripDraft) (domain.Trip, error) {
	var trip domain.Trip
	if err := c.doJSON(ctx, http.MethodPut, "/api/trip", draft, &trip, true); err != nil {
		return domain.Trip{}, fmt.Errorf("api.Client.UpdateTrip: %w", err)
	}
	return trip, nil
}

// DeleteTrip removes a trip. The server cascades the delete to the trip's
// experiences and photos. Succeeds only on an explicit 204.
func (c *Client) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	if err := c.doDelete(ctx, "/api/trip/"+id.String(), nil); err != nil {
		return fmt.Errorf("api.Client.DeleteTrip: %w", err)
	}
	return nil
}
