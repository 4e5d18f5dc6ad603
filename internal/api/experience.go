package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/travel-journal/internal/domain"
)

// GetExperience returns a full experience including its photos.
func (c *Client) GetExperience(ctx context.Context, id uuid.UUID) (domain.Experience, error) {
	var exp domain.Experience
	if err := c.doJSON(ctx, http.MethodGet, "/api/experience/"+id.String(), nil, &exp, true); err != nil {
		return domain.Experience{}, fmt.Errorf("api.Client.GetExperience: %w", err)
	}
	return exp, nil
}

// CreateExperience submits a validated draft (carrying the parent TripID) and
// returns the saved experience.
func (c *Client) CreateExperience(ctx context.Context, draft domain.ExperienceDraft) (domain.Experience, error) {
	var exp domain.Experience
	if err := c.doJSON(ctx, http.MethodPost, "/api/experience", draft, &exp, true); err != nil {
		return domain.Experience{}, fmt.Errorf("api.Client.CreateExperience: %w", err)
	}
	return exp, nil
}

// UpdateExperience overwrites the experience identified by draft.ID and
// returns the saved record.
func (c *Client) UpdateExperience(ctx context.Context, draft domain.ExperienceDraft) (domain.Experience, error) {
	var exp domain.Experience
	if err := c.doJSON(ctx, http.MethodPut, "/api/experience", draft, &exp, true); err != nil {
		return domain.Experience{}, fmt.Errorf("api.Client.UpdateExperience: %w", err)
	}
	return exp, nil
}

// DeleteExperience removes an experience and (server-side) its photos.
// Succeeds only on an explicit 204.
func (c *Client) DeleteExperience(ctx context.Context, id uuid.UUID) error {
	if err := c.doDelete(ctx, "/api/experience/"+id.String(), nil); err != nil {
		return fmt.Errorf("api.Client.DeleteExperience: %w", err)
	}
	return nil
}
