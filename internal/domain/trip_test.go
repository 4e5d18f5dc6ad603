package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTripDraft() TripDraft {
	return TripDraft{
		Title:    "Iceland ring road",
		Location: "Iceland",
		DateFrom: NewDate(2025, time.July, 1),
		DateTo:   NewDate(2025, time.July, 14),
	}
}

func TestTripDraftValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validTripDraft().Validate())
	})

	t.Run("emptyTitle", func(t *testing.T) {
		d := validTripDraft()
		d.Title = "   "
		err := d.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Contains(t, err.Error(), "title")
	})

	t.Run("emptyLocation", func(t *testing.T) {
		d := validTripDraft()
		d.Location = ""
		err := d.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Contains(t, err.Error(), "location")
	})

	t.Run("invertedDates", func(t *testing.T) {
		d := validTripDraft()
		d.DateFrom, d.DateTo = d.DateTo, d.DateFrom
		err := d.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})
}

func TestExperienceDraftValidate(t *testing.T) {
	tripFrom := NewDate(2025, time.July, 1)
	tripTo := NewDate(2025, time.July, 14)

	draft := func() ExperienceDraft {
		return ExperienceDraft{
			Title: "Glacier hike",
			Date:  NewDate(2025, time.July, 3),
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, draft().Validate(tripFrom, tripTo))
	})

	t.Run("emptyTitle", func(t *testing.T) {
		d := draft()
		d.Title = ""
		err := d.Validate(tripFrom, tripTo)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("dateOutsideTrip", func(t *testing.T) {
		d := draft()
		d.Date = NewDate(2025, time.July, 15)
		err := d.Validate(tripFrom, tripTo)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Contains(t, err.Error(), "2025-07-01")
		assert.Contains(t, err.Error(), "2025-07-14")
	})
}
