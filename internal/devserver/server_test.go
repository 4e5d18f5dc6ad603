package devserver_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-journal/internal/domain"
	"github.com/pkordes/travel-journal/testutil"
)

func TestRegisterAndLogin(t *testing.T) {
	f := testutil.StartServer(t)
	ctx := context.Background()

	client, _ := f.NewClient(t)
	_, err := client.Register(ctx, "maya", "maya@example.com", "hunter2!")
	require.NoError(t, err)

	t.Run("duplicateUsername", func(t *testing.T) {
		dup, _ := f.NewClient(t)
		_, err := dup.Register(ctx, "maya", "else@example.com", "hunter2!")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrAuth))
	})

	t.Run("freshLogin", func(t *testing.T) {
		again, sess := f.NewClient(t)
		_, err := again.Login(ctx, "maya", "hunter2!")
		require.NoError(t, err)

		token, err := sess.Token(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("wrongPassword", func(t *testing.T) {
		bad, _ := f.NewClient(t)
		_, err := bad.Login(ctx, "maya", "wrong")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrAuth))
	})
}

func TestJournalEndToEnd(t *testing.T) {
	f := testutil.StartServer(t)
	ctx := context.Background()
	client := f.LoggedInClient(t, "maya")

	trip, err := client.CreateTrip(ctx, domain.TripDraft{
		Title:    "Andalusia road trip",
		Location: "Spain",
		DateFrom: domain.NewDate(2025, time.April, 5),
		DateTo:   domain.NewDate(2025, time.April, 19),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, trip.ID)
	assert.Equal(t, "2025-04-05", trip.DateFrom.Format(time.DateOnly))

	exp, err := client.CreateExperience(ctx, domain.ExperienceDraft{
		TripID: trip.ID,
		Title:  "Alhambra",
		Date:   domain.NewDate(2025, time.April, 8),
	})
	require.NoError(t, err)

	t.Run("experienceOutsideSpanRejected", func(t *testing.T) {
		_, err := client.CreateExperience(ctx, domain.ExperienceDraft{
			TripID: trip.ID,
			Title:  "Too late",
			Date:   domain.NewDate(2025, time.April, 25),
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	tripPhoto, err := client.UploadPhoto(ctx,
		domain.PhotoOwner{Kind: domain.OwnerTrip, ID: trip.ID},
		strings.NewReader("trip photo bytes"), "beach.jpg", "image/jpeg")
	require.NoError(t, err)

	expPhoto, err := client.UploadPhoto(ctx,
		domain.PhotoOwner{Kind: domain.OwnerExperience, ID: exp.ID},
		strings.NewReader("experience photo bytes"), "palace.png", "image/png")
	require.NoError(t, err)

	t.Run("photoFilesOnDisk", func(t *testing.T) {
		for _, p := range []domain.Photo{tripPhoto, expPhoto} {
			data, err := os.ReadFile(filepath.Join(f.PhotoDir, p.ImageURL))
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		}
	})

	t.Run("photoServedOverHTTP", func(t *testing.T) {
		resp, err := f.Server.Client().Get(client.PhotoURL(tripPhoto.ImageURL))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("tripNestsEverything", func(t *testing.T) {
		got, err := client.GetTrip(ctx, trip.ID)
		require.NoError(t, err)
		require.Len(t, got.Experiences, 1)
		assert.Equal(t, "Alhambra", got.Experiences[0].Title)
		require.Len(t, got.Experiences[0].Photos, 1)
		require.Len(t, got.Photos, 1)
		assert.Equal(t, tripPhoto.ID, got.Photos[0].ID)
	})

	t.Run("listTrips", func(t *testing.T) {
		trips, err := client.ListTrips(ctx)
		require.NoError(t, err)
		require.Len(t, trips, 1)
		assert.Equal(t, trip.ID, trips[0].ID)
	})

	t.Run("deletePhoto", func(t *testing.T) {
		require.NoError(t, client.DeletePhoto(ctx, expPhoto.ID))
		_, err := os.Stat(filepath.Join(f.PhotoDir, expPhoto.ImageURL))
		assert.True(t, os.IsNotExist(err), "deleting the record must remove the file")
	})

	t.Run("deleteTripCascades", func(t *testing.T) {
		require.NoError(t, client.DeleteTrip(ctx, trip.ID))

		_, err := client.GetTrip(ctx, trip.ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		_, err = client.GetExperience(ctx, exp.ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		_, err = os.Stat(filepath.Join(f.PhotoDir, tripPhoto.ImageURL))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestUsersAreIsolated(t *testing.T) {
	f := testutil.StartServer(t)
	ctx := context.Background()

	maya := f.LoggedInClient(t, "maya")
	noah := f.LoggedInClient(t, "noah")

	trip, err := maya.CreateTrip(ctx, domain.TripDraft{
		Title:    "Solo retreat",
		Location: "Finland",
		DateFrom: domain.NewDate(2025, time.February, 1),
		DateTo:   domain.NewDate(2025, time.February, 7),
	})
	require.NoError(t, err)

	_, err = noah.GetTrip(ctx, trip.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = noah.DeleteTrip(ctx, trip.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	trips, err := noah.ListTrips(ctx)
	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	f := testutil.StartServer(t)

	req, err := http.NewRequest(http.MethodGet, f.Server.URL+"/api/trip/user", nil)
	require.NoError(t, err)

	resp, err := f.Server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req.Header.Set("Authorization", "Bearer not-a-real-token")
	resp2, err := f.Server.Client().Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestValidationErrorsSurfaceMessages(t *testing.T) {
	f := testutil.StartServer(t)
	client := f.LoggedInClient(t, "maya")

	_, err := client.CreateTrip(context.Background(), domain.TripDraft{
		Location: "Nowhere",
		DateFrom: domain.NewDate(2025, time.March, 1),
		DateTo:   domain.NewDate(2025, time.March, 2),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "title")
}
