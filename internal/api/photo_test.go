package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-journal/internal/domain"
)

func TestUploadPhoto(t *testing.T) {
	srv := newTestServer(t)
	client, _ := newClient(t, srv, "tok-abc")

	tripID := uuid.New()
	photoID := uuid.New()

	srv.router.Post("/api/photo", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
		assert.Equal(t, tripID.String(), r.FormValue("tripId"))
		assert.Empty(t, r.FormValue("experienceId"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "sunset.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake png bytes", string(data))

		writeJSON(t, w, http.StatusCreated, domain.Photo{ID: photoID, ImageURL: "stored.png"})
	})

	owner := domain.PhotoOwner{Kind: domain.OwnerTrip, ID: tripID}
	photo, err := client.UploadPhoto(context.Background(), owner,
		strings.NewReader("fake png bytes"), "sunset.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, photoID, photo.ID)
	assert.Equal(t, "stored.png", photo.ImageURL)
}

func TestUploadPhotoExperienceOwner(t *testing.T) {
	srv := newTestServer(t)
	client, _ := newClient(t, srv, "tok-abc")

	expID := uuid.New()
	srv.router.Post("/api/photo", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, expID.String(), r.FormValue("experienceId"))
		assert.Empty(t, r.FormValue("tripId"))
		writeJSON(t, w, http.StatusCreated, domain.Photo{ID: uuid.New(), ImageURL: "x.jpg"})
	})

	owner := domain.PhotoOwner{Kind: domain.OwnerExperience, ID: expID}
	_, err := client.UploadPhoto(context.Background(), owner,
		strings.NewReader("bytes"), "x.jpg", "")
	require.NoError(t, err)
}

func TestUploadPhotoDefaultsMIMEType(t *testing.T) {
	srv := newTestServer(t)
	client, _ := newClient(t, srv, "tok-abc")

	srv.router.Post("/api/photo", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
		writeJSON(t, w, http.StatusCreated, domain.Photo{ID: uuid.New(), ImageURL: "y.jpg"})
	})

	owner := domain.PhotoOwner{Kind: domain.OwnerTrip, ID: uuid.New()}
	_, err := client.UploadPhoto(context.Background(), owner,
		strings.NewReader("bytes"), "y.jpg", "")
	require.NoError(t, err)
}

func TestUploadPhotoServerRejection(t *testing.T) {
	srv := newTestServer(t)
	client, _ := newClient(t, srv, "tok-abc")

	srv.router.Post("/api/photo", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	owner := domain.PhotoOwner{Kind: domain.OwnerTrip, ID: uuid.New()}
	_, err := client.UploadPhoto(context.Background(), owner,
		strings.NewReader("bytes"), "bad.jpg", "image/jpeg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpload))
	assert.Contains(t, err.Error(), "bad.jpg")
}

func TestUploadPhotoUnreadableImage(t *testing.T) {
	srv := newTestServer(t)
	client, _ := newClient(t, srv, "tok-abc")

	owner := domain.PhotoOwner{Kind: domain.OwnerTrip, ID: uuid.New()}
	_, err := client.UploadPhoto(context.Background(), owner,
		failingReader{}, "broken.jpg", "image/jpeg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpload))
	assert.Zero(t, srv.requests.Load(), "an unreadable image must not produce a request")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk error") }
