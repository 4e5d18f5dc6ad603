package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-journal/internal/domain"
	"github.com/pkordes/travel-journal/internal/session"
)

// testServer wires a chi router into an httptest server and counts every
// request it receives, so tests can assert that fail-fast paths send nothing.
type testServer struct {
	*httptest.Server
	router   chi.Router
	requests atomic.Int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{router: chi.NewRouter()}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.requests.Add(1)
		ts.router.ServeHTTP(w, r)
	})
	ts.Server = httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

// newClient returns a client against srv holding the given token ("" for a
// logged-out client).
func newClient(t *testing.T, srv *testServer, token string) (*Client, *session.Session) {
	t.Helper()
	sess := session.New(session.NewMemoryStore())
	if token != "" {
		require.NoError(t, sess.Establish(context.Background(), token))
	}
	client, err := New(srv.URL, sess, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client, sess
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	sess := session.New(session.NewMemoryStore())
	_, err := New("/api", sess)
	assert.Error(t, err)

	_, err = New("://bad", sess)
	assert.Error(t, err)
}

func TestAuthenticatedCallWithoutTokenSendsNothing(t *testing.T) {
	srv := newTestServer(t)
	client, _ := newClient(t, srv, "")
	ctx := context.Background()

	_, listErr := client.ListTrips(ctx)
	_, getErr := client.GetTrip(ctx, uuid.New())
	delErr := client.DeleteTrip(ctx, uuid.New())
	_, upErr := client.UploadPhoto(ctx, domain.PhotoOwner{Kind: domain.OwnerTrip, ID: uuid.New()}, nil, "a.jpg", "image/jpeg")

	for _, err := range []error{listErr, getErr, delErr, upErr} {
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrAuth))
	}
	assert.Zero(t, srv.requests.Load(), "no request may leave the client without a token")
}

func TestAuthorizationHeaderOnEveryAuthenticatedCall(t *testing.T) {
	srv := newTestServer(t)
	client, _ := newClient(t, srv, "tok-abc")

	var headers []string
	record := func(r *http.Request) { headers = append(headers, r.Header.Get("Authorization")) }

	srv.router.Get("/api/trip/user", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(t, w, http.StatusOK, []domain.Trip{})
	})
	srv.router.Delete("/api/trip/{id}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	srv.router.Delete("/api/photo", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	_, err := client.ListTrips(ctx)
	require.NoError(t, err)
	require.NoError(t, client.DeleteTrip(ctx, uuid.New()))
	require.NoError(t, client.DeletePhoto(ctx, uuid.New()))

	require.Len(t, headers, 3)
	for _, h := range headers {
		assert.Equal(t, "Bearer tok-abc", h)
	}
}

func TestLoginEstablishesToken(t *testing.T) {
	srv := newTestServer(t)
	srv.router.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "maya", body["username"])
		assert.Equal(t, "secret", body["password"])
		writeJSON(t, w, http.StatusOK, map[string]string{"token": "tok-login"})
	})

	client, sess := newClient(t, srv, "")
	token, err := client.Login(context.Background(), "maya", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-login", token)

	stored, err := sess.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-login", stored)
}

func TestLoginFailures(t *testing.T) {
	t.Run("badCredentials", func(t *testing.T) {
		srv := newTestServer(t)
		srv.router.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusUnauthorized, map[string]any{
				"error": map[string]string{"code": "unauthorized", "message": "invalid credentials"},
			})
		})
		client, _ := newClient(t, srv, "")

		_, err := client.Login(context.Background(), "maya", "wrong")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrAuth))
		assert.Contains(t, err.Error(), "invalid credentials")
	})

	t.Run("missingToken", func(t *testing.T) {
		srv := newTestServer(t)
		srv.router.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]string{})
		})
		client, sess := newClient(t, srv, "")

		_, err := client.Login(context.Background(), "maya", "secret")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrAuth))
		assert.Contains(t, err.Error(), "token not received")

		_, err = sess.Token(context.Background())
		assert.True(t, errors.Is(err, domain.ErrAuth), "failed login must not establish a session")
	})
}

func TestLogoutRevokesAuthenticatedCalls(t *testing.T) {
	srv := newTestServer(t)
	srv.router.Get("/api/trip/user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []domain.Trip{})
	})

	client, _ := newClient(t, srv, "tok-abc")
	ctx := context.Background()

	_, err := client.ListTrips(ctx)
	require.NoError(t, err)
	sent := srv.requests.Load()

	require.NoError(t, client.Logout(ctx))

	_, err = client.ListTrips(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuth))
	assert.Equal(t, sent, srv.requests.Load(), "calls after logout must not reach the server")
}

func TestTripRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	client, _ := newClient(t, srv, "tok-abc")

	draft := domain.TripDraft{
		Title:    "Kyoto in autumn",
		Location: "Japan",
		DateFrom: domain.NewDate(2025, time.November, 10),
		DateTo:   domain.NewDate(2025, time.November, 20),
	}
	id := uuid.New()

	srv.router.Post("/api/trip", func(w http.ResponseWriter, r *http.Request) {
		var got domain.TripDraft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, draft.Title, got.Title)
		assert.Equal(t, "2025-11-10", got.DateFrom.Format(time.DateOnly))
		assert.Equal(t, "2025-11-20", got.DateTo.Format(time.DateOnly))

		writeJSON(t, w, http.StatusCreated, domain.Trip{
			ID:       id,
			Title:    got.Title,
			Location: got.Location,
			DateFrom: got.DateFrom,
			DateTo:   got.DateTo,
		})
	})

	saved, err := client.CreateTrip(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, id, saved.ID)
	assert.Equal(t, draft.Title, saved.Title)
	assert.Equal(t, draft.Location, saved.Location)
	assert.True(t, saved.DateFrom.Equal(draft.DateFrom.Time))
	assert.True(t, saved.DateTo.Equal(draft.DateTo.Time))
}

func TestListTripsEmptyBodyYieldsEmptySlice(t *testing.T) {
	srv := newTestServer(t)
	srv.router.Get("/api/trip/user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, nil)
	})
	client, _ := newClient(t, srv, "tok-abc")

	trips, err := client.ListTrips(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, trips)
	assert.Empty(t, trips)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   any
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, nil, domain.ErrAuth},
		{"forbidden", http.StatusForbidden, nil, domain.ErrAuth},
		{"notFound", http.StatusNotFound, nil, domain.ErrNotFound},
		{"badRequest", http.StatusBadRequest, map[string]string{"message": "bad payload"}, domain.ErrValidation},
		{"unprocessable", http.StatusUnprocessableEntity, map[string]any{
			"error": map[string]string{"message": "title is required"},
		}, domain.ErrValidation},
		{"serverError", http.StatusInternalServerError, nil, domain.ErrNetwork},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t)
			srv.router.Get("/api/trip/{id}", func(w http.ResponseWriter, r *http.Request) {
				if tc.body != nil {
					writeJSON(t, w, tc.status, tc.body)
					return
				}
				w.WriteHeader(tc.status)
			})
			client, _ := newClient(t, srv, "tok-abc")

			_, err := client.GetTrip(context.Background(), uuid.New())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestValidationErrorCarriesServerMessage(t *testing.T) {
	srv := newTestServer(t)
	srv.router.Post("/api/trip", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnprocessableEntity, map[string]any{
			"error": map[string]string{"code": "validation", "message": "location is required"},
		})
	})
	client, _ := newClient(t, srv, "tok-abc")

	_, err := client.CreateTrip(context.Background(), domain.TripDraft{Title: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "location is required")
}

func TestDeleteRequiresExplicit204(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"ok200IsNotDeletion", http.StatusOK, domain.ErrNetwork},
		{"accepted202IsNotDeletion", http.StatusAccepted, domain.ErrNetwork},
		{"unauthorized", http.StatusUnauthorized, domain.ErrAuth},
		{"notFound", http.StatusNotFound, domain.ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t)
			srv.router.Delete("/api/trip/{id}", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})
			client, _ := newClient(t, srv, "tok-abc")

			err := client.DeleteTrip(context.Background(), uuid.New())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	t.Run("noContentSucceeds", func(t *testing.T) {
		srv := newTestServer(t)
		srv.router.Delete("/api/trip/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		client, _ := newClient(t, srv, "tok-abc")

		assert.NoError(t, client.DeleteTrip(context.Background(), uuid.New()))
	})
}

func TestPhotoURL(t *testing.T) {
	srv := newTestServer(t)
	client, _ := newClient(t, srv, "")

	assert.Equal(t, srv.URL+"/photos/abc.jpg", client.PhotoURL("abc.jpg"))
}
