// Package testutil provides shared helpers for integration tests.
// Fixtures run entirely on temporary directories, so integration tests
// need no environment setup and leave nothing behind.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkordes/travel-journal/internal/api"
	"github.com/pkordes/travel-journal/internal/devserver"
	"github.com/pkordes/travel-journal/internal/session"
)

// Fixture bundles a running dev server with everything a test needs to
// talk to it.
type Fixture struct {
	Server   *httptest.Server
	Store    *devserver.Store
	PhotoDir string
}

// StartServer boots a dev server on a throwaway sqlite database and photo
// directory. Everything is torn down when the test (and its subtests)
// finish.
func StartServer(t *testing.T) *Fixture {
	t.Helper()

	dir := t.TempDir()
	photoDir := filepath.Join(dir, "photos")
	if err := os.MkdirAll(photoDir, 0o755); err != nil {
		t.Fatalf("testutil.StartServer: photo dir: %v", err)
	}

	store, err := devserver.OpenStore(filepath.Join(dir, "journal.db"))
	if err != nil {
		t.Fatalf("testutil.StartServer: open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := devserver.NewServer(store, "test-secret", photoDir, log)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &Fixture{Server: ts, Store: store, PhotoDir: photoDir}
}

// NewClient builds an API client against the fixture's server, backed by an
// in-memory session store.
func (f *Fixture) NewClient(t *testing.T) (*api.Client, *session.Session) {
	t.Helper()

	sess := session.New(session.NewMemoryStore())
	client, err := api.New(f.Server.URL, sess,
		api.WithHTTPClient(f.Server.Client()),
	)
	if err != nil {
		t.Fatalf("testutil.NewClient: %v", err)
	}
	return client, sess
}

// LoggedInClient registers a fresh account on the fixture's server and
// returns a client already holding its session token.
func (f *Fixture) LoggedInClient(t *testing.T, username string) *api.Client {
	t.Helper()

	client, _ := f.NewClient(t)
	if _, err := client.Register(context.Background(), username, username+"@example.com", "hunter2!"); err != nil {
		t.Fatalf("testutil.LoggedInClient: register %s: %v", username, err)
	}
	return client
}
