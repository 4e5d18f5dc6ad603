// Package session manages the authentication token shared by every
// authenticated API call. The token is the only cross-component mutable
// state in the client: it is written by login and registration, cleared by
// logout, and read everywhere else.
//
// Durable storage is delegated to a TokenStore so the platform's secure
// key-value store can be injected by the surrounding app. MemoryStore and
// FileStore are the stand-ins used by tests and the CLI.
package session

import (
	"context"
	"fmt"

	"github.com/pkordes/travel-journal/internal/domain"
)

// TokenStore is the persistent key-value collaborator holding the session
// token. Get returns the empty string (and no error) when no token is stored.
// Implementations must tolerate Clear when nothing is stored.
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Session wraps a TokenStore with the token lifecycle rules.
type Session struct {
	store TokenStore
}

// New constructs a Session backed by the provided store.
func New(store TokenStore) *Session {
	return &Session{store: store}
}

// Token returns the stored bearer token. Returns a wrapped domain.ErrAuth
// when no token is stored, so authenticated operations can fail fast before
// any network request is attempted.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("session.Session.Token: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("%w: no session token stored, please log in again", domain.ErrAuth)
	}
	return token, nil
}

// Establish stores the token issued by login or registration.
func (s *Session) Establish(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: server did not return a token", domain.ErrAuth)
	}
	if err := s.store.Set(ctx, token); err != nil {
		return fmt.Errorf("session.Session.Establish: %w", err)
	}
	return nil
}

// Clear removes the stored token. Called on logout; subsequent authenticated
// operations fail with domain.ErrAuth until a new token is established.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("session.Session.Clear: %w", err)
	}
	return nil
}
