package controller

import (
	"context"
	"sync"
)

// Refresher re-fetches an entity every time its screen gains focus, so edits
// and photo changes made elsewhere are reflected without a manual reload.
//
// Every trigger supersedes any fetch still in flight: completions carry the
// generation they were started under, and a completion whose generation is no
// longer current is discarded rather than applied out of order. After OnLeave
// every outstanding completion is discarded, so a result can never be applied
// to a screen that has since been dismissed. apply therefore only ever sees
// the latest result for a still-visible screen.
type Refresher[T any] struct {
	fetch func(ctx context.Context) (T, error)
	apply func(T)

	mu     sync.Mutex
	gen    uint64
	active bool
}

// NewRefresher constructs a Refresher. fetch loads the entity from the
// server; apply installs a fresh result into displayed state. apply is called
// while the Refresher's lock is held, so it must not call back into the
// Refresher.
func NewRefresher[T any](fetch func(ctx context.Context) (T, error), apply func(T)) *Refresher[T] {
	return &Refresher[T]{fetch: fetch, apply: apply}
}

// OnFocus marks the screen visible and refreshes. Call it on every focus
// transition, not only the first mount.
func (r *Refresher[T]) OnFocus(ctx context.Context) error {
	r.mu.Lock()
	r.active = true
	r.mu.Unlock()
	return r.Trigger(ctx)
}

// OnLeave marks the screen dismissed. In-flight results are silently dropped
// once it has been called.
func (r *Refresher[T]) OnLeave() {
	r.mu.Lock()
	r.active = false
	r.mu.Unlock()
}

// Trigger re-fetches now, without changing the focus flag. The fetch error is
// returned to the caller for a user-facing notice; a stale or post-dismissal
// result is discarded and reported as success.
func (r *Refresher[T]) Trigger(ctx context.Context) error {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	value, err := r.fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active || gen != r.gen {
		return nil
	}
	if err != nil {
		return err
	}
	r.apply(value)
	return nil
}
