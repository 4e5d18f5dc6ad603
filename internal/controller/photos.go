package controller

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/pkordes/travel-journal/internal/domain"
)

// PhotoState is the photo workflow's current position.
type PhotoState int

const (
	// PhotoIdle means nothing is staged, uploading, or being viewed.
	PhotoIdle PhotoState = iota
	// PhotoPreviewing means a picked batch awaits confirm or cancel.
	PhotoPreviewing
	// PhotoUploading covers the sequential upload loop.
	PhotoUploading
	// PhotoViewing means an existing photo is open fullscreen.
	PhotoViewing
)

func (s PhotoState) String() string {
	switch s {
	case PhotoIdle:
		return "idle"
	case PhotoPreviewing:
		return "previewing"
	case PhotoUploading:
		return "uploading"
	case PhotoViewing:
		return "viewing"
	}
	return fmt.Sprintf("PhotoState(%d)", int(s))
}

// PhotoAPI is the slice of the API client the photo workflow depends on.
type PhotoAPI interface {
	UploadPhoto(ctx context.Context, owner domain.PhotoOwner, r io.Reader, filename, mimeType string) (domain.Photo, error)
	DeletePhoto(ctx context.Context, id uuid.UUID) error
}

// PhotoWorkflow manages attaching photos to one trip or experience: source
// selection, permission, staged preview, strictly sequential upload, and
// deletion of existing photos from the fullscreen viewer.
//
// refresh re-fetches the owning entity from the server; it runs after every
// upload outcome (full or partial) and after every successful delete, so the
// displayed collection always reflects server truth rather than an optimistic
// local patch.
type PhotoWorkflow struct {
	api     PhotoAPI
	picker  Picker
	owner   domain.PhotoOwner
	refresh func(ctx context.Context) error

	state   PhotoState
	batch   []ImageRef
	viewing *domain.Photo
}

// NewPhotoWorkflow constructs a workflow for the given owner. A nil refresh
// is replaced with a no-op.
func NewPhotoWorkflow(api PhotoAPI, picker Picker, owner domain.PhotoOwner, refresh func(ctx context.Context) error) *PhotoWorkflow {
	if refresh == nil {
		refresh = func(context.Context) error { return nil }
	}
	return &PhotoWorkflow{api: api, picker: picker, owner: owner, refresh: refresh}
}

// State returns the workflow's current state.
func (w *PhotoWorkflow) State() PhotoState { return w.state }

// Batch returns the staged images awaiting confirmation.
func (w *PhotoWorkflow) Batch() []ImageRef { return w.batch }

// Viewing returns the photo open in the fullscreen viewer, or nil.
func (w *PhotoWorkflow) Viewing() *domain.Photo { return w.viewing }

// PickFrom requests the source's permission, runs the picker, and stages the
// result for preview. A denied permission returns domain.ErrPermission and
// performs no further action. A cancelled or empty pick returns nil silently;
// the workflow stays Idle either way.
func (w *PhotoWorkflow) PickFrom(ctx context.Context, src Source) error {
	if w.state != PhotoIdle {
		return fmt.Errorf("controller.PhotoWorkflow.PickFrom: workflow is %s, not idle", w.state)
	}

	granted, err := w.picker.RequestPermission(ctx, src)
	if err != nil {
		return fmt.Errorf("controller.PhotoWorkflow.PickFrom: %w", err)
	}
	if !granted {
		return fmt.Errorf("%w: allow %s access", domain.ErrPermission, src)
	}

	refs, err := w.picker.Pick(ctx, src)
	if err != nil {
		return fmt.Errorf("controller.PhotoWorkflow.PickFrom: %w", err)
	}
	if len(refs) == 0 {
		return nil
	}

	w.batch = refs
	w.state = PhotoPreviewing
	return nil
}

// CancelPreview discards the staged batch and returns to Idle.
func (w *PhotoWorkflow) CancelPreview() {
	w.batch = nil
	w.state = PhotoIdle
}

// Upload sends the staged batch sequentially, one independent request per
// image: upload i+1 does not begin until upload i has completed. On the first
// failure the loop halts; the returned count is how many images were
// persisted before it. Successes are never rolled back — partial success is
// an accepted outcome. Whatever happened, the owner is re-fetched afterwards
// so the display reflects exactly what the server holds.
func (w *PhotoWorkflow) Upload(ctx context.Context) (uploaded int, err error) {
	if w.state != PhotoPreviewing {
		return 0, fmt.Errorf("controller.PhotoWorkflow.Upload: workflow is %s, not previewing", w.state)
	}

	w.state = PhotoUploading
	batch := w.batch
	w.batch = nil

	var uploadErr error
	for _, ref := range batch {
		if uploadErr = w.uploadOne(ctx, ref); uploadErr != nil {
			break
		}
		uploaded++
	}

	w.state = PhotoIdle
	return uploaded, errors.Join(uploadErr, w.refresh(ctx))
}

func (w *PhotoWorkflow) uploadOne(ctx context.Context, ref ImageRef) error {
	rc, err := ref.Open()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrUpload, ref.Name, err)
	}
	defer rc.Close()

	if _, err := w.api.UploadPhoto(ctx, w.owner, rc, ref.Name, ref.MIME); err != nil {
		return err
	}
	return nil
}

// View opens an existing photo fullscreen.
func (w *PhotoWorkflow) View(p domain.Photo) error {
	if w.state != PhotoIdle {
		return fmt.Errorf("controller.PhotoWorkflow.View: workflow is %s, not idle", w.state)
	}
	w.viewing = &p
	w.state = PhotoViewing
	return nil
}

// CloseViewer closes the fullscreen viewer without deleting anything.
func (w *PhotoWorkflow) CloseViewer() {
	w.viewing = nil
	w.state = PhotoIdle
}

// DeleteViewed removes the photo open in the viewer. The UI asks the user to
// confirm before calling this. Only the server's explicit 204 counts as
// deleted: then the viewer closes and the owner is re-fetched. On any other
// outcome the error is returned and the workflow stays in Viewing with the
// photo still visible.
func (w *PhotoWorkflow) DeleteViewed(ctx context.Context) error {
	if w.state != PhotoViewing {
		return fmt.Errorf("controller.PhotoWorkflow.DeleteViewed: workflow is %s, not viewing", w.state)
	}

	if err := w.api.DeletePhoto(ctx, w.viewing.ID); err != nil {
		return err
	}

	w.viewing = nil
	w.state = PhotoIdle
	return w.refresh(ctx)
}
