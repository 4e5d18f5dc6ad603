// Package controller implements the client-side engines the (excluded) UI
// layer drives: the trip and experience form state machines, the photo
// pick/preview/upload workflow, and the focus-driven refresh of displayed
// entities.
//
// Controllers assume the platform's single-threaded cooperative execution
// model: the UI invokes one operation at a time and awaits it. They are not
// safe for concurrent use from multiple goroutines, with the exception of
// Refresher, which must tolerate overlapping completions by design.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-journal/internal/domain"
)

// FormState is the lifecycle position of a form instance.
type FormState int

const (
	// FormLoading is the initial state of an edit form while the existing
	// entity is being fetched. Create forms skip it.
	FormLoading FormState = iota
	// FormEditing is the interactive state: fields mutable, pickers usable.
	FormEditing
	// FormSubmitting covers the create/update request. The form returns to
	// FormEditing afterwards whether or not the request succeeded; on
	// success the caller is expected to navigate away.
	FormSubmitting
)

func (s FormState) String() string {
	switch s {
	case FormLoading:
		return "loading"
	case FormEditing:
		return "editing"
	case FormSubmitting:
		return "submitting"
	}
	return fmt.Sprintf("FormState(%d)", int(s))
}

// FormMode distinguishes the create and edit variants of a form.
type FormMode int

const (
	ModeCreate FormMode = iota
	ModeEdit
)

// DateField holds one date input's committed value plus the staged value used
// while a picker is open. Two commit styles are supported, matching the two
// platform picker behaviours: Set commits immediately (with validation), and
// Stage/Confirm/Cancel stages the pick until an explicit confirm, with cancel
// restoring the prior committed value.
type DateField struct {
	committed domain.Date
	staged    domain.Date
	open      bool
}

// Value returns the committed date.
func (f *DateField) Value() domain.Date { return f.committed }

// Staged returns the value currently shown in an open picker.
func (f *DateField) Staged() domain.Date { return f.staged }

// PickerOpen reports whether the picker for this field is open.
func (f *DateField) PickerOpen() bool { return f.open }

// OpenPicker opens the picker seeded with the committed value.
func (f *DateField) OpenPicker() {
	f.staged = f.committed
	f.open = true
}

// Stage records an interactive pick without committing it.
func (f *DateField) Stage(d domain.Date) { f.staged = d }

// Confirm commits the staged value if check accepts it. On rejection the
// staged value reverts to the committed one, the picker closes, and the
// check's error is returned for display.
func (f *DateField) Confirm(check func(domain.Date) error) error {
	defer func() {
		f.staged = f.committed
		f.open = false
	}()
	if err := check(f.staged); err != nil {
		return err
	}
	f.committed = f.staged
	return nil
}

// Cancel closes the picker and discards the staged value.
func (f *DateField) Cancel() {
	f.staged = f.committed
	f.open = false
}

// Set commits d immediately if check accepts it; an out-of-range pick is
// rejected with the check's error and the committed value is untouched.
func (f *DateField) Set(d domain.Date, check func(domain.Date) error) error {
	f.open = false
	if err := check(d); err != nil {
		return err
	}
	f.committed = d
	f.staged = d
	return nil
}

// seed sets both copies without validation, used when loading an existing
// entity into an edit form.
func (f *DateField) seed(d domain.Date) {
	f.committed = d
	f.staged = d
}

// TripAPI is the slice of the API client the trip form depends on. Defining
// it here lets form tests inject a mock without a real server.
type TripAPI interface {
	GetTrip(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	CreateTrip(ctx context.Context, draft domain.TripDraft) (domain.Trip, error)
	UpdateTrip(ctx context.Context, draft domain.TripDraft) (domain.Trip, error)
}

// TripForm manages the draft state for creating or editing one trip.
// Lifecycle: NewTripForm starts in FormEditing; NewTripEditForm starts in
// FormLoading and becomes interactive after Load succeeds.
type TripForm struct {
	api    TripAPI
	mode   FormMode
	tripID uuid.UUID
	state  FormState

	Title       string
	Description string
	Location    string
	DateFrom    DateField
	DateTo      DateField
}

// NewTripForm returns a create-mode form with both dates seeded to today.
func NewTripForm(api TripAPI) *TripForm {
	f := &TripForm{api: api, mode: ModeCreate, state: FormEditing}
	today := domain.DateOf(time.Now())
	f.DateFrom.seed(today)
	f.DateTo.seed(today)
	return f
}

// NewTripEditForm returns an edit-mode form for the trip with the given id.
// Call Load before interacting with it.
func NewTripEditForm(api TripAPI, id uuid.UUID) *TripForm {
	return &TripForm{api: api, mode: ModeEdit, tripID: id, state: FormLoading}
}

// State returns the form's current lifecycle state.
func (f *TripForm) State() FormState { return f.state }

// Mode returns whether this form creates a new trip or edits an existing one.
func (f *TripForm) Mode() FormMode { return f.mode }

// Load fetches the existing trip and seeds every draft field, including both
// date copies. On failure the form stays in FormLoading and the caller should
// abort back to the previous screen with the error.
func (f *TripForm) Load(ctx context.Context) error {
	if f.mode != ModeEdit {
		return nil
	}
	trip, err := f.api.GetTrip(ctx, f.tripID)
	if err != nil {
		return fmt.Errorf("controller.TripForm.Load: %w", err)
	}
	f.Title = trip.Title
	f.Description = trip.Description
	f.Location = trip.Location
	f.DateFrom.seed(trip.DateFrom)
	f.DateTo.seed(trip.DateTo)
	f.state = FormEditing
	return nil
}

// SetDateFrom commits a start date immediately, rejecting one after the
// current end date.
func (f *TripForm) SetDateFrom(d domain.Date) error {
	return f.DateFrom.Set(d, f.checkFrom)
}

// SetDateTo commits an end date immediately, rejecting one before the
// current start date.
func (f *TripForm) SetDateTo(d domain.Date) error {
	return f.DateTo.Set(d, f.checkTo)
}

// ConfirmDateFrom commits the staged start date, with the same range check as
// SetDateFrom.
func (f *TripForm) ConfirmDateFrom() error {
	return f.DateFrom.Confirm(f.checkFrom)
}

// ConfirmDateTo commits the staged end date, with the same range check as
// SetDateTo.
func (f *TripForm) ConfirmDateTo() error {
	return f.DateTo.Confirm(f.checkTo)
}

func (f *TripForm) checkFrom(d domain.Date) error {
	return domain.ValidateRange(d, f.DateTo.Value())
}

func (f *TripForm) checkTo(d domain.Date) error {
	return domain.ValidateRange(f.DateFrom.Value(), d)
}

// Draft assembles the current field values into a TripDraft.
func (f *TripForm) Draft() domain.TripDraft {
	return domain.TripDraft{
		ID:          f.tripID,
		Title:       f.Title,
		Description: f.Description,
		Location:    f.Location,
		DateFrom:    f.DateFrom.Value(),
		DateTo:      f.DateTo.Value(),
	}
}

// Submit validates the draft locally and, only if every invariant holds,
// issues the create or update request. A validation failure returns a
// field-specific domain.ErrValidation without touching the network. On any
// failure the form returns to FormEditing with all entered values preserved;
// on success the caller navigates away and the result is not cached locally.
func (f *TripForm) Submit(ctx context.Context) (domain.Trip, error) {
	if f.state != FormEditing {
		return domain.Trip{}, fmt.Errorf("controller.TripForm.Submit: form is %s, not editing", f.state)
	}

	draft := f.Draft()
	if err := draft.Validate(); err != nil {
		return domain.Trip{}, err
	}

	f.state = FormSubmitting
	defer func() { f.state = FormEditing }()

	var (
		saved domain.Trip
		err   error
	)
	if f.mode == ModeEdit {
		saved, err = f.api.UpdateTrip(ctx, draft)
	} else {
		saved, err = f.api.CreateTrip(ctx, draft)
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("controller.TripForm.Submit: %w", err)
	}
	return saved, nil
}

// ExperienceAPI is the slice of the API client the experience form depends on.
type ExperienceAPI interface {
	GetExperience(ctx context.Context, id uuid.UUID) (domain.Experience, error)
	CreateExperience(ctx context.Context, draft domain.ExperienceDraft) (domain.Experience, error)
	UpdateExperience(ctx context.Context, draft domain.ExperienceDraft) (domain.Experience, error)
}

// ExperienceForm manages the draft state for creating or editing one
// experience. The parent trip's date span bounds every date pick and the
// final submit.
type ExperienceForm struct {
	api          ExperienceAPI
	mode         FormMode
	experienceID uuid.UUID
	tripID       uuid.UUID
	tripFrom     domain.Date
	tripTo       domain.Date
	state        FormState

	Title       string
	Description string
	Date        DateField
}

// NewExperienceForm returns a create-mode form for an experience under the
// given trip, with the date seeded to the trip's start.
func NewExperienceForm(api ExperienceAPI, tripID uuid.UUID, tripFrom, tripTo domain.Date) *ExperienceForm {
	f := &ExperienceForm{
		api:      api,
		mode:     ModeCreate,
		tripID:   tripID,
		tripFrom: tripFrom,
		tripTo:   tripTo,
		state:    FormEditing,
	}
	f.Date.seed(tripFrom)
	return f
}

// NewExperienceEditForm returns an edit-mode form for the experience with the
// given id. Call Load before interacting with it.
func NewExperienceEditForm(api ExperienceAPI, id uuid.UUID, tripFrom, tripTo domain.Date) *ExperienceForm {
	return &ExperienceForm{
		api:          api,
		mode:         ModeEdit,
		experienceID: id,
		tripFrom:     tripFrom,
		tripTo:       tripTo,
		state:        FormLoading,
	}
}

// State returns the form's current lifecycle state.
func (f *ExperienceForm) State() FormState { return f.state }

// Mode returns whether this form creates or edits an experience.
func (f *ExperienceForm) Mode() FormMode { return f.mode }

// Load fetches the existing experience and seeds every draft field. On
// failure the form stays in FormLoading.
func (f *ExperienceForm) Load(ctx context.Context) error {
	if f.mode != ModeEdit {
		return nil
	}
	exp, err := f.api.GetExperience(ctx, f.experienceID)
	if err != nil {
		return fmt.Errorf("controller.ExperienceForm.Load: %w", err)
	}
	f.tripID = exp.TripID
	f.Title = exp.Title
	f.Description = exp.Description
	f.Date.seed(exp.Date)
	f.state = FormEditing
	return nil
}

// SetDate commits a date immediately, rejecting one outside the parent
// trip's span.
func (f *ExperienceForm) SetDate(d domain.Date) error {
	return f.Date.Set(d, f.checkDate)
}

// ConfirmDate commits the staged date, with the same bounds check as SetDate.
func (f *ExperienceForm) ConfirmDate() error {
	return f.Date.Confirm(f.checkDate)
}

func (f *ExperienceForm) checkDate(d domain.Date) error {
	return domain.ValidateWithin(d, f.tripFrom, f.tripTo)
}

// Draft assembles the current field values into an ExperienceDraft.
func (f *ExperienceForm) Draft() domain.ExperienceDraft {
	return domain.ExperienceDraft{
		ID:          f.experienceID,
		TripID:      f.tripID,
		Title:       f.Title,
		Description: f.Description,
		Date:        f.Date.Value(),
	}
}

// Submit validates the draft against the parent trip's span and, only if
// every invariant holds, issues the create or update request. Semantics
// mirror TripForm.Submit.
func (f *ExperienceForm) Submit(ctx context.Context) (domain.Experience, error) {
	if f.state != FormEditing {
		return domain.Experience{}, fmt.Errorf("controller.ExperienceForm.Submit: form is %s, not editing", f.state)
	}

	draft := f.Draft()
	if err := draft.Validate(f.tripFrom, f.tripTo); err != nil {
		return domain.Experience{}, err
	}

	f.state = FormSubmitting
	defer func() { f.state = FormEditing }()

	var (
		saved domain.Experience
		err   error
	)
	if f.mode == ModeEdit {
		saved, err = f.api.UpdateExperience(ctx, draft)
	} else {
		saved, err = f.api.CreateExperience(ctx, draft)
	}
	if err != nil {
		return domain.Experience{}, fmt.Errorf("controller.ExperienceForm.Submit: %w", err)
	}
	return saved, nil
}
