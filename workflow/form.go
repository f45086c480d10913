// Package workflow drives the create/edit form for a car: field edits, tag
// management, image-upload completion and the guarded submit.
package workflow

import (
	"context"
	"errors"
	"strings"

	"github.com/krishkalaria12/car-vault/models"
)

type State int

const (
	Idle State = iota
	Editing
	Submitting
	Succeeded
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Field identifies an editable form attribute.
type Field int

const (
	FieldTitle Field = iota
	FieldDescription
	FieldCarType
	FieldCompany
	FieldDealer
)

// Saver persists the assembled car; the create and edit flows plug in
// different store calls.
type Saver func(ctx context.Context, car *models.Car) error

// Form holds the in-progress state of one create or edit workflow. One
// submission may be in flight at a time; a failed submission keeps the
// entered data so nothing has to be retyped.
type Form struct {
	state    State
	editMode bool

	Title       string
	Description string
	CarType     string
	Company     string
	Dealer      string

	TagInput string
	Tags     []string
	Images   []string

	errMsg     string
	validation bool
	persisted  *models.Car
	result     *models.Car
}

// NewCreateForm starts an empty form for a new car.
func NewCreateForm() *Form {
	return &Form{state: Idle}
}

// NewEditForm starts a form pre-filled from a persisted car. Cancel reverts
// to these values.
func NewEditForm(car models.Car) *Form {
	saved := car
	return &Form{
		state:       Idle,
		editMode:    true,
		Title:       car.Title,
		Description: car.Description,
		CarType:     car.CarType,
		Company:     car.Company,
		Dealer:      car.Dealer,
		Tags:        append([]string(nil), car.Tags...),
		Images:      append([]string(nil), car.Images...),
		persisted:   &saved,
	}
}

func (f *Form) State() State { return f.state }

// Err returns the message retained from the last failure, empty once a
// field edit or resubmission clears it.
func (f *Form) Err() string { return f.errMsg }

// FailedValidation reports whether the last failure was the validation
// guard, i.e. no store call was made.
func (f *Form) FailedValidation() bool { return f.state == Failed && f.validation }

// Result returns the car written by a successful submit.
func (f *Form) Result() *models.Car { return f.result }

// EditField updates one attribute and clears any pending error message.
func (f *Form) EditField(field Field, value string) {
	if f.state == Submitting {
		return
	}

	switch field {
	case FieldTitle:
		f.Title = value
	case FieldDescription:
		f.Description = value
	case FieldCarType:
		f.CarType = value
	case FieldCompany:
		f.Company = value
	case FieldDealer:
		f.Dealer = value
	}

	f.errMsg = ""
	f.validation = false
	f.state = Editing
}

// SetTagInput stages tag text for AddTag.
func (f *Form) SetTagInput(value string) {
	f.TagInput = value
}

// AddTag appends the trimmed tag input. Empty input is a no-op; duplicates
// are allowed.
func (f *Form) AddTag() {
	tag := strings.TrimSpace(f.TagInput)
	if tag == "" {
		return
	}
	f.Tags = append(f.Tags, tag)
	f.TagInput = ""
}

// RemoveTag drops the tag at the given position; later tags shift down.
func (f *Form) RemoveTag(index int) {
	if index < 0 || index >= len(f.Tags) {
		return
	}
	f.Tags = append(f.Tags[:index], f.Tags[index+1:]...)
}

// CompleteUpload replaces the image URL list wholesale with the
// orchestrator's result.
func (f *Form) CompleteUpload(urls []string) {
	f.Images = append([]string(nil), urls...)
}

// Validate runs the submit guard without persisting, so callers can reject
// a form before spending any network calls on it. A failure moves the form
// to Failed exactly as a guarded submit would.
func (f *Form) Validate() bool {
	if msg := f.validate(); msg != "" {
		f.fail(msg, true)
		return false
	}
	return true
}

func (f *Form) validate() string {
	if strings.TrimSpace(f.Title) == "" {
		return "Title cannot be empty"
	}
	if strings.TrimSpace(f.Description) == "" {
		return "Description cannot be empty"
	}
	return ""
}

// Submit validates and persists the form. Validation failures never reach
// the saver. A saver failure keeps the entered data; context expiry maps to
// Cancelled instead of hanging in Submitting.
func (f *Form) Submit(ctx context.Context, ownerID string, save Saver) State {
	if f.state == Submitting {
		return f.state
	}

	f.errMsg = ""
	f.validation = false

	if msg := f.validate(); msg != "" {
		f.fail(msg, true)
		return f.state
	}

	f.state = Submitting

	car := f.assemble(ownerID)
	if err := save(ctx, car); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			f.state = Cancelled
			f.errMsg = "The request timed out. Please try again."
			return f.state
		}
		f.fail(err.Error(), false)
		return f.state
	}

	f.result = car
	f.state = Succeeded
	return f.state
}

// Cancel discards in-progress edits and reverts to the last persisted
// values. Only meaningful in edit mode.
func (f *Form) Cancel() {
	if !f.editMode || f.persisted == nil {
		return
	}
	f.Title = f.persisted.Title
	f.Description = f.persisted.Description
	f.CarType = f.persisted.CarType
	f.Company = f.persisted.Company
	f.Dealer = f.persisted.Dealer
	f.Tags = append([]string(nil), f.persisted.Tags...)
	f.Images = append([]string(nil), f.persisted.Images...)
	f.errMsg = ""
	f.validation = false
	f.state = Idle
}

func (f *Form) fail(msg string, validation bool) {
	f.errMsg = msg
	f.validation = validation
	f.state = Failed
}

func (f *Form) assemble(ownerID string) *models.Car {
	car := &models.Car{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		CarType:     f.CarType,
		Company:     f.Company,
		Dealer:      f.Dealer,
		Tags:        append([]string(nil), f.Tags...),
		Images:      append([]string(nil), f.Images...),
	}
	if f.editMode && f.persisted != nil {
		car.ID = f.persisted.ID
		car.CreatedAt = f.persisted.CreatedAt
	}
	return car
}
