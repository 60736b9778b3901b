// Package profileedit keeps a local editable copy of a profile and the
// transient status shown after a save.
package profileedit

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
)

// SuccessDisplay is how long a success status stays visible.
const SuccessDisplay = 3 * time.Second

type StatusKind string

const (
	StatusNone    StatusKind = "none"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message,omitempty"`
}

// ErrNotLoaded is returned when editing before Load.
var ErrNotLoaded = errors.New("profile not loaded")

// ErrSaveInProgress is returned when Save is called while another save runs.
var ErrSaveInProgress = errors.New("profile save already in progress")

type Option func(*Editor)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

type Editor struct {
	userID string
	uc     domain.ProfileUsecase
	now    func() time.Time

	mu       sync.Mutex
	profile  *domain.Profile
	edit     domain.ProfileEdit
	status   Status
	statusAt time.Time
	saving   bool
}

func New(userID string, uc domain.ProfileUsecase, opts ...Option) *Editor {
	e := &Editor{
		userID: userID,
		uc:     uc,
		now:    time.Now,
		status: Status{Kind: StatusNone},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load fetches the profile and resets the editable copy from it.
func (e *Editor) Load(ctx context.Context) error {
	p, err := e.uc.Get(ctx, e.userID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile = p
	e.edit = p.EditableCopy()
	return nil
}

// Set changes one field of the local copy. Nothing is persisted until Save.
func (e *Editor) Set(name string, value interface{}) error {
	f, ok := fieldsByName[name]
	if !ok {
		return &FieldError{Field: name, Reason: "is not an editable field"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.profile == nil {
		return ErrNotLoaded
	}
	return f.assign(&e.edit, value)
}

// Apply sets several fields at once. Either every value is taken or the
// copy is left untouched and the first bad field is reported.
func (e *Editor) Apply(values map[string]interface{}) error {
	unknown := make([]string, 0)
	for name := range values {
		if _, ok := fieldsByName[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &FieldError{Field: unknown[0], Reason: "is not an editable field"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.profile == nil {
		return ErrNotLoaded
	}

	// assign replaces values rather than mutating them, so a shallow copy
	// is enough scratch space
	next := e.edit
	for _, name := range Fields() {
		v, ok := values[name]
		if !ok {
			continue
		}
		if err := fieldsByName[name].assign(&next, v); err != nil {
			return err
		}
	}
	e.edit = next
	return nil
}

// Copy returns the current editable copy.
func (e *Editor) Copy() domain.ProfileEdit {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.edit
	c.Skills = append([]string(nil), e.edit.Skills...)
	return c
}

// Profile returns the last loaded or saved profile.
func (e *Editor) Profile() *domain.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile
}

// Save persists the whole copy in one update and reloads on success.
// Success shows for SuccessDisplay; an error stays until the next save.
func (e *Editor) Save(ctx context.Context) (*domain.Profile, error) {
	e.mu.Lock()
	if e.profile == nil {
		e.mu.Unlock()
		return nil, ErrNotLoaded
	}
	if e.saving {
		e.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	e.saving = true
	edit := e.edit
	e.mu.Unlock()

	saved, err := e.uc.Save(ctx, e.userID, edit)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false
	e.statusAt = e.now()
	if err != nil {
		e.status = Status{Kind: StatusError, Message: messageOf(err)}
		return nil, err
	}
	e.profile = saved
	e.edit = saved.EditableCopy()
	e.status = Status{Kind: StatusSuccess}
	return saved, nil
}

// Saving reports whether a save is in flight.
func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Status returns the indicator as of now.
func (e *Editor) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status.Kind == StatusSuccess && e.now().Sub(e.statusAt) >= SuccessDisplay {
		e.status = Status{Kind: StatusNone}
	}
	return e.status
}

func messageOf(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
