package profileedit

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProfileUsecase struct {
	mock.Mock
}

func (m *MockProfileUsecase) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileUsecase) Save(ctx context.Context, userID string, edit domain.ProfileEdit) (*domain.Profile, error) {
	args := m.Called(ctx, userID, edit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func strPtr(s string) *string { return &s }

func loadedEditor(t *testing.T, uc *MockProfileUsecase, clock *fakeClock) *Editor {
	t.Helper()
	resumeURL := "https://cdn.example/u1/1_cv.pdf"
	uc.On("Get", mock.Anything, "u1").Return(&domain.Profile{
		ID:        "u1",
		FullName:  strPtr("Ana"),
		Skills:    []string{"Go"},
		ResumeURL: &resumeURL,
	}, nil)

	e := New("u1", uc, WithClock(clock.Now))
	require.NoError(t, e.Load(context.Background()))
	return e
}

func TestEditorSetValidatesTypes(t *testing.T) {
	e := loadedEditor(t, new(MockProfileUsecase), &fakeClock{t: time.Unix(0, 0)})

	require.NoError(t, e.Set("headline", "  Backend engineer "))
	require.NoError(t, e.Set("experience_years", float64(7)))
	require.NoError(t, e.Set("skills", []interface{}{"Go", "SQL"}))
	require.NoError(t, e.Set("show_email", true))
	require.NoError(t, e.Set("full_name", nil))

	c := e.Copy()
	assert.Equal(t, "Backend engineer", *c.Headline)
	assert.Equal(t, 7, *c.ExperienceYears)
	assert.Equal(t, []string{"Go", "SQL"}, c.Skills)
	assert.True(t, c.ShowEmail)
	assert.Nil(t, c.FullName)

	var fe *FieldError
	assert.ErrorAs(t, e.Set("experience_years", 2.5), &fe)
	assert.ErrorAs(t, e.Set("show_phone", "yes"), &fe)
	assert.ErrorAs(t, e.Set("resume_url", "x"), &fe)
	assert.Equal(t, "resume_url", fe.Field)
}

func TestEditorRequiresLoad(t *testing.T) {
	e := New("u1", new(MockProfileUsecase))
	assert.ErrorIs(t, e.Set("bio", "hi"), ErrNotLoaded)
	_, err := e.Save(context.Background())
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestEditorSaveSuccessExpires(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	uc := new(MockProfileUsecase)
	e := loadedEditor(t, uc, clock)
	require.NoError(t, e.Set("bio", "Hello"))

	saved := &domain.Profile{ID: "u1", Bio: strPtr("Hello"), FullName: strPtr("Ana")}
	uc.On("Save", mock.Anything, "u1", mock.MatchedBy(func(p domain.ProfileEdit) bool {
		return p.Bio != nil && *p.Bio == "Hello" && p.FullName != nil && *p.FullName == "Ana"
	})).Return(saved, nil).Once()

	got, err := e.Save(context.Background())
	require.NoError(t, err)
	assert.Same(t, saved, got)
	assert.Same(t, saved, e.Profile())
	assert.Equal(t, StatusSuccess, e.Status().Kind)

	clock.Advance(2 * time.Second)
	assert.Equal(t, StatusSuccess, e.Status().Kind)

	clock.Advance(time.Second)
	assert.Equal(t, StatusNone, e.Status().Kind)
}

func TestEditorSaveErrorPersists(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	uc := new(MockProfileUsecase)
	e := loadedEditor(t, uc, clock)
	uc.On("Save", mock.Anything, "u1", mock.Anything).Return(nil, apperror.BadRequest("Phone number: invalid phone number"))

	_, err := e.Save(context.Background())
	require.Error(t, err)

	clock.Advance(time.Hour)
	st := e.Status()
	assert.Equal(t, StatusError, st.Kind)
	assert.Equal(t, "Phone number: invalid phone number", st.Message)

	// The unsaved copy survives a failed save
	assert.Equal(t, "Ana", *e.Copy().FullName)
}

func TestEditorApply(t *testing.T) {
	e := loadedEditor(t, new(MockProfileUsecase), &fakeClock{})

	err := e.Apply(map[string]interface{}{"company": "Acme", "job_alerts": true})
	require.NoError(t, err)
	assert.Equal(t, "Acme", *e.Copy().Company)
	assert.True(t, e.Copy().JobAlerts)

	err = e.Apply(map[string]interface{}{"resume_size": 10})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
}

func TestEditorApplyIsAllOrNothing(t *testing.T) {
	e := loadedEditor(t, new(MockProfileUsecase), &fakeClock{})
	before := e.Copy()

	err := e.Apply(map[string]interface{}{"company": "Acme", "headline": "Lead", "resume_url": "x"})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "resume_url", fe.Field)
	assert.Equal(t, before, e.Copy())

	err = e.Apply(map[string]interface{}{"company": "Acme", "experience_years": "ten"})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "experience_years", fe.Field)
	assert.Equal(t, before, e.Copy())
}

func TestFieldsExcludeResume(t *testing.T) {
	for _, name := range Fields() {
		assert.NotContains(t, name, "resume")
	}
	assert.Len(t, Fields(), 23)
}

func TestEditorLoadError(t *testing.T) {
	uc := new(MockProfileUsecase)
	uc.On("Get", mock.Anything, "u1").Return(nil, errors.New("db down"))
	assert.Error(t, New("u1", uc).Load(context.Background()))
}
