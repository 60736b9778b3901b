package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/auth"
	"go-jobboard-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestProfileSave(t *testing.T) {
	ctx := context.Background()

	t.Run("Should update once then reload the profile", func(t *testing.T) {
		repo := new(MockProfileRepo)
		edit := domain.ProfileEdit{
			FullName: strPtr("Ana Silva"),
			Skills:   []string{"Go", " go ", "SQL", ""},
		}
		repo.On("UpdateEditable", ctx, userA, mock.MatchedBy(func(e domain.ProfileEdit) bool {
			return assert.ObjectsAreEqual([]string{"Go", "SQL"}, e.Skills)
		})).Return(nil).Once()
		reloaded := &domain.Profile{ID: userA, FullName: strPtr("Ana Silva")}
		repo.On("GetByID", ctx, userA).Return(reloaded, nil).Once()

		got, err := usecase.NewProfileUsecase(repo, validation.New()).Save(ctx, userA, edit)
		require.NoError(t, err)
		assert.Same(t, reloaded, got)
		repo.AssertExpectations(t)
	})

	t.Run("Should reject invalid fields before writing", func(t *testing.T) {
		repo := new(MockProfileRepo)
		edit := domain.ProfileEdit{Phone: strPtr("call me"), LinkedInURL: strPtr("not a url")}

		_, err := usecase.NewProfileUsecase(repo, validation.New()).Save(ctx, userA, edit)
		assert.Equal(t, 400, apperror.StatusOf(err))
		assert.Contains(t, err.Error(), "Phone number")
		repo.AssertNotCalled(t, "UpdateEditable", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should reject an inverted salary range", func(t *testing.T) {
		edit := domain.ProfileEdit{DesiredSalaryMin: intPtr(9000), DesiredSalaryMax: intPtr(5000)}
		_, err := usecase.NewProfileUsecase(new(MockProfileRepo), validation.New()).Save(ctx, userA, edit)
		assert.Equal(t, 400, apperror.StatusOf(err))
	})

	t.Run("Should surface the backend message on failure", func(t *testing.T) {
		repo := new(MockProfileRepo)
		repo.On("UpdateEditable", ctx, userA, mock.Anything).Return(apperror.NotFound("Profile not found"))

		_, err := usecase.NewProfileUsecase(repo, validation.New()).Save(ctx, userA, domain.ProfileEdit{})
		assert.EqualError(t, err, "Profile not found")
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

type stubVerifier struct {
	claims *auth.Claims
	err    error
}

func (s stubVerifier) Verify(string) (*auth.Claims, error) { return s.claims, s.err }

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should resolve role from the users table", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByID", ctx, userA).Return(&domain.User{ID: userA, Email: "ops@example.com", Role: domain.RoleAdmin}, nil)

		id, err := usecase.NewAuthUsecase(users, stubVerifier{claims: &auth.Claims{Subject: userA}}).Authenticate(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, id.Role)
		assert.Equal(t, "ops@example.com", id.Email)
	})

	t.Run("Should default unknown accounts to candidate", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByID", ctx, userA).Return(nil, apperror.NotFound("User not found"))

		id, err := usecase.NewAuthUsecase(users, stubVerifier{claims: &auth.Claims{Subject: userA, Email: "a@example.com"}}).Authenticate(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleCandidate, id.Role)
	})

	t.Run("Should reject a bad token as unauthorized", func(t *testing.T) {
		_, err := usecase.NewAuthUsecase(new(MockUserRepo), stubVerifier{err: errors.New("expired")}).Authenticate(ctx, "tok")
		assert.Equal(t, 401, apperror.StatusOf(err))
	})
}
