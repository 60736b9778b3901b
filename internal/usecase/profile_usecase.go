package usecase

import (
	"context"
	"strings"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type profileUsecase struct {
	repo     domain.ProfileRepository
	validate *validator.Validate
}

func NewProfileUsecase(repo domain.ProfileRepository, validate *validator.Validate) domain.ProfileUsecase {
	return &profileUsecase{repo: repo, validate: validate}
}

func (u *profileUsecase) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	return u.repo.GetByID(ctx, userID)
}

// Save persists the whole editable copy in one update, then reloads so
// trigger-maintained columns come back to the caller.
func (u *profileUsecase) Save(ctx context.Context, userID string, edit domain.ProfileEdit) (*domain.Profile, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	edit.Skills = normalizeSkills(edit.Skills)
	if err := u.validate.Struct(edit); err != nil {
		return nil, apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; "))
	}
	if edit.DesiredSalaryMin != nil && edit.DesiredSalaryMax != nil && *edit.DesiredSalaryMin > *edit.DesiredSalaryMax {
		return nil, apperror.BadRequest("Minimum desired salary cannot exceed the maximum")
	}

	if err := u.repo.UpdateEditable(ctx, userID, edit); err != nil {
		return nil, err
	}
	return u.repo.GetByID(ctx, userID)
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
