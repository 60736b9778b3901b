package usecase

import (
	"context"
	"log/slog"
	"net/http"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/auth"
	"go-jobboard-backend/pkg/logger"
)

// TokenVerifier checks a raw bearer token. *auth.Verifier satisfies it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type authUsecase struct {
	userRepo domain.UserRepository
	verifier TokenVerifier
}

func NewAuthUsecase(userRepo domain.UserRepository, verifier TokenVerifier) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo, verifier: verifier}
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	return u.userRepo.GetByID(ctx, id)
}

// Authenticate resolves the account behind token. Accounts without a users
// row yet (the auth provider creates them first) default to candidate.
func (u *authUsecase) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := u.verifier.Verify(token)
	if err != nil {
		return nil, apperror.New(http.StatusUnauthorized, "Invalid or expired token", err)
	}

	identity := &domain.Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   domain.RoleCandidate,
	}

	user, err := u.userRepo.GetByID(ctx, claims.Subject)
	switch {
	case err == nil:
		identity.Role = user.Role
		if identity.Email == "" {
			identity.Email = user.Email
		}
	case apperror.IsNotFound(err):
	default:
		// Role lookup failing must not lock everyone out; fall back to least privilege
		logger.Log.Warn("role lookup failed, using candidate role",
			slog.String("user_id", claims.Subject), slog.Any("error", err))
	}
	return identity, nil
}
