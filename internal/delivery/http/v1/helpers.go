package v1

import (
	"errors"

	"go-jobboard-backend/internal/notifycenter"
	"go-jobboard-backend/pkg/apperror"
)

// messageOf returns the user-facing message of err, hiding internal errors.
func messageOf(err error) string {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Message
	case errors.Is(err, notifycenter.ErrInvalidFilter):
		return "Unknown notification category"
	}
	return "Something went wrong. Please try again."
}
