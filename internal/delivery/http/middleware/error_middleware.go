package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var resumeErr *security.ResumeError
		if errors.As(err, &resumeErr) {
			response.Error(c, resumeStatus(resumeErr.Kind), resumeErr.Message, gin.H{"kind": resumeErr.Kind})
			return
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("request failed", slog.String("path", c.FullPath()), slog.Any("error", err))
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		// Never expose internal error details to clients
		logger.Log.Error("internal server error", slog.String("path", c.FullPath()), slog.Any("error", err))
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}

func resumeStatus(kind security.ResumeErrorKind) int {
	switch kind {
	case security.ResumeErrSize, security.ResumeErrName:
		return http.StatusBadRequest
	case security.ResumeErrFormat:
		return http.StatusUnsupportedMediaType
	case security.ResumeErrNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
