package v1

import (
	"net/http"
	"time"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
}

type meResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`

	CanPublish bool       `json:"can_publish"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

func NewAuthHandler(protected *gin.RouterGroup, authUC domain.AuthUsecase) {
	handler := &AuthHandler{authUC: authUC}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/me", handler.Me)
	}
}

// Me godoc
// @Summary      Current account
// @Description  The identity resolved from the bearer token. Accounts without a users row report the candidate role.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=meResponse}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	resp := meResponse{
		UserID: c.GetString(string(domain.KeyUserID)),
		Email:  c.GetString(string(domain.KeyUserEmail)),
		Role:   c.GetString(string(domain.KeyUserRole)),
	}

	user, err := h.authUC.GetCurrentUser(c.Request.Context(), resp.UserID)
	switch {
	case err == nil:
		resp.CanPublish = user.CanPublishNotifications()
		resp.CreatedAt = &user.CreatedAt
	case apperror.IsNotFound(err):
		// No users row yet; the token identity is all there is
	default:
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Current user", resp)
}
