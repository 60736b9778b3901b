package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// BearerToken extracts the token from the Authorization header, falling back
// to the auth_token cookie.
func BearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

// WithIdentity stores the signed-in account on both the gin context and the
// request context, so usecases called with c.Request.Context() see it too.
func WithIdentity(c *gin.Context, identity *domain.Identity) {
	c.Set(string(domain.KeyUserID), identity.UserID)
	c.Set(string(domain.KeyUserEmail), identity.Email)
	c.Set(string(domain.KeyUserRole), identity.Role)

	ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, identity.UserID)
	ctx = context.WithValue(ctx, domain.KeyUserRole, identity.Role)
	c.Request = c.Request.WithContext(ctx)
}

func AuthMiddleware(authUC domain.AuthUsecase, audit *security.SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		identity, err := authUC.Authenticate(c.Request.Context(), token)
		if err != nil {
			audit.LogUnauthorizedAccess(c.Request.Context(), c.ClientIP(), c.GetString(string(domain.KeyRequestID)), c.FullPath(), "invalid token")
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		WithIdentity(c, identity)
		c.Next()
	}
}

// RequireRole rejects accounts whose role is not listed.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(string(domain.KeyUserRole))
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		response.Error(c, http.StatusForbidden, "You do not have permission to perform this action", nil)
		c.Abort()
	}
}
