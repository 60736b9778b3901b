package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the configured frontend origin, plus localhost
// origins outside production. Disallowed origins get no CORS headers.
func CORSMiddleware(frontendURL string, production bool) gin.HandlerFunc {
	allowed := map[string]bool{}
	if frontendURL != "" {
		allowed[strings.TrimRight(frontendURL, "/")] = true
	}
	if !production {
		allowed["http://localhost:3000"] = true
		allowed["http://127.0.0.1:3000"] = true
		allowed["http://localhost:3001"] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		// Same-origin and non-browser requests carry no Origin
		isAllowed := origin == "" || allowed[origin]

		if isAllowed && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			c.Header("Access-Control-Max-Age", "86400")
		}
		c.Header("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			if isAllowed {
				c.AbortWithStatus(http.StatusNoContent)
			} else {
				c.AbortWithStatus(http.StatusForbidden)
			}
			return
		}

		c.Next()
	}
}

// AllowedOrigin reports whether a WebSocket upgrade from origin is acceptable
// under the same policy as CORSMiddleware.
func AllowedOrigin(frontendURL string, production bool) func(r *http.Request) bool {
	frontendURL = strings.TrimRight(frontendURL, "/")
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || origin == frontendURL {
			return true
		}
		return !production && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:"))
	}
}
