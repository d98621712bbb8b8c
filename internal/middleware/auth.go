package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trophyangler/internal/domain"
	jwtsvc "trophyangler/internal/pkg/jwt"
	"trophyangler/internal/pkg/response"
)

const userIDKey = "user_id"

// JWTAuth requires a valid bearer token and stores its subject as user_id.
func JWTAuth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}
		if !authenticate(c, jwt, h) {
			return
		}
		c.Next()
	}
}

// OptionalJWTAuth accepts anonymous requests but still rejects a bad token,
// so a client never silently loses its identity.
func OptionalJWTAuth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			c.Next()
			return
		}
		if !authenticate(c, jwt, h) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, jwt *jwtsvc.Service, header string) bool {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
		return false
	}

	claims, err := jwt.ValidateToken(strings.TrimSpace(parts[1]))
	if err != nil {
		response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return false
	}

	c.Set(userIDKey, claims.UserID())
	return true
}

// CallerFrom returns the authenticated caller, or an anonymous one.
func CallerFrom(c *gin.Context) domain.Caller {
	return domain.Caller{ID: c.GetString(userIDKey)}
}
