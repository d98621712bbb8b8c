package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trophyangler/internal/pkg/response"
)

// InternalTokenAuth guards the identity-provider sync endpoints with a
// static bearer token and an optional client IP allow list.
func InternalTokenAuth(token string, allowedIPs []string, log *slog.Logger) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedIPs))
	for _, ip := range allowedIPs {
		if ip = strings.TrimSpace(ip); ip != "" {
			allowed[ip] = true
		}
	}

	return func(c *gin.Context) {
		if token == "" {
			logAuthFailure(log, c, http.StatusServiceUnavailable, "token_not_configured")
			response.Abort(c, http.StatusServiceUnavailable, "SYNC_DISABLED", "Internal sync is not configured")
			return
		}
		if len(allowed) > 0 && !allowed[c.ClientIP()] {
			logAuthFailure(log, c, http.StatusForbidden, "ip_not_allowed")
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "IP not allowed")
			return
		}

		h := c.GetHeader("Authorization")
		if h == "" {
			logAuthFailure(log, c, http.StatusUnauthorized, "missing_auth")
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			logAuthFailure(log, c, http.StatusUnauthorized, "invalid_auth_format")
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}
		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(parts[1])), []byte(token)) != 1 {
			logAuthFailure(log, c, http.StatusForbidden, "invalid_token")
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Invalid internal token")
			return
		}

		c.Next()
	}
}

func logAuthFailure(log *slog.Logger, c *gin.Context, status int, reason string) {
	log.Warn("internal_sync_auth",
		"status", status,
		"request_id", requestID(c),
		"client_ip", c.ClientIP(),
		"reason", reason,
	)
}
