package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trophyangler/internal/domain"
)

// FromError writes the envelope matching a domain error. Unknown errors are
// attached to the gin context for the request logger and reported as 500.
func FromError(c *gin.Context, err error) {
	var (
		verr *domain.ValidationError
		qerr *domain.QueryError
	)

	switch {
	case errors.As(err, &verr):
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", verr.Fields)
	case errors.As(err, &qerr):
		ErrorWithDetails(c, http.StatusBadRequest, "INVALID_QUERY", "Invalid query parameters",
			gin.H{"param": qerr.Param, "reason": qerr.Reason})
	case errors.Is(err, domain.ErrValidation):
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input")
	case errors.Is(err, domain.ErrInvalidQuery):
		Error(c, http.StatusBadRequest, "INVALID_QUERY", "Invalid query parameters")
	case errors.Is(err, domain.ErrNotFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, domain.ErrForbidden):
		Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this resource")
	case errors.Is(err, domain.ErrUnauthorized):
		Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, domain.ErrConflict):
		Error(c, http.StatusConflict, "CONFLICT", "Resource already exists")
	case errors.Is(err, domain.ErrTimeout):
		_ = c.Error(err)
		Error(c, http.StatusGatewayTimeout, "TIMEOUT", "Request timed out")
	case errors.Is(err, domain.ErrStoreUnavailable):
		_ = c.Error(err)
		Error(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Storage is unavailable, retry later")
	default:
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// BadBody reports a request body that could not be decoded.
func BadBody(c *gin.Context, err error) {
	ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", gin.H{"body": err.Error()})
}
