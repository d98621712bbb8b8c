package share

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trophyangler/internal/domain"
	"trophyangler/internal/middleware"
	"trophyangler/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/trophies/:id/share", h.Get)
}

// Get serves the share bundle as JSON, or the head fragment with ?format=html.
func (h *Handler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	caller := middleware.CallerFrom(c)
	id := c.Param("id")

	switch c.DefaultQuery("format", "json") {
	case "json":
		raw, err := h.service.Metadata(ctx, caller, id)
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, raw)
	case "html":
		head, err := h.service.HTMLHead(ctx, caller, id)
		if err != nil {
			fail(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", head)
	default:
		response.FromError(c, &domain.QueryError{Param: "format", Reason: "must be json or html"})
	}
}

func fail(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrForbidden) {
		err = domain.ErrNotFound
	}
	response.FromError(c, err)
}
