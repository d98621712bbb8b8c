package trophy

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

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

// RegisterRoutes mounts the read routes on public (caller optional) and the
// owner-only routes on protected (caller required).
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/trophies", h.ListPublic)
	public.GET("/trophies/nearby", h.Nearby)
	public.GET("/trophies/:id", h.Get)
	public.GET("/users/:id/trophies", h.ListByUser)

	protected.POST("/trophies", h.Create)
	protected.PUT("/trophies/:id", h.Update)
	protected.DELETE("/trophies/:id", h.Delete)
	protected.GET("/me/trophies", h.ListOwn)
}

func (h *Handler) ListPublic(c *gin.Context) {
	limit, err := intQuery(c, "limit")
	if err != nil {
		response.FromError(c, err)
		return
	}
	offset, err := intQuery(c, "offset")
	if err != nil {
		response.FromError(c, err)
		return
	}

	page, err := h.service.ListPublic(c.Request.Context(), limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}

func (h *Handler) Nearby(c *gin.Context) {
	var (
		q   NearbyQuery
		err error
	)
	if q.Lat, err = floatQuery(c, "lat"); err != nil {
		response.FromError(c, err)
		return
	}
	if q.Lon, err = floatQuery(c, "lon"); err != nil {
		response.FromError(c, err)
		return
	}
	if q.RadiusKm, err = floatQuery(c, "radius_km"); err != nil {
		response.FromError(c, err)
		return
	}
	if q.Limit, err = intQuery(c, "limit"); err != nil {
		response.FromError(c, err)
		return
	}

	items, err := h.service.SearchNearby(c.Request.Context(), middleware.CallerFrom(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, NearbyResponse{Items: items, Count: len(items)})
}

func (h *Handler) Get(c *gin.Context) {
	t, err := h.service.Get(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		// a private trophy is indistinguishable from a missing one
		if errors.Is(err, domain.ErrForbidden) {
			err = domain.ErrNotFound
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) Create(c *gin.Context) {
	var in domain.CreateTrophyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadBody(c, err)
		return
	}

	t, err := h.service.Create(c.Request.Context(), middleware.CallerFrom(c), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t)
}

func (h *Handler) Update(c *gin.Context) {
	var patch domain.TrophyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadBody(c, err)
		return
	}

	t, err := h.service.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), patch)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListOwn(c *gin.Context) {
	items, err := h.service.ListOwn(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ListResponse{Items: items, Count: len(items)})
}

func (h *Handler) ListByUser(c *gin.Context) {
	limit, err := intQuery(c, "limit")
	if err != nil {
		response.FromError(c, err)
		return
	}

	items, err := h.service.ListByUser(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ListResponse{Items: items, Count: len(items)})
}

func floatQuery(c *gin.Context, name string) (float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, &domain.QueryError{Param: name, Reason: "is required"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &domain.QueryError{Param: name, Reason: "must be a number"}
	}
	return v, nil
}

// intQuery returns 0 for an absent parameter.
func intQuery(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.QueryError{Param: name, Reason: "must be an integer"}
	}
	return v, nil
}
