package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trophyangler/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the profile read on public and the identity-provider
// sync routes on internal.
func (h *Handler) RegisterRoutes(public, internal *gin.RouterGroup) {
	public.GET("/users/:id", h.GetProfile)

	users := internal.Group("/users")
	{
		users.PUT("/:id", h.Sync)
		users.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.service.GetPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) Sync(c *gin.Context) {
	var req SyncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadBody(c, err)
		return
	}

	u, result, err := h.service.Sync(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	status := http.StatusOK
	if result == ResultCreated {
		status = http.StatusCreated
	}
	response.Success(c, status, SyncUserResponse{User: u, Status: result})
}

func (h *Handler) Delete(c *gin.Context) {
	if _, err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
