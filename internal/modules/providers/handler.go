package providers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"marketadmin/internal/domain"
	"marketadmin/internal/middleware"
	"marketadmin/internal/pkg/request"
	"marketadmin/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	providers := admin.Group("/providers")
	providers.GET("", h.List)
	providers.POST("", h.Create)
	providers.GET("/:id", h.Get)
	providers.PATCH("/:id", h.Update)
	providers.DELETE("/:id", h.Delete)

	// moderation
	providers.POST("/:id/approve", h.transition(domain.ProviderApproved))
	providers.POST("/:id/disable", h.transition(domain.ProviderDisabled))
	providers.POST("/:id/reject", h.transition(domain.ProviderRejected))
	providers.POST("/:id/set-status", h.SetStatus)
}

// List returns provider profiles.
// @Summary		List providers
// @Description	Search covers display name, contact email and the owner's username.
// @Tags		Admin - Providers
// @Security	BearerAuth
// @Param		status	query	string	false	"pending, approved, disabled or rejected"
// @Param		search	query	string	false	"Search term"
// @Success		200	{object}	map[string]interface{}
// @Router		/admin/providers [GET]
func (h *Handler) List(c *gin.Context) {
	page, limit := request.Page(c)
	q := ListQuery{
		Search: strings.TrimSpace(c.Query("search")),
		Status: domain.ProviderStatus(strings.TrimSpace(c.Query("status"))),
		Page:   page,
		Limit:  limit,
	}
	list, total, err := h.service.List(c.Request.Context(), middleware.ActorFrom(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Paginated(c, newProviderResponses(list), total, page, limit)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	p, err := h.service.Get(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewProviderResponse(p))
}

// Create
// @Summary		Create provider profile
// @Description	Admins only. The owning account becomes a provider unless it holds an admin-tier role.
// @Tags		Admin - Providers
// @Security	BearerAuth
// @Param		request	body	CreateRequest	true	"Provider"
// @Success		201	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Router		/admin/providers [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	p, err := h.service.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, NewProviderResponse(p))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req UpdateRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	p, err := h.service.Update(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewProviderResponse(p))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// transition serves approve, disable and reject. The body is optional.
// @Summary		Moderate provider
// @Tags		Admin - Providers
// @Security	BearerAuth
// @Param		id		path	int					true	"Provider ID"
// @Param		request	body	TransitionRequest	false	"Review notes"
// @Success		200	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/admin/providers/{id}/approve [POST]
// @Router		/admin/providers/{id}/disable [POST]
// @Router		/admin/providers/{id}/reject [POST]
func (h *Handler) transition(status domain.ProviderStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := request.IDParam(c, "id")
		if err != nil {
			response.FromError(c, err)
			return
		}
		var req TransitionRequest
		if c.Request.ContentLength != 0 {
			if err := request.BindJSON(c, &req); err != nil {
				response.FromError(c, err)
				return
			}
		}
		p, err := h.service.Transition(c.Request.Context(), middleware.ActorFrom(c), id, status, req.Notes)
		if err != nil {
			response.FromError(c, err)
			return
		}
		response.Success(c, http.StatusOK, NewProviderResponse(p))
	}
}

// SetStatus moves a provider to any status. Admins and super admins only.
// @Router		/admin/providers/{id}/set-status [POST]
func (h *Handler) SetStatus(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req SetStatusRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	p, err := h.service.Transition(c.Request.Context(), middleware.ActorFrom(c), id, req.Status, req.Notes)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewProviderResponse(p))
}
