package catalog

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
	services := admin.Group("/services")
	services.GET("", h.ListServices)
	services.POST("", h.CreateService)
	services.GET("/:id", h.GetService)
	services.PATCH("/:id", h.UpdateService)
	services.DELETE("/:id", h.DeleteService)

	// moderation
	services.POST("/:id/approve", h.transition(domain.ServiceApproved))
	services.POST("/:id/disable", h.transition(domain.ServiceDisabled))
	services.POST("/:id/reject", h.transition(domain.ServiceRejected))
	services.POST("/:id/set-status", h.SetServiceStatus)

	categories := admin.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.POST("", h.CreateCategory)
	categories.GET("/:id", h.GetCategory)
	categories.PATCH("/:id", h.UpdateCategory)
	categories.DELETE("/:id", h.DeleteCategory)

	admin.GET("/stats", h.GetStats)
}

/* ---------- SERVICE HANDLERS ---------- */

// ListServices handles GET /admin/services with filters
// @Summary		List services
// @Tags		Admin - Services
// @Security	BearerAuth
// @Param		status		query	string	false	"draft, pending, approved, disabled or rejected"
// @Param		category_id	query	int		false	"Category filter"
// @Param		provider_id	query	int		false	"Provider filter"
// @Param		search		query	string	false	"Search over name, summary and description"
// @Success		200	{object}	map[string]interface{}
// @Router		/admin/services [GET]
func (h *Handler) ListServices(c *gin.Context) {
	page, limit := request.Page(c)
	q := ServiceQuery{
		Search:     strings.TrimSpace(c.Query("search")),
		Status:     domain.ServiceStatus(strings.TrimSpace(c.Query("status"))),
		CategoryID: request.Int64Query(c, "category_id"),
		ProviderID: request.Int64Query(c, "provider_id"),
		Page:       page,
		Limit:      limit,
	}
	list, total, err := h.service.ListServices(c.Request.Context(), middleware.ActorFrom(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Paginated(c, newServiceResponses(list), total, page, limit)
}

func (h *Handler) GetService(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	svc, err := h.service.GetService(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewServiceResponse(svc))
}

// CreateService handles POST /admin/services. The slug is derived from the
// name when omitted.
// @Summary		Create service
// @Tags		Admin - Services
// @Security	BearerAuth
// @Param		request	body	CreateServiceRequest	true	"Service"
// @Success		201	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}	"Slug already used"
// @Router		/admin/services [POST]
func (h *Handler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	svc, err := h.service.CreateService(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, NewServiceResponse(svc))
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req UpdateServiceRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	svc, err := h.service.UpdateService(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewServiceResponse(svc))
}

func (h *Handler) DeleteService(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.service.DeleteService(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// transition serves approve, disable and reject.
// @Summary		Moderate service
// @Tags		Admin - Services
// @Security	BearerAuth
// @Param		id		path	int					true	"Service ID"
// @Param		request	body	TransitionRequest	false	"Approval notes"
// @Success		200	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Router		/admin/services/{id}/approve [POST]
// @Router		/admin/services/{id}/disable [POST]
// @Router		/admin/services/{id}/reject [POST]
func (h *Handler) transition(status domain.ServiceStatus) gin.HandlerFunc {
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
		svc, err := h.service.TransitionService(c.Request.Context(), middleware.ActorFrom(c), id, status, req.ApprovalNotes)
		if err != nil {
			response.FromError(c, err)
			return
		}
		response.Success(c, http.StatusOK, NewServiceResponse(svc))
	}
}

func (h *Handler) SetServiceStatus(c *gin.Context) {
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
	svc, err := h.service.TransitionService(c.Request.Context(), middleware.ActorFrom(c), id, req.Status, req.ApprovalNotes)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewServiceResponse(svc))
}

/* ---------- CATEGORY HANDLERS ---------- */

func (h *Handler) ListCategories(c *gin.Context) {
	page, limit := request.Page(c)
	list, total, err := h.service.ListCategories(c.Request.Context(), middleware.ActorFrom(c), strings.TrimSpace(c.Query("search")), page, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Paginated(c, list, total, page, limit)
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	cat, err := h.service.GetCategory(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cat)
}

// CreateCategory
// @Summary		Create category
// @Description	Admins and super admins only.
// @Tags		Admin - Categories
// @Security	BearerAuth
// @Param		request	body	CreateCategoryRequest	true	"Category"
// @Success		201	{object}	map[string]interface{}
// @Router		/admin/categories [POST]
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	cat, err := h.service.CreateCategory(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, cat)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req UpdateCategoryRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	cat, err := h.service.UpdateCategory(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cat)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.service.DeleteCategory(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* ---------- STATS ---------- */

// GetStats returns moderation queue sizes for the dashboard.
// @Summary		Dashboard statistics
// @Tags		Admin - Stats
// @Security	BearerAuth
// @Success		200	{object}	Stats
// @Router		/admin/stats [GET]
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
