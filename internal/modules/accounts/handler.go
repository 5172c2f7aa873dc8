package accounts

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
	users := admin.Group("/users")
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.GET("/:id", h.GetUser)
	users.PATCH("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)

	admins := admin.Group("/admins")
	admins.GET("", h.ListAdmins)
	admins.POST("", h.CreateAdmin)
	admins.GET("/:id", h.GetAdmin)
	admins.PATCH("/:id", h.UpdateAdmin)
	admins.DELETE("/:id", h.DeleteAdmin)
}

func listQuery(c *gin.Context) ListQuery {
	page, limit := request.Page(c)
	return ListQuery{
		Search:   strings.TrimSpace(c.Query("search")),
		Role:     domain.Role(strings.TrimSpace(c.Query("role"))),
		IsActive: request.BoolQuery(c, "is_active"),
		Page:     page,
		Limit:    limit,
	}
}

// ListUsers returns the account directory.
// @Summary		List accounts
// @Description	Paginated list ordered by join date, newest first. Supports search over username, email and names, and role / is_active filters.
// @Tags		Admin - Accounts
// @Security	BearerAuth
// @Param		page		query	int		false	"Page number"	default(1)
// @Param		limit		query	int		false	"Page size"	default(20)
// @Param		search		query	string	false	"Search term"
// @Param		role		query	string	false	"Role filter"
// @Param		is_active	query	bool	false	"Active filter"
// @Success		200	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Router		/admin/users [GET]
func (h *Handler) ListUsers(c *gin.Context) {
	q := listQuery(c)
	list, total, err := h.service.List(c.Request.Context(), middleware.ActorFrom(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Paginated(c, newAccountResponses(list), total, q.Page, q.Limit)
}

// GetUser
// @Summary		Get account
// @Tags		Admin - Accounts
// @Security	BearerAuth
// @Param		id	path	int	true	"Account ID"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/admin/users/{id} [GET]
func (h *Handler) GetUser(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	acc, err := h.service.Get(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewAccountResponse(acc))
}

// CreateUser creates an account with its profile. Moderators are refused and
// only super admins may assign an admin-tier role.
// @Summary		Create account
// @Tags		Admin - Accounts
// @Security	BearerAuth
// @Param		request	body	CreateRequest	true	"Account"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}
// @Router		/admin/users [POST]
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	acc, err := h.service.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, NewAccountResponse(acc))
}

// UpdateUser applies a partial update. A role in the body goes through the role-change guard.
// @Summary		Update account
// @Tags		Admin - Accounts
// @Security	BearerAuth
// @Param		id		path	int				true	"Account ID"
// @Param		request	body	UpdateRequest	true	"Fields to change"
// @Success		200	{object}	map[string]interface{}
// @Router		/admin/users/{id} [PATCH]
func (h *Handler) UpdateUser(c *gin.Context) {
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
	acc, err := h.service.Update(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewAccountResponse(acc))
}

// DeleteUser
// @Summary		Delete account
// @Tags		Admin - Accounts
// @Security	BearerAuth
// @Param		id	path	int	true	"Account ID"
// @Success		204
// @Router		/admin/users/{id} [DELETE]
func (h *Handler) DeleteUser(c *gin.Context) {
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

// ListAdmins returns admin-tier accounts. Super admins only.
// @Summary		List admin accounts
// @Tags		Admin - Admins
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Router		/admin/admins [GET]
func (h *Handler) ListAdmins(c *gin.Context) {
	q := listQuery(c)
	list, total, err := h.service.ListAdmins(c.Request.Context(), middleware.ActorFrom(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Paginated(c, newAccountResponses(list), total, q.Page, q.Limit)
}

func (h *Handler) GetAdmin(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	acc, err := h.service.GetAdmin(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewAccountResponse(acc))
}

// CreateAdmin
// @Summary		Create admin account
// @Description	Role must be moderator, admin or super_admin and the password at least 12 characters.
// @Tags		Admin - Admins
// @Security	BearerAuth
// @Param		request	body	CreateRequest	true	"Admin account"
// @Success		201	{object}	map[string]interface{}
// @Router		/admin/admins [POST]
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req CreateRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	acc, err := h.service.CreateAdmin(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, NewAccountResponse(acc))
}

func (h *Handler) UpdateAdmin(c *gin.Context) {
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
	acc, err := h.service.UpdateAdmin(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, NewAccountResponse(acc))
}

func (h *Handler) DeleteAdmin(c *gin.Context) {
	id, err := request.IDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.service.DeleteAdmin(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
