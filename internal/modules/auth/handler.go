package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"marketadmin/internal/config"
	"marketadmin/internal/middleware"
	"marketadmin/internal/modules/accounts"
	"marketadmin/internal/pkg/apperror"
	"marketadmin/internal/pkg/request"
	"marketadmin/internal/pkg/response"
)

// Handler manages the admin session endpoints
type Handler struct {
	service *Service
	cookies config.AuthRuntimeConfig
}

func NewHandler(service *Service, cookies config.AuthRuntimeConfig) *Handler {
	return &Handler{service: service, cookies: cookies}
}

// RegisterPublicRoutes mounts login and refresh. loginGuards run before
// login only.
func (h *Handler) RegisterPublicRoutes(admin *gin.RouterGroup, loginGuards ...gin.HandlerFunc) {
	authGroup := admin.Group("/auth")
	{
		authGroup.POST("/login", append(loginGuards, h.Login)...)
		authGroup.POST("/refresh", h.Refresh)
	}
}

// RegisterProtectedRoutes mounts logout and the current-admin endpoints.
func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	authGroup := protected.Group("/auth")
	{
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", h.GetMe)
		authGroup.PATCH("/me", h.UpdateMe)
	}
}

// Login opens an admin session.
// @Summary		Admin login
// @Description	Accepts a username or email. Non admin-tier accounts get 403 "Administrator access required.".
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		request	body	LoginRequest	true	"Credentials"
// @Success		200	{object}	SessionResponse
// @Failure		401	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Failure		429	{object}	map[string]interface{}
// @Router		/admin/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		response.FromError(c, err)
		return
	}

	csrf, err := generateCSRFToken()
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.setSessionCookies(c, session, csrf)
	response.Success(c, http.StatusOK, h.sessionResponse(session, csrf))
}

// Refresh rotates the refresh token taken from the body or the cookie.
// @Summary		Refresh session
// @Tags		Auth
// @Param		request	body	RefreshRequest	false	"Refresh token when not sent as cookie"
// @Success		200	{object}	SessionResponse
// @Failure		401	{object}	map[string]interface{}
// @Router		/admin/auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	session, err := h.service.Refresh(c.Request.Context(), h.refreshToken(c), c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		h.clearSessionCookies(c)
		response.FromError(c, err)
		return
	}

	csrf, _ := c.Cookie(middleware.CSRFCookie)
	if csrf == "" {
		if csrf, err = generateCSRFToken(); err != nil {
			response.FromError(c, err)
			return
		}
	}
	h.setSessionCookies(c, session, csrf)
	response.Success(c, http.StatusOK, h.sessionResponse(session, csrf))
}

// Logout revokes the refresh token and clears the session cookies.
// @Summary		Logout
// @Tags		Auth
// @Security	BearerAuth
// @Success		205	{object}	map[string]interface{}
// @Router		/admin/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), h.refreshToken(c)); err != nil {
		response.FromError(c, err)
		return
	}

	h.clearSessionCookies(c)
	response.Success(c, http.StatusResetContent, gin.H{"detail": "Logged out."})
}

// GetMe
// @Summary		Current admin
// @Tags		Auth
// @Security	BearerAuth
// @Success		200	{object}	accounts.AccountResponse
// @Router		/admin/auth/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	acc, err := h.service.Me(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, accounts.NewAccountResponse(acc))
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := request.BindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}
	acc, err := h.service.UpdateMe(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, accounts.NewAccountResponse(acc))
}

// refreshToken reads the "refresh" body field, falling back to the cookie.
func (h *Handler) refreshToken(c *gin.Context) string {
	var req RefreshRequest
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&req)
	}
	if v := strings.TrimSpace(req.Refresh); v != "" {
		return v
	}
	v, _ := c.Cookie(middleware.RefreshCookie)
	return strings.TrimSpace(v)
}

func (h *Handler) sessionResponse(s *Session, csrf string) SessionResponse {
	return SessionResponse{
		User:      accounts.NewAccountResponse(s.Account),
		CSRFToken: csrf,
		Tokens: TokenPair{
			AccessToken:  s.AccessToken,
			RefreshToken: s.RefreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int64(h.cookies.JWTAccessTTL.Seconds()),
		},
	}
}

// setSessionCookies writes the access, refresh and CSRF cookies. Only the
// CSRF cookie is visible to scripts.
func (h *Handler) setSessionCookies(c *gin.Context, s *Session, csrf string) {
	c.SetSameSite(parseSameSite(h.cookies.CookieSameSite))
	refreshAge := int(h.cookies.RefreshTTL.Seconds())
	c.SetCookie(middleware.AccessCookie, s.AccessToken, int(h.cookies.JWTAccessTTL.Seconds()), h.cookies.CookiePath, "", h.cookies.CookieSecure, true)
	c.SetCookie(middleware.RefreshCookie, s.RefreshToken, refreshAge, h.cookies.CookiePath, "", h.cookies.CookieSecure, true)
	c.SetCookie(middleware.CSRFCookie, csrf, refreshAge, h.cookies.CookiePath, "", h.cookies.CookieSecure, false)
}

func (h *Handler) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(parseSameSite(h.cookies.CookieSameSite))
	c.SetCookie(middleware.AccessCookie, "", -1, h.cookies.CookiePath, "", h.cookies.CookieSecure, true)
	c.SetCookie(middleware.RefreshCookie, "", -1, h.cookies.CookiePath, "", h.cookies.CookieSecure, true)
	c.SetCookie(middleware.CSRFCookie, "", -1, h.cookies.CookiePath, "", h.cookies.CookieSecure, false)
}

func generateCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", apperror.Internal(err)
	}
	return hex.EncodeToString(buf), nil
}

func parseSameSite(mode string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
