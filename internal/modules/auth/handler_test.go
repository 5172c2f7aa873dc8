package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketadmin/internal/config"
	"marketadmin/internal/domain"
	"marketadmin/internal/middleware"
	"marketadmin/internal/repository"
	"marketadmin/internal/testutil"
)

func setupRouter(t *testing.T, f *fixture) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandler(f.svc, config.AuthRuntimeConfig{
		JWTAccessTTL:   15 * time.Minute,
		RefreshTTL:     time.Hour,
		CookiePath:     "/api/v1/admin",
		CookieSameSite: "strict",
	})
	r := gin.New()
	admin := r.Group("/api/v1/admin")
	h.RegisterPublicRoutes(admin)
	protected := admin.Group("", middleware.JWTAuth(f.tokens, repository.NewAccountRepository(f.db)))
	h.RegisterProtectedRoutes(protected)
	return r
}

func send(r *gin.Engine, method, path, body string, header http.Header, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func post(r *gin.Engine, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return send(r, http.MethodPost, path, body, nil, cookies...)
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type sessionEnvelope struct {
	Success bool            `json:"success"`
	Data    SessionResponse `json:"data"`
}

func loginAlice(t *testing.T, r *gin.Engine) (*httptest.ResponseRecorder, sessionEnvelope) {
	t.Helper()
	w := post(r, "/api/v1/admin/auth/login", `{"username":"alice","password":"`+testutil.Password+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env sessionEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestHandler_LoginSetsCookies(t *testing.T) {
	f := newFixture(t)
	testutil.CreateAccount(t, f.db, "alice", domain.RoleAdmin)
	r := setupRouter(t, f)

	w, env := loginAlice(t, r)
	assert.True(t, env.Success)
	assert.Equal(t, "alice", env.Data.User.Username)
	assert.Equal(t, "Bearer", env.Data.Tokens.TokenType)
	assert.Equal(t, int64(900), env.Data.Tokens.ExpiresIn)
	assert.Len(t, env.Data.CSRFToken, 64)

	refresh := cookieByName(w, middleware.RefreshCookie)
	require.NotNil(t, refresh)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, refresh.SameSite)
	assert.Equal(t, "/api/v1/admin", refresh.Path)
	assert.Equal(t, env.Data.Tokens.RefreshToken, refresh.Value)

	access := cookieByName(w, middleware.AccessCookie)
	require.NotNil(t, access)
	assert.Equal(t, "/api/v1/admin", access.Path)

	csrf := cookieByName(w, middleware.CSRFCookie)
	require.NotNil(t, csrf)
	assert.False(t, csrf.HttpOnly)
	assert.Equal(t, env.Data.CSRFToken, csrf.Value)
}

func TestHandler_LoginForbiddenForProvider(t *testing.T) {
	f := newFixture(t)
	testutil.CreateAccount(t, f.db, "pat", domain.RoleProvider)
	r := setupRouter(t, f)

	w := post(r, "/api/v1/admin/auth/login", `{"username":"pat","password":"`+testutil.Password+`"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Administrator access required.")

	w = post(r, "/api/v1/admin/auth/login", `{"username":"pat"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CookieSession(t *testing.T) {
	f := newFixture(t)
	testutil.CreateAccount(t, f.db, "alice", domain.RoleAdmin)
	r := setupRouter(t, f)

	w, env := loginAlice(t, r)
	access := cookieByName(w, middleware.AccessCookie)
	csrf := cookieByName(w, middleware.CSRFCookie)

	w = send(r, http.MethodGet, "/api/v1/admin/auth/me", "", nil, access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"username":"alice"`)

	w = send(r, http.MethodPatch, "/api/v1/admin/auth/me", `{"job_title":"Ops"}`, nil, access, csrf)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "CSRF token missing.")

	header := http.Header{middleware.CSRFHeader: []string{env.Data.CSRFToken}}
	w = send(r, http.MethodPatch, "/api/v1/admin/auth/me", `{"job_title":"Ops"}`, header, access, csrf)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"job_title":"Ops"`)
}

func TestHandler_RefreshFromCookieThenLogout(t *testing.T) {
	f := newFixture(t)
	testutil.CreateAccount(t, f.db, "alice", domain.RoleAdmin)
	r := setupRouter(t, f)

	w, env := loginAlice(t, r)
	first := cookieByName(w, middleware.RefreshCookie)
	csrf := cookieByName(w, middleware.CSRFCookie)

	w = post(r, "/api/v1/admin/auth/refresh", "", first, csrf)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := cookieByName(w, middleware.RefreshCookie)
	require.NotNil(t, second)
	assert.NotEqual(t, first.Value, second.Value)
	var refreshed sessionEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.Equal(t, env.Data.CSRFToken, refreshed.Data.CSRFToken)

	w = post(r, "/api/v1/admin/auth/logout", `{"refresh":"`+second.Value+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	header := http.Header{"Authorization": []string{"Bearer " + refreshed.Data.Tokens.AccessToken}}
	w = send(r, http.MethodPost, "/api/v1/admin/auth/logout", `{"refresh":"`+second.Value+`"}`, header)
	assert.Equal(t, http.StatusResetContent, w.Code)
	assert.Contains(t, w.Body.String(), "Logged out.")
	cleared := cookieByName(w, middleware.RefreshCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.NotNil(t, cookieByName(w, middleware.CSRFCookie))

	w = post(r, "/api/v1/admin/auth/refresh", `{"refresh":"`+second.Value+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
