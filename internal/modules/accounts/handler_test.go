package accounts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"marketadmin/internal/domain"
	"marketadmin/internal/middleware"
	"marketadmin/internal/policy"
	"marketadmin/internal/repository"
	"marketadmin/internal/testutil"
)

func setupRouter(t *testing.T, as *domain.Account, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := NewService(repository.NewAccountRepository(db), policy.NewEnforcer(nil, nil), nil)
	svc.bcryptCost = bcrypt.MinCost

	r := gin.New()
	g := r.Group("/api/v1/admin", func(c *gin.Context) {
		middleware.SetActor(c, policy.NewActor(as))
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(g)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHandler_CreateAndFetchUser(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.CreateAccount(t, db, "admin", domain.RoleAdmin)
	r := setupRouter(t, admin, db)

	w := do(r, http.MethodPost, "/api/v1/admin/users", `{
		"username": "dora",
		"email": "Dora@Example.com",
		"password": "longenough1",
		"is_active": false,
		"job_title": "Buyer"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created AccountResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, "dora@example.com", created.Email)
	assert.Equal(t, domain.RoleUser, created.Role)
	assert.False(t, created.IsActive)
	assert.False(t, created.IsStaff)

	w = do(r, http.MethodGet, "/api/v1/admin/users?is_active=false", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"dora"`)
	assert.NotContains(t, w.Body.String(), `"username":"admin"`)

	w = do(r, http.MethodPost, "/api/v1/admin/users", `{"username":"dora","email":"other@example.com","password":"longenough1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_ValidationErrors(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.CreateAccount(t, db, "admin", domain.RoleAdmin)
	r := setupRouter(t, admin, db)

	w := do(r, http.MethodPost, "/api/v1/admin/users", `{"username":"ed","email":"bad","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "Email")
	assert.Contains(t, env.Error.Details, "Password")

	w = do(r, http.MethodGet, "/api/v1/admin/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_RoleChangeUpdatesFlags(t *testing.T) {
	db := testutil.NewDB(t)
	super := testutil.CreateAccount(t, db, "root", domain.RoleSuperAdmin)
	target := testutil.CreateAccount(t, db, "frank", domain.RoleUser)
	r := setupRouter(t, super, db)

	w := do(r, http.MethodPatch, "/api/v1/admin/users/"+itoa(target.ID), `{"role":"admin"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got AccountResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, domain.RoleAdmin, got.Role)
	assert.True(t, got.IsStaff)
	assert.False(t, got.IsSuperuser)

	w = do(r, http.MethodPatch, "/api/v1/admin/users/"+itoa(super.ID), `{"role":"admin"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_ModeratorIsReadOnly(t *testing.T) {
	db := testutil.NewDB(t)
	mod := testutil.CreateAccount(t, db, "mod", domain.RoleModerator)
	target := testutil.CreateAccount(t, db, "gina", domain.RoleUser)
	r := setupRouter(t, mod, db)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/admin/users/"+itoa(target.ID), "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPatch, "/api/v1/admin/users/"+itoa(target.ID), `{"first_name":"G"}`).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/api/v1/admin/users/"+itoa(target.ID), "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/v1/admin/admins", "").Code)
	// no existence leak for a caller who could never delete
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/api/v1/admin/users/99999", "").Code)
}

func TestHandler_AdminDirectory(t *testing.T) {
	db := testutil.NewDB(t)
	super := testutil.CreateAccount(t, db, "root", domain.RoleSuperAdmin)
	testutil.CreateAccount(t, db, "mod", domain.RoleModerator)
	plain := testutil.CreateAccount(t, db, "plain", domain.RoleUser)
	r := setupRouter(t, super, db)

	w := do(r, http.MethodGet, "/api/v1/admin/admins", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []AccountResponse `json:"items"`
		Total int64             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	assert.Equal(t, int64(2), page.Total)
	for _, item := range page.Items {
		assert.True(t, item.Role.IsAdminTier())
	}

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/admin/admins/"+itoa(plain.ID), "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/api/v1/admin/admins/"+itoa(super.ID), "").Code)

	w = do(r, http.MethodPost, "/api/v1/admin/admins", `{"username":"newmod","email":"newmod@example.com","password":"twelve-chars!","role":"moderator"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestHandler_DeleteUser(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.CreateAccount(t, db, "admin", domain.RoleAdmin)
	target := testutil.CreateAccount(t, db, "hal", domain.RoleUser)
	r := setupRouter(t, admin, db)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/v1/admin/users/"+itoa(target.ID), "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/admin/users/"+itoa(target.ID), "").Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
