package request

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketadmin/internal/pkg/apperror"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"omitempty,phone"`
}

func newContext(method, target, body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBindJSON(t *testing.T) {
	var ok sample
	require.NoError(t, BindJSON(newContext(http.MethodPost, "/", `{"name":"a","phone":"+1 555 0100"}`), &ok))
	assert.Equal(t, "a", ok.Name)

	var bad sample
	err := BindJSON(newContext(http.MethodPost, "/", `{"phone":"call me"}`), &bad)
	require.True(t, errors.Is(err, apperror.ErrValidation))
	details := apperror.As(err).Details
	assert.Equal(t, "required", details["Name"])
	assert.Equal(t, "phone", details["Phone"])

	err = BindJSON(newContext(http.MethodPost, "/", `{`), &bad)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestQueryHelpers(t *testing.T) {
	c := newContext(http.MethodGet, "/?page=3&limit=x&is_active=false&category_id=7", "")

	assert.Equal(t, 3, IntQuery(c, "page", 1))
	assert.Equal(t, 20, IntQuery(c, "limit", 20))
	require.NotNil(t, BoolQuery(c, "is_active"))
	assert.False(t, *BoolQuery(c, "is_active"))
	assert.Nil(t, BoolQuery(c, "missing"))
	require.NotNil(t, Int64Query(c, "category_id"))
	assert.Equal(t, int64(7), *Int64Query(c, "category_id"))
}

func TestIDParam(t *testing.T) {
	c := newContext(http.MethodGet, "/", "")
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	id, err := IDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	c.Params = gin.Params{{Key: "id", Value: "-1"}}
	_, err = IDParam(c, "id")
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}
