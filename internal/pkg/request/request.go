// Package request holds the binding helpers shared by the admin handlers.
package request

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"marketadmin/internal/pkg/apperror"
	"marketadmin/internal/pkg/validator"
)

// BindJSON decodes the body into dst and runs struct validation.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperror.Validation("Invalid request body", map[string]any{"body": err.Error()})
	}
	if errs := validator.Validate(dst); len(errs) > 0 {
		details := make(map[string]any, len(errs))
		for k, v := range errs {
			details[k] = v
		}
		return apperror.Validation("Validation failed", details)
	}
	return nil
}

// IDParam parses a positive int64 path parameter.
func IDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("Invalid id", map[string]any{name: c.Param(name)})
	}
	return id, nil
}

// Page reads the page and limit query parameters, defaulting to 1 and 20.
func Page(c *gin.Context) (page, limit int) {
	return IntQuery(c, "page", 1), IntQuery(c, "limit", 20)
}

func IntQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// BoolQuery returns nil when the parameter is absent or unparsable.
func BoolQuery(c *gin.Context, name string) *bool {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// Int64Query returns nil when the parameter is absent or unparsable.
func Int64Query(c *gin.Context, name string) *int64 {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
