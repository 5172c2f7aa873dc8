package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketadmin/internal/pkg/apperror"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError renders err using its apperror category. Internal errors are
// attached to the gin context for the error logger and never echoed to clients.
func FromError(c *gin.Context, err error) {
	e := apperror.As(err)
	if e.Kind == apperror.KindInternal {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, e.Code(), "Internal server error")
		return
	}
	if len(e.Details) > 0 {
		ErrorWithDetails(c, e.HTTPStatus(), e.Code(), e.Message, e.Details)
		return
	}
	Error(c, e.HTTPStatus(), e.Code(), e.Message)
}

// Abort renders err and stops the handler chain.
func Abort(c *gin.Context, err error) {
	FromError(c, err)
	c.Abort()
}

// Page is the data payload of list endpoints.
type Page struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func Paginated(c *gin.Context, items any, total int64, page, limit int) {
	Success(c, http.StatusOK, Page{Items: items, Total: total, Page: page, Limit: limit})
}
