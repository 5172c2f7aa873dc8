package middleware

import (
	"github.com/gin-gonic/gin"

	"marketadmin/internal/pkg/apperror"
	"marketadmin/internal/pkg/response"
)

// RequireAdminTier rejects actors outside {moderator, admin, super_admin}.
// Finer rules are enforced per operation by the policy package.
func RequireAdminTier() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if !actor.Authenticated() {
			response.Abort(c, apperror.Unauthenticated("Authentication required"))
			return
		}
		if !actor.Role.IsAdminTier() {
			response.Abort(c, apperror.Forbidden("Administrator access required."))
			return
		}
		c.Next()
	}
}
