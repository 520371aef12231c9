// Package middleware holds the gin middleware chain for the v1 API.
package middleware

import (
	"github.com/gin-gonic/gin"

	"quintastock/internal/core/apperror"
	"quintastock/internal/core/appctx"
	"quintastock/internal/core/security"
)

// RequirePermission gates a route group on a single permission. Supervisors
// pass every permission check.
func RequirePermission(permission string) gin.HandlerFunc {
	return requirePermissions(permission)
}

// RequireAnyPermission passes when the user holds at least one of the given
// permissions.
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return requirePermissions(permissions...)
}

func requirePermissions(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		if user.Role == security.RoleSupervisor {
			c.Next()
			return
		}

		for _, p := range permissions {
			if user.HasPermission(p) {
				c.Next()
				return
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_permissions", permissions),
		)
		c.Abort()
	}
}
