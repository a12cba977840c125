package middleware

import (
	"github.com/gin-gonic/gin"

	"colisflow/internal/core/apperror"
	appctx "colisflow/internal/core/context"
)

// RequirePermission rejects callers missing permission. Admins pass.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if appctx.GetUser(ctx) == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		if !appctx.HasPermission(ctx, permission) {
			_ = c.Error(
				apperror.NewForbidden("insufficient permissions").
					WithDetail("required_permission", permission),
			)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAnyPermission passes when the caller holds at least one of permissions.
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if appctx.GetUser(ctx) == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		for _, p := range permissions {
			if appctx.HasPermission(ctx, p) {
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
