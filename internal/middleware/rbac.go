package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xdott/contact-dashboard-api/internal/entity"
)

// RequireRole gates a route to sessions carrying one of the given roles.
// Admin sessions pass every gate; member-level routes never lock admins out
// of their own contact list.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			value, ok := c.Get(ContextKeyUserRole).(string)
			if !ok || value == "" {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "missing role"})
			}
			if value == entity.RoleAdmin {
				return next(c)
			}
			for _, role := range roles {
				if value == role {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
		}
	}
}
