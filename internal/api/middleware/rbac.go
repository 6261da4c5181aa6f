package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/synergia/erp-api/internal/core/domain"
)

// RequireRole lets the request through only when the principal set by Auth
// holds one of roles. It does no token handling of its own, so it composes
// with Auth per route group.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrNotAuthenticated
			}
			if !principal.HasRole(roles...) {
				return domain.ErrInsufficientRole
			}
			return next(c)
		}
	}
}
