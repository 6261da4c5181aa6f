package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/synergia/erp-api/internal/api/middleware"
	"github.com/synergia/erp-api/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware and
// fails fast before any service call when it is missing, which means the
// route was registered without the middleware.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	return p, nil
}
