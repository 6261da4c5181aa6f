package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/synergia/erp-api/internal/api/metrics"
	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

// Keys under which Auth stores its results on the echo.Context.
const (
	PrincipalKey = "principal"
	TokenKey     = "token"
)

// Auth resolves the bearer token into a principal and attaches it to both the
// echo.Context and the request context. Any failure short-circuits the chain.
func Auth(auth ports.AuthService, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				m.AuthDecision("missing_token")
				return domain.ErrMissingToken
			}

			principal, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				m.AuthDecision(outcome(err))
				return err
			}
			m.AuthDecision("allowed")

			c.Set(PrincipalKey, principal)
			c.Set(TokenKey, token)
			c.SetRequest(c.Request().WithContext(domain.WithPrincipal(c.Request().Context(), principal)))

			return next(c)
		}
	}
}

// bearerToken extracts the token of a "Bearer <token>" header value.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "error"
	}
}

// PrincipalFrom returns the principal set by Auth.
func PrincipalFrom(c echo.Context) (*domain.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(*domain.Principal)
	return p, ok && p != nil
}

// TokenFrom returns the bearer token accepted by Auth.
func TokenFrom(c echo.Context) string {
	token, _ := c.Get(TokenKey).(string)
	return token
}
