package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/synergia/erp-api/internal/core/domain"
)

// Envelope wraps every response body, successful or not.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func respond(c echo.Context, code int, data any) error {
	return c.JSON(code, Envelope{Success: true, Data: data})
}

func respondMessage(c echo.Context, code int, data any, msg string) error {
	return c.JSON(code, Envelope{Success: true, Data: data, Message: msg})
}

// bindAndValidate decodes the body into req and runs its validate tags. Both
// failures surface as ValidationError.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Validationf("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return domain.NewError(domain.ErrValidation, "%s", err.Error())
	}
	return nil
}
