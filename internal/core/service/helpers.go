package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/synergia/erp-api/internal/core/domain"
)

var validate = validator.New()

// newID returns a time-ordered UUID so ids sort like createdAt.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func checkEmail(field, s string) error {
	if s == "" {
		return domain.Validationf("%s is required", field)
	}
	if err := validate.Var(s, "email"); err != nil {
		return domain.Validationf("%s must be a valid email", field)
	}
	return nil
}

func checkRequired(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return domain.Validationf("%s is required", field)
	}
	return nil
}

// requiredPatch rejects a patch field that is present but null or blank.
func requiredPatch(field string, o domain.Optional[string]) error {
	if !o.Set {
		return nil
	}
	if o.Null {
		return domain.Validationf("%s cannot be cleared", field)
	}
	return checkRequired(field, o.Value)
}

// clearBlank turns a present empty string into an explicit null.
func clearBlank(o domain.Optional[string]) domain.Optional[string] {
	if o.Set && !o.Null {
		o.Value = strings.TrimSpace(o.Value)
		if o.Value == "" {
			return domain.Null[string]()
		}
	}
	return o
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func temporaryPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("temporary password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
