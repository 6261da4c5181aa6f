package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/synergia/erp-api/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	providerDown := fmt.Errorf("invite: %w", errors.Join(domain.ErrExternalProvider, errors.New("dial tcp 10.0.0.7:443: i/o timeout")))

	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"missing token", domain.ErrMissingToken, http.StatusUnauthorized, "UNAUTHENTICATED", "no token provided"},
		{"inactive", domain.ErrAccountInactive, http.StatusForbidden, "FORBIDDEN", "account inactive"},
		{"validation", domain.Validationf("name is required"), http.StatusBadRequest, "VALIDATION_ERROR", "name is required"},
		{"wrapped not found", fmt.Errorf("get: %w", domain.ErrClientNotFound), http.StatusNotFound, "NOT_FOUND", "client not found"},
		{"self delete", domain.ErrSelfDeletion, http.StatusUnprocessableEntity, "INVALID_OPERATION", "cannot delete your own account"},
		{"conflict", domain.ErrUserExists, http.StatusConflict, "CONFLICT", "user already exists"},
		{"provider", providerDown, http.StatusBadGateway, "EXTERNAL_PROVIDER_ERROR", "identity provider unavailable"},
		{"unexpected", errors.New("pq: relation \"users\" does not exist"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
		{"echo 405", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method Not Allowed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body["success"] != false || body["error"] != tc.code || body["message"] != tc.message {
				t.Fatalf("unexpected envelope: %+v", body)
			}
			if _, ok := body["data"]; ok {
				t.Fatalf("error envelope must not carry data: %+v", body)
			}
			for _, leak := range []string{"dial tcp", "relation"} {
				if strings.Contains(rec.Body.String(), leak) {
					t.Fatalf("internal detail leaked: %s", rec.Body.String())
				}
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponseUntouched(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusAccepted)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	if rec.Code != http.StatusAccepted || rec.Body.Len() != 0 {
		t.Fatalf("committed response must not be rewritten: %d %q", rec.Code, rec.Body.String())
	}
}
