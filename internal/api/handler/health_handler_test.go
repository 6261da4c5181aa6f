package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthHandler_Readiness(t *testing.T) {
	cases := []struct {
		name     string
		deps     map[string]Pinger
		wantCode int
		wantDeps map[string]string
	}{
		{
			name:     "all up",
			deps:     map[string]Pinger{"database": stubPinger{}, "redis": stubPinger{}},
			wantCode: http.StatusOK,
			wantDeps: map[string]string{"database": "ok", "redis": "ok"},
		},
		{
			name:     "redis down",
			deps:     map[string]Pinger{"database": stubPinger{}, "redis": stubPinger{err: errors.New("connection refused")}},
			wantCode: http.StatusServiceUnavailable,
			wantDeps: map[string]string{"database": "ok", "redis": "unhealthy"},
		},
		{
			name:     "nil pinger skipped",
			deps:     map[string]Pinger{"database": stubPinger{}, "redis": nil},
			wantCode: http.StatusOK,
			wantDeps: map[string]string{"database": "ok"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandler(tc.deps)
			c, rec := newContext(http.MethodGet, "/api/health/ready", "")

			if err := h.Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}

			var resp struct {
				Data readinessResponse `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if len(resp.Data.Dependencies) != len(tc.wantDeps) {
				t.Fatalf("unexpected dependencies: %+v", resp.Data.Dependencies)
			}
			for name, want := range tc.wantDeps {
				if got := resp.Data.Dependencies[name].Status; got != want {
					t.Fatalf("%s: expected %s, got %s", name, want, got)
				}
			}
		})
	}
}
