package erpclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/synergia/erp-api/pkg/erpclient"
	"github.com/synergia/erp-api/pkg/session"
)

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newClient(t *testing.T, h http.Handler, opts ...erpclient.Option) *erpclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := erpclient.New(srv.URL+"/api", opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsNonHTTPBaseURL(t *testing.T) {
	if _, err := erpclient.New("ftp://example.com/api"); err == nil {
		t.Fatal("expected an error for a non-http base url")
	}
}

func TestLogin_AuthenticatesSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ada@example.com" || body["password"] != "secret-pass" {
			t.Errorf("unexpected login body: %v", body)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"user":    map[string]any{"id": "u1", "email": "ada@example.com", "name": "Ada", "role": "ADMIN"},
				"session": map[string]any{"accessToken": "tok-1", "tokenType": "bearer"},
			},
		})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("expected bearer token, got %q", got)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"id": "u1", "email": "ada@example.com", "status": "ACTIVE"},
		})
	})

	c := newClient(t, mux)
	u, err := c.Login(context.Background(), "ada@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.ID != "u1" || u.Role != "ADMIN" {
		t.Fatalf("unexpected user: %+v", u)
	}

	snap := c.Session().Snapshot()
	if snap.State != session.Authenticated || snap.Token != "tok-1" {
		t.Fatalf("unexpected session: %+v", snap)
	}

	me, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.Status != "ACTIVE" {
		t.Fatalf("expected ACTIVE, got %s", me.Status)
	}
}

func TestLogin_FailureLeavesSessionAnonymous(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, map[string]any{
			"success": false, "error": "UNAUTHENTICATED", "message": "invalid credentials",
		})
	})

	c := newClient(t, mux)
	_, err := c.Login(context.Background(), "ada@example.com", "wrong")
	if !erpclient.IsCode(err, "UNAUTHENTICATED") {
		t.Fatalf("expected UNAUTHENTICATED, got %v", err)
	}

	var apiErr *erpclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || apiErr.Message != "invalid credentials" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if c.Session().State() != session.Anonymous {
		t.Fatalf("expected anonymous, got %s", c.Session().State())
	}
}

func TestRestore(t *testing.T) {
	t.Run("valid stored token", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer stored" {
				writeEnvelope(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "UNAUTHENTICATED"})
				return
			}
			writeEnvelope(w, http.StatusOK, map[string]any{
				"success": true,
				"data":    map[string]any{"id": "u9", "email": "x@example.com", "role": "EMPLOYEE"},
			})
		})

		c := newClient(t, mux, erpclient.WithSession(session.New(session.WithToken("stored"))))
		u, err := c.Restore(context.Background())
		if err != nil {
			t.Fatalf("Restore: %v", err)
		}
		if u == nil || u.ID != "u9" {
			t.Fatalf("unexpected user: %+v", u)
		}
		if c.Session().State() != session.Authenticated || c.Session().Token() != "stored" {
			t.Fatalf("unexpected session: %+v", c.Session().Snapshot())
		}
	})

	t.Run("rejected token is dropped", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusUnauthorized, map[string]any{
				"success": false, "error": "UNAUTHENTICATED", "message": "invalid token",
			})
		})

		c := newClient(t, mux, erpclient.WithSession(session.New(session.WithToken("expired"))))
		if _, err := c.Restore(context.Background()); !erpclient.IsCode(err, "UNAUTHENTICATED") {
			t.Fatalf("expected UNAUTHENTICATED, got %v", err)
		}
		if c.Session().Token() != "" || c.Session().State() != session.Anonymous {
			t.Fatalf("token should be cleared, got %+v", c.Session().Snapshot())
		}
	})

	t.Run("no stored token", func(t *testing.T) {
		c := newClient(t, http.NotFoundHandler())
		u, err := c.Restore(context.Background())
		if u != nil || err != nil {
			t.Fatalf("expected nil, nil; got %+v, %v", u, err)
		}
	})
}

func TestLogout_ClearsSessionEvenOnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadGateway, map[string]any{
			"success": false, "error": "EXTERNAL_PROVIDER_ERROR", "message": "identity provider unavailable",
		})
	})

	s := session.New()
	_ = s.Begin()
	_ = s.Complete("tok", session.User{ID: "u1"})

	c := newClient(t, mux, erpclient.WithSession(s))
	if err := c.Logout(context.Background()); !erpclient.IsCode(err, "EXTERNAL_PROVIDER_ERROR") {
		t.Fatalf("expected provider error, got %v", err)
	}
	if s.State() != session.Anonymous || s.Token() != "" {
		t.Fatalf("session should be cleared, got %+v", s.Snapshot())
	}
}

func TestUpdateClient_SendsSparsePatch(t *testing.T) {
	var got map[string]json.RawMessage
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/clients/c-1", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"id": "c-1", "name": "Acme", "phone": nil, "status": "ACTIVE"},
		})
	})

	c := newClient(t, mux)
	client, err := c.UpdateClient(context.Background(), "c-1", erpclient.ClientPatch{
		Name:  erpclient.Some("Acme"),
		Phone: erpclient.Null[string](),
	})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	if client.Name != "Acme" || client.Phone != nil {
		t.Fatalf("unexpected client: %+v", client)
	}

	if len(got) != 2 {
		t.Fatalf("expected only name and phone in the patch, got %v", got)
	}
	if string(got["name"]) != `"Acme"` || string(got["phone"]) != "null" {
		t.Fatalf("unexpected patch: name=%s phone=%s", got["name"], got["phone"])
	}
}

func TestListProjects_DecodesEnvelopeData(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": "p1", "name": "Site", "status": "IN_PROGRESS", "clientId": "c1",
					"client": map[string]any{"id": "c1", "name": "Acme"}},
			},
		})
	})

	c := newClient(t, mux)
	projects, err := c.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].Client == nil || projects[0].Client.Name != "Acme" {
		t.Fatalf("unexpected projects: %+v", projects)
	}
}

func TestDeleteUser_MapsErrorEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/users/me-1", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnprocessableEntity, map[string]any{
			"success": false, "error": "INVALID_OPERATION", "message": "cannot delete your own account",
		})
	})

	c := newClient(t, mux)
	if err := c.DeleteUser(context.Background(), "me-1"); !erpclient.IsCode(err, "INVALID_OPERATION") {
		t.Fatalf("expected INVALID_OPERATION, got %v", err)
	}
}

func TestDo_NonJSONErrorBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	})

	c := newClient(t, mux)
	_, err := c.DashboardStats(context.Background())

	var apiErr *erpclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected a 503 APIError, got %v", err)
	}
}

func TestProjectPatch_EncodesOnlySetFields(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(erpclient.ProjectPatch{
		StartDate:   erpclient.Some(start),
		Description: erpclient.Null[string](),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `{"description":null,"startDate":"2026-03-01T00:00:00Z"}`; string(raw) != want {
		t.Fatalf("expected %s, got %s", want, raw)
	}
}
