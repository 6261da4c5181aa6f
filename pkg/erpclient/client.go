// Package erpclient is a Go client for the ERP REST API. It unwraps the
// {success,data,error,message} envelope and keeps a session.Session in step
// with login, logout and token restore.
package erpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/synergia/erp-api/pkg/session"
)

const DefaultBaseURL = "http://localhost:3001/api"

// APIError is a failed call as reported by the server envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("erp api: %d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("erp api: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 30s.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSession shares s with the client, e.g. one seeded with a stored token.
func WithSession(s *session.Session) Option {
	return func(c *Client) { c.session = s }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("erpclient: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("erpclient: base url must be http or https, got %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.session == nil {
		c.session = session.New()
	}
	return c, nil
}

func (c *Client) Session() *session.Session { return c.session }

// Login signs in and records the token and user on the session. A failed
// login leaves the session anonymous.
func (c *Client) Login(ctx context.Context, email, password string) (*session.User, error) {
	if err := c.session.Begin(); err != nil {
		return nil, err
	}

	var out loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out, "")
	if err == nil && out.Session.AccessToken == "" {
		err = errors.New("erpclient: login response carried no token")
	}
	if err != nil {
		_ = c.session.Fail()
		return nil, err
	}

	u := sessionUser(out.User)
	if err := c.session.Complete(out.Session.AccessToken, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout revokes the token server-side. The session is cleared even when the
// call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.End()
	if c.session.Token() == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, c.session.Token())
}

// Restore loads the user behind the session's stored token. With no stored
// token it returns nil, nil. A rejected token is dropped.
func (c *Client) Restore(ctx context.Context) (*session.User, error) {
	token := c.session.Token()
	if token == "" {
		return nil, nil
	}
	if err := c.session.Begin(); err != nil {
		return nil, err
	}

	var me User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &me, token); err != nil {
		_ = c.session.Fail()
		return nil, err
	}

	u := sessionUser(me)
	if err := c.session.Complete(token, u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.authed(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	if err := c.authed(ctx, http.MethodGet, "/dashboard/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListClients(ctx context.Context) ([]ClientSummary, error) {
	var out []ClientSummary
	if err := c.authed(ctx, http.MethodGet, "/clients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetClient(ctx context.Context, id string) (*ClientDetail, error) {
	var out ClientDetail
	if err := c.authed(ctx, http.MethodGet, "/clients/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateClient(ctx context.Context, in ClientInput) (*ClientRecord, error) {
	var out ClientRecord
	if err := c.authed(ctx, http.MethodPost, "/clients", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateClient(ctx context.Context, id string, patch ClientPatch) (*ClientRecord, error) {
	var out ClientRecord
	if err := c.authed(ctx, http.MethodPut, "/clients/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteClient removes a client together with all of its projects.
func (c *Client) DeleteClient(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodDelete, "/clients/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	if err := c.authed(ctx, http.MethodGet, "/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var out Project
	if err := c.authed(ctx, http.MethodGet, "/projects/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (*Project, error) {
	var out Project
	if err := c.authed(ctx, http.MethodPost, "/projects", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (*Project, error) {
	var out Project
	if err := c.authed(ctx, http.MethodPut, "/projects/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.authed(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) InviteUser(ctx context.Context, in UserInvite) (*Invitation, error) {
	var out Invitation
	if err := c.authed(ctx, http.MethodPost, "/users/invite", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error) {
	var out User
	if err := c.authed(ctx, http.MethodPut, "/users/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

func (c *Client) authed(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, body, out, c.session.Token())
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// do sends body as JSON, checks the envelope and decodes its data into out.
// A nil out discards the data.
func (c *Client) do(ctx context.Context, method, path string, body, out any, token string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("erpclient: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("erpclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("erpclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("erpclient: read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("erpclient: decode envelope: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return &APIError{Status: resp.StatusCode, Code: env.Error, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("erpclient: decode data: %w", err)
	}
	return nil
}

func sessionUser(u User) session.User {
	return session.User{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
