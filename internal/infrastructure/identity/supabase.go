package identity

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

	"github.com/synergia/erp-api/internal/core/domain"
)

const maxResponseBytes = 1 << 20

// SupabaseConfig holds the project URL and keys of a Supabase project.
type SupabaseConfig struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	// HTTPClient is used for all requests. If nil, a client with Timeout is used.
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Supabase talks to the GoTrue auth API of a Supabase project. Each call is a
// single request; nothing is retried.
type Supabase struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

func NewSupabase(cfg SupabaseConfig) (*Supabase, error) {
	if cfg.URL == "" || cfg.AnonKey == "" || cfg.ServiceRoleKey == "" {
		return nil, fmt.Errorf("supabase: url, anon key and service role key are required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("supabase: invalid url %q: %w", cfg.URL, err)
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Supabase{
		baseURL:    strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceRoleKey,
		httpClient: client,
	}, nil
}

type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type gotrueSession struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int64      `json:"expires_in"`
	ExpiresAt   int64      `json:"expires_at"`
	User        gotrueUser `json:"user"`
}

// apiError is the error body GoTrue answers with. Older versions use
// error/error_description, newer ones msg/error_code.
type apiError struct {
	Status           int    `json:"-"`
	Code             string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorName        string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *apiError) message() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.ErrorName} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (e *apiError) Error() string {
	if m := e.message(); m != "" {
		return fmt.Sprintf("supabase: %d %s", e.Status, m)
	}
	return fmt.Sprintf("supabase: status %d", e.Status)
}

func (s *Supabase) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var sess gotrueSession
	err := s.do(ctx, http.MethodPost, "/token?grant_type=password", s.anonKey, s.anonKey, body, &sess)
	if err != nil {
		if status(err) == http.StatusBadRequest || status(err) == http.StatusUnauthorized {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, providerError(err)
	}

	expiresAt := time.Unix(sess.ExpiresAt, 0).UTC()
	if sess.ExpiresAt == 0 {
		expiresAt = time.Now().UTC().Add(time.Duration(sess.ExpiresIn) * time.Second)
	}
	return &domain.Session{
		AccessToken: sess.AccessToken,
		TokenType:   sess.TokenType,
		ExpiresIn:   sess.ExpiresIn,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *Supabase) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	var u gotrueUser
	if err := s.do(ctx, http.MethodGet, "/user", s.anonKey, token, nil, &u); err != nil {
		switch status(err) {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return nil, domain.ErrInvalidToken
		}
		return nil, providerError(err)
	}
	if u.ID == "" || u.Email == "" {
		return nil, domain.ErrInvalidToken
	}
	return &domain.Identity{Subject: u.ID, Email: strings.ToLower(u.Email)}, nil
}

func (s *Supabase) SignOut(ctx context.Context, token string) error {
	if err := s.do(ctx, http.MethodPost, "/logout?scope=global", s.anonKey, token, nil, nil); err != nil {
		switch status(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.ErrInvalidToken
		case http.StatusNotFound:
			return nil
		}
		return providerError(err)
	}
	return nil
}

func (s *Supabase) CreateAccount(ctx context.Context, email, password string) (*domain.Identity, error) {
	body := map[string]any{"email": email, "password": password, "email_confirm": true}
	var u gotrueUser
	if err := s.do(ctx, http.MethodPost, "/admin/users", s.serviceKey, s.serviceKey, body, &u); err != nil {
		return nil, createAccountError(err)
	}
	return &domain.Identity{Subject: u.ID, Email: u.Email}, nil
}

// createAccountError maps a rejected /admin/users call. GoTrue answers 422 for
// both a taken email and a rejected password, so only the error_code tells
// them apart.
func createAccountError(err error) error {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return providerError(err)
	}
	switch apiErr.Code {
	case "email_exists", "user_already_exists":
		return domain.ErrCredentialExists
	case "weak_password", "email_address_invalid", "validation_failed":
		return domain.Validationf("%s", apiErr.message())
	}
	if apiErr.Status == http.StatusConflict {
		return domain.ErrCredentialExists
	}
	return providerError(err)
}

// DeleteAccount removes the auth user. An unknown subject is not an error.
func (s *Supabase) DeleteAccount(ctx context.Context, subject string) error {
	err := s.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(subject), s.serviceKey, s.serviceKey, nil, nil)
	if err != nil && status(err) != http.StatusNotFound {
		return providerError(err)
	}
	return nil
}

func (s *Supabase) do(ctx context.Context, method, path, apiKey, bearer string, reqBody, out any) error {
	var bodyReader io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("supabase: encode request: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("supabase: build request: %w", err)
	}
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("supabase: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{}
		_ = json.Unmarshal(raw, apiErr)
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("supabase: decode response: %w", err)
	}
	return nil
}

func status(err error) int {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
