package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/synergia/erp-api/internal/core/domain"
)

type memCredentials struct {
	mu    sync.Mutex
	items map[string]domain.Credential
	err   error
}

func newMemCredentials() *memCredentials {
	return &memCredentials{items: make(map[string]domain.Credential)}
}

func (m *memCredentials) Create(_ context.Context, c *domain.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.items {
		if existing.Email == c.Email {
			return domain.ErrCredentialExists
		}
	}
	m.items[c.Subject] = *c
	return nil
}

func (m *memCredentials) FindByEmail(_ context.Context, email string) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.items {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, domain.ErrCredentialNotFound
}

func (m *memCredentials) FindBySubject(_ context.Context, subject string) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[subject]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return &c, nil
}

func (m *memCredentials) Delete(_ context.Context, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.items[subject]; !ok {
		return domain.ErrCredentialNotFound
	}
	delete(m.items, subject)
	return nil
}

func newLocal(t *testing.T) (*Local, *memCredentials) {
	t.Helper()
	creds := newMemCredentials()
	p := NewLocal(creds, nil, LocalConfig{Secret: "test-secret", TokenTTL: time.Hour, Issuer: "erp-api"})
	return p, creds
}

func TestLocal_CreateSignInVerify(t *testing.T) {
	p, _ := newLocal(t)
	ctx := context.Background()

	ident, err := p.CreateAccount(ctx, "Alice@Example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if ident.Subject == "" || ident.Email != "alice@example.com" {
		t.Fatalf("unexpected identity: %+v", ident)
	}

	sess, err := p.SignIn(ctx, "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if sess.TokenType != "bearer" || sess.ExpiresIn != 3600 || sess.AccessToken == "" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	got, err := p.Verify(ctx, sess.AccessToken)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.Subject != ident.Subject || got.Email != "alice@example.com" {
		t.Fatalf("unexpected verified identity: %+v", got)
	}
}

func TestLocal_SignInRejects(t *testing.T) {
	p, creds := newLocal(t)
	ctx := context.Background()
	if _, err := p.CreateAccount(ctx, "bob@example.com", "correct-pass"); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	if _, err := p.SignIn(ctx, "bob@example.com", "wrong-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := p.SignIn(ctx, "nobody@example.com", "x"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	creds.err = errors.New("db down")
	if _, err := p.SignIn(ctx, "bob@example.com", "correct-pass"); !errors.Is(err, domain.ErrExternalProvider) {
		t.Fatalf("expected external provider error, got %v", err)
	}
}

func TestLocal_VerifyRejects(t *testing.T) {
	p, _ := newLocal(t)
	ctx := context.Background()

	if _, err := p.Verify(ctx, "not-a-jwt"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, localClaims{
		Email: "x@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub",
			ID:        "jti",
			Issuer:    "erp-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))
	if _, err := p.Verify(ctx, forged); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong key, got %v", err)
	}

	if _, err := p.CreateAccount(ctx, "carol@example.com", "password1"); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	sess, _ := p.SignIn(ctx, "carol@example.com", "password1")
	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := p.Verify(ctx, sess.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestLocal_SignOutRevokes(t *testing.T) {
	p, _ := newLocal(t)
	ctx := context.Background()
	if _, err := p.CreateAccount(ctx, "dan@example.com", "password1"); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	sess, err := p.SignIn(ctx, "dan@example.com", "password1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if err := p.SignOut(ctx, sess.AccessToken); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := p.Verify(ctx, sess.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}

	other, _ := p.SignIn(ctx, "dan@example.com", "password1")
	if _, err := p.Verify(ctx, other.AccessToken); err != nil {
		t.Fatalf("a fresh token must stay valid, got %v", err)
	}
}

func TestLocal_DeleteAccount(t *testing.T) {
	p, creds := newLocal(t)
	ctx := context.Background()
	ident, _ := p.CreateAccount(ctx, "erin@example.com", "password1")

	if err := p.DeleteAccount(ctx, ident.Subject); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if err := p.DeleteAccount(ctx, ident.Subject); err != nil {
		t.Fatalf("deleting an unknown subject should succeed, got %v", err)
	}
	if _, err := p.SignIn(ctx, "erin@example.com", "password1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials after delete, got %v", err)
	}

	creds.err = errors.New("db down")
	if err := p.DeleteAccount(ctx, "x"); !errors.Is(err, domain.ErrExternalProvider) {
		t.Fatalf("expected external provider error, got %v", err)
	}
}

func TestLocal_CreateDuplicate(t *testing.T) {
	p, _ := newLocal(t)
	ctx := context.Background()
	if _, err := p.CreateAccount(ctx, "f@example.com", "password1"); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if _, err := p.CreateAccount(ctx, "F@example.com", "password2"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
