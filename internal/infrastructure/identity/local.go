package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

const (
	defaultTokenTTL = 24 * time.Hour
	tokenType       = "bearer"
)

// RevocationList tracks signed-out tokens by their jti.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// LocalConfig configures the built-in provider.
type LocalConfig struct {
	Secret   string
	TokenTTL time.Duration
	Issuer   string
}

type localClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Local is an identity provider backed by the application's own store:
// bcrypt password hashes and HS256 access tokens. Credential writes use the
// caller's ctx, so they join a surrounding store transaction.
type Local struct {
	creds   ports.CredentialRepository
	revoked RevocationList
	secret  []byte
	ttl     time.Duration
	issuer  string
	now     func() time.Time
}

func NewLocal(creds ports.CredentialRepository, revoked RevocationList, cfg LocalConfig) *Local {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if revoked == nil {
		revoked = NewMemoryRevocationList()
	}
	return &Local{
		creds:   creds,
		revoked: revoked,
		secret:  []byte(cfg.Secret),
		ttl:     ttl,
		issuer:  cfg.Issuer,
		now:     time.Now,
	}
}

func (p *Local) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	cred, err := p.creds.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, providerError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return p.issue(cred)
}

func (p *Local) issue(cred *domain.Credential) (*domain.Session, error) {
	now := p.now().UTC()
	exp := now.Add(p.ttl)
	claims := localClaims{
		Email: cred.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   cred.Subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        ulid.Make().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, providerError(err)
	}
	return &domain.Session{
		AccessToken: signed,
		TokenType:   tokenType,
		ExpiresIn:   int64(p.ttl / time.Second),
		ExpiresAt:   exp,
	}, nil
}

func (p *Local) parse(token string) (*localClaims, error) {
	claims := &localClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil || !tkn.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func (p *Local) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := p.parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := p.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, providerError(err)
	}
	if revoked {
		return nil, domain.ErrInvalidToken
	}
	return &domain.Identity{Subject: claims.Subject, Email: claims.Email}, nil
}

// SignOut revokes the token until it would have expired.
func (p *Local) SignOut(ctx context.Context, token string) error {
	claims, err := p.parse(token)
	if err != nil {
		return err
	}
	if err := p.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return providerError(err)
	}
	return nil
}

func (p *Local) CreateAccount(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.Validationf("email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, providerError(err)
	}

	cred := &domain.Credential{
		Subject:      uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    p.now().UTC(),
	}
	if err := p.creds.Create(ctx, cred); err != nil {
		if errors.Is(err, domain.ErrCredentialExists) {
			return nil, err
		}
		return nil, providerError(err)
	}
	return &domain.Identity{Subject: cred.Subject, Email: cred.Email}, nil
}

// DeleteAccount removes the credential. An unknown subject is not an error.
func (p *Local) DeleteAccount(ctx context.Context, subject string) error {
	if err := p.creds.Delete(ctx, subject); err != nil && !errors.Is(err, domain.ErrCredentialNotFound) {
		return providerError(err)
	}
	return nil
}

func providerError(err error) error {
	return &wrapped{kind: domain.ErrExternalProvider, err: err}
}

// wrapped keeps both the provider kind and the underlying cause reachable
// through errors.Is.
type wrapped struct {
	kind error
	err  error
}

func (w *wrapped) Error() string { return "identity provider: " + w.err.Error() }

func (w *wrapped) Unwrap() []error { return []error{w.kind, w.err} }

// MemoryRevocationList is a process-local RevocationList for single-instance
// deployments and tests.
type MemoryRevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{revoked: make(map[string]time.Time)}
}

func (m *MemoryRevocationList) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for id, exp := range m.revoked {
		if exp.Before(now) {
			delete(m.revoked, id)
		}
	}
	if expiresAt.After(now) {
		m.revoked[jti] = expiresAt
	}
	return nil
}

func (m *MemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.revoked[jti]
	return ok && exp.After(time.Now()), nil
}
