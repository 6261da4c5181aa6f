package ports

import (
	"context"

	"github.com/synergia/erp-api/internal/core/domain"
)

// IdentityProvider is the external authentication service. Every call is a
// single round trip; failures are never retried.
//
// Verify and SignIn return domain.ErrInvalidToken / domain.ErrInvalidCredentials
// when the provider rejects the input, and an error wrapping
// domain.ErrExternalProvider when the provider itself fails.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	Verify(ctx context.Context, token string) (*domain.Identity, error)
	SignOut(ctx context.Context, token string) error
	CreateAccount(ctx context.Context, email, password string) (*domain.Identity, error)
	DeleteAccount(ctx context.Context, subject string) error
}
