package ports

import (
	"context"
	"time"

	"github.com/synergia/erp-api/internal/core/domain"
)

// Transactor runs fn inside a single store transaction. Repository calls made
// with the ctx passed to fn join that transaction; fn returning an error rolls
// every write back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository is the user directory: the source of truth for who an
// authenticated email belongs to.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// SetExternalID links the row to the identity provider's subject.
	SetExternalID(ctx context.Context, id, externalID string) error
	// Update writes only the fields set in patch, plus updatedAt.
	Update(ctx context.Context, id string, patch domain.UserPatch, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// ClientFilter narrows Count. Zero fields do not filter.
type ClientFilter struct {
	CreatedSince time.Time
}

type ClientRepository interface {
	// List returns clients with their project counts, newest first.
	// limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]domain.ClientSummary, error)
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, filter ClientFilter) (int64, error)
	Create(ctx context.Context, c *domain.Client) error
	Update(ctx context.Context, id string, patch domain.ClientPatch, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// ProjectFilter narrows List and Count. Zero fields do not filter.
type ProjectFilter struct {
	ClientID string
	Status   domain.ProjectStatus
	Limit    int
}

type ProjectRepository interface {
	// List returns projects with their client embedded, newest first.
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	Count(ctx context.Context, filter ProjectFilter) (int64, error)
	Create(ctx context.Context, p *domain.Project) error
	Update(ctx context.Context, id string, patch domain.ProjectPatch, at time.Time) error
	Delete(ctx context.Context, id string) error
	// DeleteByClient removes every project of a client and reports how many.
	DeleteByClient(ctx context.Context, clientID string) (int64, error)
}

// CredentialRepository stores the password logins of the built-in identity
// provider. It joins a transaction started by Transactor like the other
// repositories.
type CredentialRepository interface {
	Create(ctx context.Context, c *domain.Credential) error
	FindByEmail(ctx context.Context, email string) (*domain.Credential, error)
	FindBySubject(ctx context.Context, subject string) (*domain.Credential, error)
	Delete(ctx context.Context, subject string) error
}
