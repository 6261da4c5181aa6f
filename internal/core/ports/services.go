package ports

import (
	"context"
	"time"

	"github.com/synergia/erp-api/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	User    *domain.User
	Session *domain.Session
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, userID string) (*domain.User, error)
	// Authenticate resolves a bearer token into the principal of the request.
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
}

// CreateClientInput carries the fields of a new client.
type CreateClientInput struct {
	Name    string
	Email   string
	Phone   *string
	Address *string
	Status  domain.ClientStatus
}

type ClientService interface {
	List(ctx context.Context) ([]domain.ClientSummary, error)
	Get(ctx context.Context, id string) (*domain.ClientDetail, error)
	Create(ctx context.Context, in CreateClientInput) (*domain.Client, error)
	Update(ctx context.Context, id string, patch domain.ClientPatch) (*domain.Client, error)
	// Delete removes the client and all of its projects in one transaction.
	Delete(ctx context.Context, id string) error
}

// CreateProjectInput carries the fields of a new project.
type CreateProjectInput struct {
	Name        string
	Description *string
	Status      domain.ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
	ClientID    string
}

type ProjectService interface {
	List(ctx context.Context) ([]domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, in CreateProjectInput) (*domain.Project, error)
	Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// InviteUserInput carries an invitation. Role defaults to EMPLOYEE and a
// temporary password is generated when Password is empty.
type InviteUserInput struct {
	Email    string
	Name     string
	Role     domain.Role
	Password string
}

// InviteResult holds the created user and, when one was generated, the
// temporary password. The password is not stored anywhere else.
type InviteResult struct {
	User              *domain.User
	TemporaryPassword string
}

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Invite(ctx context.Context, in InviteUserInput) (*InviteResult, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	// Delete removes a user other than actorID and revokes its external account.
	Delete(ctx context.Context, actorID, id string) error
}

// DashboardStats is the read-only aggregate behind the dashboard.
type DashboardStats struct {
	TotalClients        int64                  `json:"totalClients"`
	ActiveProjects      int64                  `json:"activeProjects"`
	CompletedProjects   int64                  `json:"completedProjects"`
	NewClientsThisMonth int64                  `json:"newClientsThisMonth"`
	RecentProjects      []domain.Project       `json:"recentProjects"`
	RecentClients       []domain.ClientSummary `json:"recentClients"`
}

type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
}
