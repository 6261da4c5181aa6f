package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

type ClientService struct {
	tx       ports.Transactor
	clients  ports.ClientRepository
	projects ports.ProjectRepository
	log      zerolog.Logger
}

func NewClientService(tx ports.Transactor, clients ports.ClientRepository, projects ports.ProjectRepository, log zerolog.Logger) *ClientService {
	return &ClientService{tx: tx, clients: clients, projects: projects, log: log}
}

func (s *ClientService) List(ctx context.Context) ([]domain.ClientSummary, error) {
	return s.clients.List(ctx, 0)
}

func (s *ClientService) Get(ctx context.Context, id string) (*domain.ClientDetail, error) {
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.List(ctx, ports.ProjectFilter{ClientID: id})
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].Client = nil
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return &domain.ClientDetail{Client: *c, Projects: projects}, nil
}

func (s *ClientService) Create(ctx context.Context, in ports.CreateClientInput) (*domain.Client, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := checkRequired("name", in.Name); err != nil {
		return nil, err
	}
	if err := checkEmail("email", in.Email); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = domain.ClientLead
	}
	if !status.Valid() {
		return nil, domain.Validationf("status must be one of: LEAD ACTIVE INACTIVE")
	}

	now := time.Now().UTC()
	c := &domain.Client{
		ID:        newID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     trimmedPtr(in.Phone),
		Address:   trimmedPtr(in.Address),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.clients.Create(ctx, c); err != nil {
		s.log.Error().Err(err).Msg("failed to create client")
		return nil, err
	}

	s.log.Info().Str("client_id", c.ID).Msg("client created")
	return c, nil
}

// Update applies a sparse patch. Phone and Address are cleared by an explicit
// null or an empty string; absent fields are left untouched.
func (s *ClientService) Update(ctx context.Context, id string, patch domain.ClientPatch) (*domain.Client, error) {
	if err := requiredPatch("name", patch.Name); err != nil {
		return nil, err
	}
	if patch.Email.Set {
		if patch.Email.Null {
			return nil, domain.Validationf("email cannot be cleared")
		}
		if err := checkEmail("email", patch.Email.Value); err != nil {
			return nil, err
		}
	}
	if patch.Status.Set && (patch.Status.Null || !patch.Status.Value.Valid()) {
		return nil, domain.Validationf("status must be one of: LEAD ACTIVE INACTIVE")
	}
	patch.Name.Value = strings.TrimSpace(patch.Name.Value)
	patch.Email.Value = strings.TrimSpace(patch.Email.Value)
	patch.Phone = clearBlank(patch.Phone)
	patch.Address = clearBlank(patch.Address)

	if !patch.Empty() {
		if err := s.clients.Update(ctx, id, patch, time.Now().UTC()); err != nil {
			return nil, err
		}
	}
	return s.clients.FindByID(ctx, id)
}

// Delete removes the client together with every project that references it.
// Either all rows go or none do.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	var removed int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.clients.FindByID(ctx, id); err != nil {
			return err
		}
		n, err := s.projects.DeleteByClient(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return s.clients.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("client_id", id).Int64("projects_removed", removed).Msg("client deleted")
	return nil
}
