package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

type ProjectService struct {
	tx       ports.Transactor
	projects ports.ProjectRepository
	clients  ports.ClientRepository
	log      zerolog.Logger
}

func NewProjectService(tx ports.Transactor, projects ports.ProjectRepository, clients ports.ClientRepository, log zerolog.Logger) *ProjectService {
	return &ProjectService{tx: tx, projects: projects, clients: clients, log: log}
}

func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.projects.List(ctx, ports.ProjectFilter{})
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.FindByID(ctx, id)
}

func (s *ProjectService) Create(ctx context.Context, in ports.CreateProjectInput) (*domain.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := checkRequired("name", in.Name); err != nil {
		return nil, err
	}
	if err := checkRequired("clientId", in.ClientID); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = domain.ProjectPlanned
	}
	if !status.Valid() {
		return nil, domain.Validationf("status must be one of: PLANNED IN_PROGRESS COMPLETED CANCELLED")
	}

	now := time.Now().UTC()
	p := &domain.Project{
		ID:          newID(),
		Name:        in.Name,
		Description: trimmedPtr(in.Description),
		Status:      status,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		ClientID:    in.ClientID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.CheckDates(); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requireClient(ctx, p.ClientID); err != nil {
			return err
		}
		return s.projects.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("project_id", p.ID).Str("client_id", p.ClientID).Msg("project created")
	return s.projects.FindByID(ctx, p.ID)
}

// Update applies a sparse patch. Description and the dates are cleared by an
// explicit null; a new clientId must reference an existing client.
func (s *ProjectService) Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	if err := requiredPatch("name", patch.Name); err != nil {
		return nil, err
	}
	if err := requiredPatch("clientId", patch.ClientID); err != nil {
		return nil, err
	}
	if patch.Status.Set && (patch.Status.Null || !patch.Status.Value.Valid()) {
		return nil, domain.Validationf("status must be one of: PLANNED IN_PROGRESS COMPLETED CANCELLED")
	}
	patch.Name.Value = strings.TrimSpace(patch.Name.Value)
	patch.Description = clearBlank(patch.Description)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := s.projects.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.Empty() {
			return nil
		}
		merged := *cur
		patch.Apply(&merged)
		if err := merged.CheckDates(); err != nil {
			return err
		}
		if patch.ClientID.Set {
			if err := s.requireClient(ctx, merged.ClientID); err != nil {
				return err
			}
		}
		return s.projects.Update(ctx, id, patch, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return s.projects.FindByID(ctx, id)
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("project_id", id).Msg("project deleted")
	return nil
}

func (s *ProjectService) requireClient(ctx context.Context, clientID string) error {
	ok, err := s.clients.Exists(ctx, clientID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUnknownClient
	}
	return nil
}
