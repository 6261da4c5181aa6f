package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func applyProjectFilter(q *gorm.DB, f ports.ProjectFilter) *gorm.DB {
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	return q
}

func (r *ProjectRepository) List(ctx context.Context, f ports.ProjectFilter) ([]domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := applyProjectFilter(conn(ctx, r.db).Preload("Client"), f).Order("created_at DESC, id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []projectModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Project, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m projectModel
	if err := conn(ctx, r.db).Preload("Client").Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	p := m.toDomain()
	return &p, nil
}

func (r *ProjectRepository) Count(ctx context.Context, f ports.ProjectFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	if err := applyProjectFilter(conn(ctx, r.db).Model(&projectModel{}), f).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Create inserts the project; a clientId without a client row yields
// domain.ErrUnknownClient.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := conn(ctx, r.db).Omit(clause.Associations).Create(projectFromDomain(p)).Error; err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUnknownClient
		}
		return err
	}
	return nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, patch domain.ProjectPatch, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	values := map[string]any{"updated_at": at}
	if v, ok := patch.Name.Get(); ok {
		values["name"] = v
	}
	if patch.Description.Set {
		values["description"] = patch.Description.Ptr()
	}
	if v, ok := patch.Status.Get(); ok {
		values["status"] = string(v)
	}
	if patch.StartDate.Set {
		values["start_date"] = patch.StartDate.Ptr()
	}
	if patch.EndDate.Set {
		values["end_date"] = patch.EndDate.Ptr()
	}
	if v, ok := patch.ClientID.Get(); ok {
		values["client_id"] = v
	}

	res := conn(ctx, r.db).Model(&projectModel{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return domain.ErrUnknownClient
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := conn(ctx, r.db).Where("id = ?", id).Delete(&projectModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) DeleteByClient(ctx context.Context, clientID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := conn(ctx, r.db).Where("client_id = ?", clientID).Delete(&projectModel{})
	return res.RowsAffected, res.Error
}
