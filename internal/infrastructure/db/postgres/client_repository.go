package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

const projectCountSelect = "clients.*, (SELECT COUNT(*) FROM projects WHERE projects.client_id = clients.id) AS project_count"

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) List(ctx context.Context, limit int) ([]domain.ClientSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := conn(ctx, r.db).Model(&clientModel{}).
		Select(projectCountSelect).
		Order("clients.created_at DESC, clients.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []clientRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ClientSummary, len(rows))
	for i := range rows {
		out[i] = domain.ClientSummary{Client: rows[i].Client.toDomain(), ProjectCount: rows[i].ProjectCount}
	}
	return out, nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m clientModel
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	c := m.toDomain()
	return &c, nil
}

func (r *ClientRepository) Exists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	if err := conn(ctx, r.db).Model(&clientModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ClientRepository) Count(ctx context.Context, f ports.ClientFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := conn(ctx, r.db).Model(&clientModel{})
	if !f.CreatedSince.IsZero() {
		q = q.Where("created_at >= ?", f.CreatedSince.UTC())
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return conn(ctx, r.db).Create(clientFromDomain(c)).Error
}

func (r *ClientRepository) Update(ctx context.Context, id string, patch domain.ClientPatch, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	values := map[string]any{"updated_at": at}
	if v, ok := patch.Name.Get(); ok {
		values["name"] = v
	}
	if v, ok := patch.Email.Get(); ok {
		values["email"] = v
	}
	if patch.Phone.Set {
		values["phone"] = patch.Phone.Ptr()
	}
	if patch.Address.Set {
		values["address"] = patch.Address.Ptr()
	}
	if v, ok := patch.Status.Get(); ok {
		values["status"] = string(v)
	}

	res := conn(ctx, r.db).Model(&clientModel{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// Delete removes the client row only. It fails while projects still
// reference the client.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := conn(ctx, r.db).Where("id = ?", id).Delete(&clientModel{})
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return domain.NewError(domain.ErrInvalidOperation, "client still has projects")
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}
