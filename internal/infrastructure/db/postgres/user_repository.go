package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/synergia/erp-api/internal/core/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []userModel
	if err := conn(ctx, r.db).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.User, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m userModel
	if err := conn(ctx, r.db).Where(query, arg).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u := m.toDomain()
	return &u, nil
}

// Create inserts the user; a taken email yields domain.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := conn(ctx, r.db).Create(userFromDomain(u)).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return err
	}
	return nil
}

func (r *UserRepository) SetExternalID(ctx context.Context, id, externalID string) error {
	return r.updates(ctx, id, map[string]any{"external_id": externalID})
}

func (r *UserRepository) Update(ctx context.Context, id string, patch domain.UserPatch, at time.Time) error {
	values := map[string]any{"updated_at": at}
	if v, ok := patch.Name.Get(); ok {
		values["name"] = v
	}
	if v, ok := patch.Role.Get(); ok {
		values["role"] = string(v)
	}
	if v, ok := patch.Status.Get(); ok {
		values["status"] = string(v)
	}
	return r.updates(ctx, id, values)
}

func (r *UserRepository) updates(ctx context.Context, id string, values map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := conn(ctx, r.db).Model(&userModel{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := conn(ctx, r.db).Where("id = ?", id).Delete(&userModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
