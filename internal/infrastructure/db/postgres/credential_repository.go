package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/synergia/erp-api/internal/core/domain"
)

type CredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Create(ctx context.Context, c *domain.Credential) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	m := &credentialModel{Subject: c.Subject, Email: c.Email, PasswordHash: c.PasswordHash, CreatedAt: c.CreatedAt}
	if err := conn(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCredentialExists
		}
		return err
	}
	return nil
}

func (r *CredentialRepository) FindByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *CredentialRepository) FindBySubject(ctx context.Context, subject string) (*domain.Credential, error) {
	return r.findOne(ctx, "subject = ?", subject)
}

func (r *CredentialRepository) findOne(ctx context.Context, query string, arg any) (*domain.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m credentialModel
	if err := conn(ctx, r.db).Where(query, arg).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, err
	}
	c := m.toDomain()
	return &c, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, subject string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := conn(ctx, r.db).Where("subject = ?", subject).Delete(&credentialModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCredentialNotFound
	}
	return nil
}
