package postgres

import (
	"time"

	"github.com/synergia/erp-api/internal/core/domain"
)

type userModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	Email      string    `gorm:"type:varchar(320);not null;uniqueIndex"`
	Name       string    `gorm:"type:varchar(200);not null"`
	Role       string    `gorm:"type:varchar(16);not null"`
	Status     string    `gorm:"type:varchar(16);not null;index"`
	ExternalID string    `gorm:"type:varchar(128);index"`
	CreatedAt  time.Time `gorm:"not null;index"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (userModel) TableName() string { return "users" }

func (m *userModel) toDomain() domain.User {
	return domain.User{
		ID:         m.ID,
		Email:      m.Email,
		Name:       m.Name,
		Role:       domain.Role(m.Role),
		Status:     domain.UserStatus(m.Status),
		ExternalID: m.ExternalID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func userFromDomain(u *domain.User) *userModel {
	return &userModel{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		Status:     string(u.Status),
		ExternalID: u.ExternalID,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

type clientModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Email     string    `gorm:"type:varchar(320);not null"`
	Phone     *string   `gorm:"type:varchar(64)"`
	Address   *string   `gorm:"type:text"`
	Status    string    `gorm:"type:varchar(16);not null;index"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (clientModel) TableName() string { return "clients" }

func (m *clientModel) toDomain() domain.Client {
	return domain.Client{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Address:   m.Address,
		Status:    domain.ClientStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func clientFromDomain(c *domain.Client) *clientModel {
	return &clientModel{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// clientRow is a list row with the project count computed by a subquery.
type clientRow struct {
	Client       clientModel `gorm:"embedded"`
	ProjectCount int64
}

type projectModel struct {
	ID          string  `gorm:"primaryKey;type:varchar(36)"`
	Name        string  `gorm:"type:varchar(200);not null"`
	Description *string `gorm:"type:text"`
	Status      string  `gorm:"type:varchar(16);not null;index"`
	StartDate   *time.Time
	EndDate     *time.Time
	ClientID    string       `gorm:"type:varchar(36);not null;index"`
	Client      *clientModel `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CreatedAt   time.Time    `gorm:"not null;index"`
	UpdatedAt   time.Time    `gorm:"not null"`
}

func (projectModel) TableName() string { return "projects" }

func (m *projectModel) toDomain() domain.Project {
	p := domain.Project{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Status:      domain.ProjectStatus(m.Status),
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		ClientID:    m.ClientID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Client != nil {
		c := m.Client.toDomain()
		p.Client = &c
	}
	return p
}

func projectFromDomain(p *domain.Project) *projectModel {
	return &projectModel{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		ClientID:    p.ClientID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type credentialModel struct {
	Subject      string    `gorm:"primaryKey;type:varchar(36)"`
	Email        string    `gorm:"type:varchar(320);not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(100);not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (credentialModel) TableName() string { return "credentials" }

func (m *credentialModel) toDomain() domain.Credential {
	return domain.Credential{Subject: m.Subject, Email: m.Email, PasswordHash: m.PasswordHash, CreatedAt: m.CreatedAt}
}
