package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/synergia/erp-api/internal/core/domain"
)

type userDoc struct {
	ID         string    `bson:"_id"`
	Email      string    `bson:"email"`
	Name       string    `bson:"name"`
	Role       string    `bson:"role"`
	Status     string    `bson:"status"`
	ExternalID string    `bson:"external_id,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func (d *userDoc) toDomain() domain.User {
	return domain.User{
		ID:         d.ID,
		Email:      d.Email,
		Name:       d.Name,
		Role:       domain.Role(d.Role),
		Status:     domain.UserStatus(d.Status),
		ExternalID: d.ExternalID,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

type clientDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	Phone        *string   `bson:"phone"`
	Address      *string   `bson:"address"`
	Status       string    `bson:"status"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
	ProjectCount int64     `bson:"project_count,omitempty"`
}

func (d *clientDoc) toDomain() domain.Client {
	return domain.Client{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Address:   d.Address,
		Status:    domain.ClientStatus(d.Status),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type projectDoc struct {
	ID          string     `bson:"_id"`
	Name        string     `bson:"name"`
	Description *string    `bson:"description"`
	Status      string     `bson:"status"`
	StartDate   *time.Time `bson:"start_date"`
	EndDate     *time.Time `bson:"end_date"`
	ClientID    string     `bson:"client_id"`
	Client      *clientDoc `bson:"client,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

func (d *projectDoc) toDomain() domain.Project {
	p := domain.Project{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Status:      domain.ProjectStatus(d.Status),
		StartDate:   utcPtr(d.StartDate),
		EndDate:     utcPtr(d.EndDate),
		ClientID:    d.ClientID,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.Client != nil {
		c := d.Client.toDomain()
		p.Client = &c
	}
	return p
}

type credentialDoc struct {
	Subject      string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// The patch builders return the $set document for a sparse update. An
// explicit null is stored as a BSON null.

func userSet(p domain.UserPatch, at time.Time) bson.M {
	set := bson.M{"updated_at": at}
	if v, ok := p.Name.Get(); ok {
		set["name"] = v
	}
	if v, ok := p.Role.Get(); ok {
		set["role"] = string(v)
	}
	if v, ok := p.Status.Get(); ok {
		set["status"] = string(v)
	}
	return set
}

func clientSet(p domain.ClientPatch, at time.Time) bson.M {
	set := bson.M{"updated_at": at}
	if v, ok := p.Name.Get(); ok {
		set["name"] = v
	}
	if v, ok := p.Email.Get(); ok {
		set["email"] = v
	}
	if p.Phone.Set {
		set["phone"] = p.Phone.Ptr()
	}
	if p.Address.Set {
		set["address"] = p.Address.Ptr()
	}
	if v, ok := p.Status.Get(); ok {
		set["status"] = string(v)
	}
	return set
}

func projectSet(p domain.ProjectPatch, at time.Time) bson.M {
	set := bson.M{"updated_at": at}
	if v, ok := p.Name.Get(); ok {
		set["name"] = v
	}
	if p.Description.Set {
		set["description"] = p.Description.Ptr()
	}
	if v, ok := p.Status.Get(); ok {
		set["status"] = string(v)
	}
	if p.StartDate.Set {
		set["start_date"] = p.StartDate.Ptr()
	}
	if p.EndDate.Set {
		set["end_date"] = p.EndDate.Ptr()
	}
	if v, ok := p.ClientID.Get(); ok {
		set["client_id"] = v
	}
	return set
}
