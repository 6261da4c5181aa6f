package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/synergia/erp-api/internal/core/domain"
)

// --- Request types ---
//
// Update requests use domain.Optional so an absent key and an explicit null
// stay distinguishable all the way down to the repository.

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createClientRequest struct {
	Name    string  `json:"name"    validate:"required,notblank"`
	Email   string  `json:"email"   validate:"required,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Status  string  `json:"status"  validate:"omitempty,oneof=LEAD ACTIVE INACTIVE"`
}

type updateClientRequest struct {
	Name    domain.Optional[string]              `json:"name"`
	Email   domain.Optional[string]              `json:"email"`
	Phone   domain.Optional[string]              `json:"phone"`
	Address domain.Optional[string]              `json:"address"`
	Status  domain.Optional[domain.ClientStatus] `json:"status"`
}

func (r updateClientRequest) patch() domain.ClientPatch {
	return domain.ClientPatch{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
		Status:  r.Status,
	}
}

type createProjectRequest struct {
	Name        string  `json:"name"        validate:"required,notblank"`
	Description *string `json:"description"`
	Status      string  `json:"status"      validate:"omitempty,oneof=PLANNED IN_PROGRESS COMPLETED CANCELLED"`
	StartDate   *date   `json:"startDate"`
	EndDate     *date   `json:"endDate"`
	ClientID    string  `json:"clientId"    validate:"required,notblank"`
}

type updateProjectRequest struct {
	Name        domain.Optional[string]               `json:"name"`
	Description domain.Optional[string]               `json:"description"`
	Status      domain.Optional[domain.ProjectStatus] `json:"status"`
	StartDate   domain.Optional[date]                 `json:"startDate"`
	EndDate     domain.Optional[date]                 `json:"endDate"`
	ClientID    domain.Optional[string]               `json:"clientId"`
}

func (r updateProjectRequest) patch() domain.ProjectPatch {
	return domain.ProjectPatch{
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		StartDate:   dateOption(r.StartDate),
		EndDate:     dateOption(r.EndDate),
		ClientID:    r.ClientID,
	}
}

type inviteUserRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"required,notblank"`
	Role     string `json:"role"     validate:"omitempty,oneof=ADMIN MANAGER EMPLOYEE"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

type updateUserRequest struct {
	Name   domain.Optional[string]            `json:"name"`
	Role   domain.Optional[domain.Role]       `json:"role"`
	Status domain.Optional[domain.UserStatus] `json:"status"`
}

func (r updateUserRequest) patch() domain.UserPatch {
	return domain.UserPatch{Name: r.Name, Role: r.Role, Status: r.Status}
}

// --- Response types ---

type userResponse struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}

type loginResponse struct {
	User    userResponse    `json:"user"`
	Session *domain.Session `json:"session"`
}

type inviteResponse struct {
	User              *domain.User `json:"user"`
	TemporaryPassword string       `json:"temporaryPassword,omitempty"`
}

// date accepts either a calendar date ("2006-01-02") or an RFC 3339 timestamp.
type date time.Time

func (d *date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(bytes.TrimSpace(b), &s); err != nil {
		return fmt.Errorf("date must be a string")
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = date(t.UTC())
			return nil
		}
	}
	return fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
}

func (d *date) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}

func dateOption(o domain.Optional[date]) domain.Optional[time.Time] {
	return domain.Optional[time.Time]{Set: o.Set, Null: o.Null, Value: time.Time(o.Value)}
}
