package domain

import "time"

// Role controls what a User may do once authenticated.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// UserStatus gates access: only ACTIVE users get past the auth gate.
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
	UserPending  UserStatus = "PENDING"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserInactive, UserPending:
		return true
	}
	return false
}

// User is an application account. Email is unique; ExternalID is the subject
// the identity provider knows the account by.
type User struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Role       Role       `json:"role"`
	Status     UserStatus `json:"status"`
	ExternalID string     `json:"-"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// UserPatch is a sparse update. Only Set fields are written.
type UserPatch struct {
	Name   Optional[string]
	Role   Optional[Role]
	Status Optional[UserStatus]
}

// Apply writes the set fields of p onto u.
func (p UserPatch) Apply(u *User) {
	if v, ok := p.Name.Get(); ok {
		u.Name = v
	}
	if v, ok := p.Role.Get(); ok {
		u.Role = v
	}
	if v, ok := p.Status.Get(); ok {
		u.Status = v
	}
}

// Empty reports whether the patch would change nothing.
func (p UserPatch) Empty() bool {
	return !p.Name.Set && !p.Role.Set && !p.Status.Set
}
