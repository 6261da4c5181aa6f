package erpclient

import (
	"encoding/json"
	"time"
)

// Optional is one field of a sparse update. The zero value is left out of the
// request; Null sends an explicit null, which clears a nullable field.
type Optional[T any] struct {
	set   bool
	null  bool
	value T
}

func Some[T any](v T) Optional[T] { return Optional[T]{set: true, value: v} }

func Null[T any]() Optional[T] { return Optional[T]{set: true, null: true} }

// IsZero makes `omitzero` drop unset fields.
func (o Optional[T]) IsZero() bool { return !o.set }

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ClientRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ClientSummary is a list item of GET /clients.
type ClientSummary struct {
	ClientRecord
	ProjectCount int64 `json:"projectCount"`
}

// ClientDetail is a client with its projects, newest first.
type ClientDetail struct {
	ClientRecord
	Projects []Project `json:"projects"`
}

type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Status      string        `json:"status"`
	StartDate   *time.Time    `json:"startDate"`
	EndDate     *time.Time    `json:"endDate"`
	ClientID    string        `json:"clientId"`
	Client      *ClientRecord `json:"client,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type DashboardStats struct {
	TotalClients        int64           `json:"totalClients"`
	ActiveProjects      int64           `json:"activeProjects"`
	CompletedProjects   int64           `json:"completedProjects"`
	NewClientsThisMonth int64           `json:"newClientsThisMonth"`
	RecentProjects      []Project       `json:"recentProjects"`
	RecentClients       []ClientSummary `json:"recentClients"`
}

// Session is the token issued by a successful login.
type Session struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresIn   int64     `json:"expiresIn"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ClientInput struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Status  string  `json:"status,omitempty"`
}

type ClientPatch struct {
	Name    Optional[string] `json:"name,omitzero"`
	Email   Optional[string] `json:"email,omitzero"`
	Phone   Optional[string] `json:"phone,omitzero"`
	Address Optional[string] `json:"address,omitzero"`
	Status  Optional[string] `json:"status,omitzero"`
}

type ProjectInput struct {
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	ClientID    string     `json:"clientId"`
}

type ProjectPatch struct {
	Name        Optional[string]    `json:"name,omitzero"`
	Description Optional[string]    `json:"description,omitzero"`
	Status      Optional[string]    `json:"status,omitzero"`
	StartDate   Optional[time.Time] `json:"startDate,omitzero"`
	EndDate     Optional[time.Time] `json:"endDate,omitzero"`
	ClientID    Optional[string]    `json:"clientId,omitzero"`
}

type UserInvite struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	Password string `json:"password,omitempty"`
}

type UserPatch struct {
	Name   Optional[string] `json:"name,omitzero"`
	Role   Optional[string] `json:"role,omitzero"`
	Status Optional[string] `json:"status,omitzero"`
}

// Invitation is the result of InviteUser. TemporaryPassword is only set when
// the server generated one.
type Invitation struct {
	User              User   `json:"user"`
	TemporaryPassword string `json:"temporaryPassword,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User    User    `json:"user"`
	Session Session `json:"session"`
}
