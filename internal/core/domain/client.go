package domain

import "time"

// ClientStatus is the commercial state of a Client.
type ClientStatus string

const (
	ClientLead     ClientStatus = "LEAD"
	ClientActive   ClientStatus = "ACTIVE"
	ClientInactive ClientStatus = "INACTIVE"
)

func (s ClientStatus) Valid() bool {
	switch s {
	case ClientLead, ClientActive, ClientInactive:
		return true
	}
	return false
}

// Client owns zero or more Projects. Deleting a Client deletes its Projects.
type Client struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     *string      `json:"phone"`
	Address   *string      `json:"address"`
	Status    ClientStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ClientSummary is a list row: the client plus how many projects reference it.
type ClientSummary struct {
	Client
	ProjectCount int64 `json:"projectCount"`
}

// ClientDetail is a client with its projects, most recent first.
type ClientDetail struct {
	Client
	Projects []Project `json:"projects"`
}

// ClientPatch is a sparse update. Phone and Address may be cleared with an
// explicit null; Name, Email and Status may not.
type ClientPatch struct {
	Name    Optional[string]
	Email   Optional[string]
	Phone   Optional[string]
	Address Optional[string]
	Status  Optional[ClientStatus]
}

// Empty reports whether the patch would change nothing.
func (p ClientPatch) Empty() bool {
	return !p.Name.Set && !p.Email.Set && !p.Phone.Set && !p.Address.Set && !p.Status.Set
}

// Apply writes the set fields of p onto c.
func (p ClientPatch) Apply(c *Client) {
	if v, ok := p.Name.Get(); ok {
		c.Name = v
	}
	if v, ok := p.Email.Get(); ok {
		c.Email = v
	}
	if p.Phone.Set {
		c.Phone = p.Phone.Ptr()
	}
	if p.Address.Set {
		c.Address = p.Address.Ptr()
	}
	if v, ok := p.Status.Get(); ok {
		c.Status = v
	}
}
