package domain

import "time"

// ProjectStatus is the delivery state of a Project.
type ProjectStatus string

const (
	ProjectPlanned    ProjectStatus = "PLANNED"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectCompleted  ProjectStatus = "COMPLETED"
	ProjectCancelled  ProjectStatus = "CANCELLED"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanned, ProjectInProgress, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// Project always references exactly one existing Client.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Status      ProjectStatus `json:"status"`
	StartDate   *time.Time    `json:"startDate"`
	EndDate     *time.Time    `json:"endDate"`
	ClientID    string        `json:"clientId"`
	Client      *Client       `json:"client,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// CheckDates rejects an end date that precedes the start date.
func (p *Project) CheckDates() error {
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return Validationf("endDate must not be before startDate")
	}
	return nil
}

// ProjectPatch is a sparse update. Description and the dates may be cleared
// with an explicit null.
type ProjectPatch struct {
	Name        Optional[string]
	Description Optional[string]
	Status      Optional[ProjectStatus]
	StartDate   Optional[time.Time]
	EndDate     Optional[time.Time]
	ClientID    Optional[string]
}

// Empty reports whether the patch would change nothing.
func (p ProjectPatch) Empty() bool {
	return !p.Name.Set && !p.Description.Set && !p.Status.Set &&
		!p.StartDate.Set && !p.EndDate.Set && !p.ClientID.Set
}

// Apply writes the set fields of p onto pr.
func (p ProjectPatch) Apply(pr *Project) {
	if v, ok := p.Name.Get(); ok {
		pr.Name = v
	}
	if p.Description.Set {
		pr.Description = p.Description.Ptr()
	}
	if v, ok := p.Status.Get(); ok {
		pr.Status = v
	}
	if p.StartDate.Set {
		pr.StartDate = p.StartDate.Ptr()
	}
	if p.EndDate.Set {
		pr.EndDate = p.EndDate.Ptr()
	}
	if v, ok := p.ClientID.Get(); ok && v != pr.ClientID {
		pr.ClientID = v
		pr.Client = nil
	}
}
