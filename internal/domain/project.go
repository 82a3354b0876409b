package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusOnHold    ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

// Project is the parent record for NCRs, variations and purchase orders.
// The three totals are rollups maintained by the engine; no patch field
// writes them.
type Project struct {
	Base
	Numbered
	Name               string          `json:"name"`
	Client             string          `json:"client"`
	Status             ProjectStatus   `json:"status"`
	CoordinatorID      *string         `json:"coordinatorId,omitempty"`
	StartDate          *time.Time      `json:"startDate,omitempty"`
	NCRCost            decimal.Decimal `json:"ncrCost"`
	VariationTotal     decimal.Decimal `json:"variationTotal"`
	PurchaseOrderTotal decimal.Decimal `json:"purchaseOrderTotal"`
}

func (p *Project) EntityType() EntityType { return EntityProject }

func (p *Project) Label() string { return p.Name }

func (p *Project) Snapshot() Snapshot {
	return Snapshot{
		"number":        p.Number,
		"name":          p.Name,
		"client":        p.Client,
		"status":        string(p.Status),
		"coordinatorId": formatString(p.CoordinatorID),
		"startDate":     formatDate(p.StartDate),
	}
}

// CreateProject is the payload for creating a project
type CreateProject struct {
	Name          string        `json:"name"`
	Client        string        `json:"client"`
	Status        ProjectStatus `json:"status"`
	CoordinatorID *string       `json:"coordinatorId"`
	StartDate     *time.Time    `json:"startDate"`
}

func (c CreateProject) Validate() error {
	if blank(c.Name) {
		return NewValidationError("project name is required")
	}
	return nil
}

func (c CreateProject) Build() *Project {
	status := c.Status
	if status == "" {
		status = ProjectStatusActive
	}
	return &Project{
		Name:          c.Name,
		Client:        c.Client,
		Status:        status,
		CoordinatorID: c.CoordinatorID,
		StartDate:     c.StartDate,
	}
}

// ProjectPatch is a sparse update of a project
type ProjectPatch struct {
	Name          Optional[string]        `json:"name"`
	Client        Optional[string]        `json:"client"`
	Status        Optional[ProjectStatus] `json:"status"`
	CoordinatorID Optional[*string]       `json:"coordinatorId"`
	StartDate     Optional[*time.Time]    `json:"startDate"`
}

func (p ProjectPatch) Validate() error {
	if p.Name.Set && blank(p.Name.Value) {
		return NewValidationError("project name cannot be cleared")
	}
	return nil
}

func (p ProjectPatch) Apply(project *Project) {
	p.Name.ApplyTo(&project.Name)
	p.Client.ApplyTo(&project.Client)
	p.Status.ApplyTo(&project.Status)
	p.CoordinatorID.ApplyTo(&project.CoordinatorID)
	p.StartDate.ApplyTo(&project.StartDate)
}
