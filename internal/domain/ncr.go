package domain

import "github.com/shopspring/decimal"

// NCRStatus represents the state of a non-conformance report
type NCRStatus string

const (
	NCRStatusOpen          NCRStatus = "OPEN"
	NCRStatusInvestigating NCRStatus = "INVESTIGATING"
	NCRStatusClosed        NCRStatus = "CLOSED"
)

// NCR is a non-conformance report raised against a project. Its cost impact
// rolls up into Project.NCRCost.
type NCR struct {
	Base
	Numbered
	ProjectID   string              `json:"projectId"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      NCRStatus           `json:"status"`
	CostImpact  decimal.NullDecimal `json:"costImpact"`
}

func (n *NCR) EntityType() EntityType { return EntityNCR }

func (n *NCR) Label() string { return n.Title }

func (n *NCR) Snapshot() Snapshot {
	return Snapshot{
		"number":      n.Number,
		"projectId":   n.ProjectID,
		"title":       n.Title,
		"description": n.Description,
		"status":      string(n.Status),
		"costImpact":  formatMoney(n.CostImpact),
	}
}

// CreateNCR is the payload for raising an NCR
type CreateNCR struct {
	ProjectID   string              `json:"projectId"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      NCRStatus           `json:"status"`
	CostImpact  decimal.NullDecimal `json:"costImpact"`
}

func (c CreateNCR) Validate() error {
	if blank(c.ProjectID) {
		return NewValidationError("ncr projectId is required")
	}
	if blank(c.Title) {
		return NewValidationError("ncr title is required")
	}
	return validateMoney("ncr costImpact", c.CostImpact)
}

func (c CreateNCR) Build() *NCR {
	status := c.Status
	if status == "" {
		status = NCRStatusOpen
	}
	return &NCR{
		ProjectID:   c.ProjectID,
		Title:       c.Title,
		Description: c.Description,
		Status:      status,
		CostImpact:  NullMoney(c.CostImpact),
	}
}

// NCRPatch is a sparse update of an NCR
type NCRPatch struct {
	ProjectID   Optional[string]              `json:"projectId"`
	Title       Optional[string]              `json:"title"`
	Description Optional[string]              `json:"description"`
	Status      Optional[NCRStatus]           `json:"status"`
	CostImpact  Optional[decimal.NullDecimal] `json:"costImpact"`
}

func (p NCRPatch) Validate() error {
	if p.ProjectID.Set && blank(p.ProjectID.Value) {
		return NewValidationError("ncr projectId cannot be cleared")
	}
	if p.Title.Set && blank(p.Title.Value) {
		return NewValidationError("ncr title cannot be cleared")
	}
	return validateMoney("ncr costImpact", p.CostImpact.Value)
}

func (p NCRPatch) Apply(n *NCR) {
	p.ProjectID.ApplyTo(&n.ProjectID)
	p.Title.ApplyTo(&n.Title)
	p.Description.ApplyTo(&n.Description)
	p.Status.ApplyTo(&n.Status)
	if p.CostImpact.Set {
		n.CostImpact = NullMoney(p.CostImpact.Value)
	}
}
