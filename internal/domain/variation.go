package domain

import "github.com/shopspring/decimal"

// VariationStatus represents the approval state of a variation
type VariationStatus string

const (
	VariationStatusPending  VariationStatus = "PENDING"
	VariationStatusApproved VariationStatus = "APPROVED"
	VariationStatusRejected VariationStatus = "REJECTED"
)

// Variation is a change to a project's contracted scope. Non-rejected
// amounts roll up into Project.VariationTotal.
type Variation struct {
	Base
	Numbered
	ProjectID string              `json:"projectId"`
	Title     string              `json:"title"`
	Status    VariationStatus     `json:"status"`
	Amount    decimal.NullDecimal `json:"amount"`
}

func (v *Variation) EntityType() EntityType { return EntityVariation }

func (v *Variation) Label() string { return v.Title }

func (v *Variation) Snapshot() Snapshot {
	return Snapshot{
		"number":    v.Number,
		"projectId": v.ProjectID,
		"title":     v.Title,
		"status":    string(v.Status),
		"amount":    formatMoney(v.Amount),
	}
}

// CreateVariation is the payload for creating a variation
type CreateVariation struct {
	ProjectID string              `json:"projectId"`
	Title     string              `json:"title"`
	Status    VariationStatus     `json:"status"`
	Amount    decimal.NullDecimal `json:"amount"`
}

func (c CreateVariation) Validate() error {
	if blank(c.ProjectID) {
		return NewValidationError("variation projectId is required")
	}
	if blank(c.Title) {
		return NewValidationError("variation title is required")
	}
	return validateMoney("variation amount", c.Amount)
}

func (c CreateVariation) Build() *Variation {
	status := c.Status
	if status == "" {
		status = VariationStatusPending
	}
	return &Variation{
		ProjectID: c.ProjectID,
		Title:     c.Title,
		Status:    status,
		Amount:    NullMoney(c.Amount),
	}
}

// VariationPatch is a sparse update of a variation
type VariationPatch struct {
	ProjectID Optional[string]              `json:"projectId"`
	Title     Optional[string]              `json:"title"`
	Status    Optional[VariationStatus]     `json:"status"`
	Amount    Optional[decimal.NullDecimal] `json:"amount"`
}

func (p VariationPatch) Validate() error {
	if p.ProjectID.Set && blank(p.ProjectID.Value) {
		return NewValidationError("variation projectId cannot be cleared")
	}
	if p.Title.Set && blank(p.Title.Value) {
		return NewValidationError("variation title cannot be cleared")
	}
	return validateMoney("variation amount", p.Amount.Value)
}

func (p VariationPatch) Apply(v *Variation) {
	p.ProjectID.ApplyTo(&v.ProjectID)
	p.Title.ApplyTo(&v.Title)
	p.Status.ApplyTo(&v.Status)
	if p.Amount.Set {
		v.Amount = NullMoney(p.Amount.Value)
	}
}
