package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the state of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusIssued    PurchaseOrderStatus = "ISSUED"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

// PurchaseOrder is an order placed with a supplier, optionally charged to a
// project. Non-cancelled totals roll up into Project.PurchaseOrderTotal.
type PurchaseOrder struct {
	Base
	Numbered
	ProjectID *string             `json:"projectId,omitempty"`
	Supplier  string              `json:"supplier"`
	Status    PurchaseOrderStatus `json:"status"`
	Total     decimal.NullDecimal `json:"total"`
	OrderDate *time.Time          `json:"orderDate,omitempty"`
}

func (o *PurchaseOrder) EntityType() EntityType { return EntityPurchaseOrder }

func (o *PurchaseOrder) Label() string { return o.Supplier }

func (o *PurchaseOrder) Snapshot() Snapshot {
	return Snapshot{
		"number":    o.Number,
		"projectId": formatString(o.ProjectID),
		"supplier":  o.Supplier,
		"status":    string(o.Status),
		"total":     formatMoney(o.Total),
		"orderDate": formatDate(o.OrderDate),
	}
}

// CreatePurchaseOrder is the payload for raising a purchase order
type CreatePurchaseOrder struct {
	ProjectID *string             `json:"projectId"`
	Supplier  string              `json:"supplier"`
	Status    PurchaseOrderStatus `json:"status"`
	Total     decimal.NullDecimal `json:"total"`
	OrderDate *time.Time          `json:"orderDate"`
}

func (c CreatePurchaseOrder) Validate() error {
	if blank(c.Supplier) {
		return NewValidationError("purchase order supplier is required")
	}
	return validateMoney("purchase order total", c.Total)
}

func (c CreatePurchaseOrder) Build() *PurchaseOrder {
	status := c.Status
	if status == "" {
		status = PurchaseOrderStatusDraft
	}
	return &PurchaseOrder{
		ProjectID: c.ProjectID,
		Supplier:  c.Supplier,
		Status:    status,
		Total:     NullMoney(c.Total),
		OrderDate: c.OrderDate,
	}
}

// PurchaseOrderPatch is a sparse update of a purchase order
type PurchaseOrderPatch struct {
	ProjectID Optional[*string]             `json:"projectId"`
	Supplier  Optional[string]              `json:"supplier"`
	Status    Optional[PurchaseOrderStatus] `json:"status"`
	Total     Optional[decimal.NullDecimal] `json:"total"`
	OrderDate Optional[*time.Time]          `json:"orderDate"`
}

func (p PurchaseOrderPatch) Validate() error {
	if p.Supplier.Set && blank(p.Supplier.Value) {
		return NewValidationError("purchase order supplier cannot be cleared")
	}
	return validateMoney("purchase order total", p.Total.Value)
}

func (p PurchaseOrderPatch) Apply(o *PurchaseOrder) {
	p.ProjectID.ApplyTo(&o.ProjectID)
	p.Supplier.ApplyTo(&o.Supplier)
	p.Status.ApplyTo(&o.Status)
	if p.Total.Set {
		o.Total = NullMoney(p.Total.Value)
	}
	p.OrderDate.ApplyTo(&o.OrderDate)
}
