package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus represents the state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusDeclined QuoteStatus = "DECLINED"
)

// Quote is a priced offer to a client
type Quote struct {
	Base
	Numbered
	ProjectID  *string             `json:"projectId,omitempty"`
	Client     string              `json:"client"`
	Status     QuoteStatus         `json:"status"`
	Amount     decimal.NullDecimal `json:"amount"`
	ValidUntil *time.Time          `json:"validUntil,omitempty"`
}

func (q *Quote) EntityType() EntityType { return EntityQuote }

func (q *Quote) Label() string { return q.Client }

func (q *Quote) Snapshot() Snapshot {
	return Snapshot{
		"number":     q.Number,
		"projectId":  formatString(q.ProjectID),
		"client":     q.Client,
		"status":     string(q.Status),
		"amount":     formatMoney(q.Amount),
		"validUntil": formatDate(q.ValidUntil),
	}
}

// CreateQuote is the payload for creating a quote
type CreateQuote struct {
	ProjectID  *string             `json:"projectId"`
	Client     string              `json:"client"`
	Status     QuoteStatus         `json:"status"`
	Amount     decimal.NullDecimal `json:"amount"`
	ValidUntil *time.Time          `json:"validUntil"`
}

func (c CreateQuote) Validate() error {
	if blank(c.Client) {
		return NewValidationError("quote client is required")
	}
	return validateMoney("quote amount", c.Amount)
}

func (c CreateQuote) Build() *Quote {
	status := c.Status
	if status == "" {
		status = QuoteStatusDraft
	}
	return &Quote{
		ProjectID:  c.ProjectID,
		Client:     c.Client,
		Status:     status,
		Amount:     NullMoney(c.Amount),
		ValidUntil: c.ValidUntil,
	}
}

// QuotePatch is a sparse update of a quote
type QuotePatch struct {
	ProjectID  Optional[*string]             `json:"projectId"`
	Client     Optional[string]              `json:"client"`
	Status     Optional[QuoteStatus]         `json:"status"`
	Amount     Optional[decimal.NullDecimal] `json:"amount"`
	ValidUntil Optional[*time.Time]          `json:"validUntil"`
}

func (p QuotePatch) Validate() error {
	if p.Client.Set && blank(p.Client.Value) {
		return NewValidationError("quote client cannot be cleared")
	}
	return validateMoney("quote amount", p.Amount.Value)
}

func (p QuotePatch) Apply(q *Quote) {
	p.ProjectID.ApplyTo(&q.ProjectID)
	p.Client.ApplyTo(&q.Client)
	p.Status.ApplyTo(&q.Status)
	if p.Amount.Set {
		q.Amount = NullMoney(p.Amount.Value)
	}
	p.ValidUntil.ApplyTo(&q.ValidUntil)
}
