package domain

import "time"

// AuditAction is the kind of mutation an audit record describes
type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 200
)

// AuditRecord is one immutable entry of the audit trail. Seq is assigned by
// the store and breaks timestamp ties in insertion order.
type AuditRecord struct {
	ID         string            `json:"id"`
	Seq        int64             `json:"seq"`
	Timestamp  time.Time         `json:"timestamp"`
	ActorID    *string           `json:"actorId,omitempty"`
	ActorName  *string           `json:"actorName,omitempty"`
	Action     AuditAction       `json:"action"`
	EntityType EntityType        `json:"entityType"`
	EntityID   string            `json:"entityId"`
	Field      *string           `json:"field,omitempty"`
	OldValue   *string           `json:"oldValue,omitempty"`
	NewValue   *string           `json:"newValue,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// AuditFilter selects audit records for reading
type AuditFilter struct {
	EntityType EntityType `json:"entity,omitempty"`
	EntityID   string     `json:"entityId,omitempty"`
	Limit      int        `json:"limit"`
}

// Normalize clamps the limit into (0, MaxAuditLimit].
func (f AuditFilter) Normalize() AuditFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultAuditLimit
	}
	if f.Limit > MaxAuditLimit {
		f.Limit = MaxAuditLimit
	}
	return f
}
