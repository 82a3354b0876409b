package domain

import (
	"sort"
	"strings"
	"time"
)

// EntityType names a kind of business record
type EntityType string

const (
	EntityProject       EntityType = "project"
	EntityPurchaseOrder EntityType = "purchase_order"
	EntityQuote         EntityType = "quote"
	EntityNCR           EntityType = "ncr"
	EntityVariation     EntityType = "variation"
	EntityUser          EntityType = "user"
	EntityProduct       EntityType = "product"
)

// Actor identifies who performed a mutation. Both fields are optional.
type Actor struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Snapshot is the string-normalized view of an entity's audited fields,
// keyed by JSON field name.
type Snapshot map[string]string

// Diff returns the keys whose values differ between old and new, in a stable
// order.
func (s Snapshot) Diff(next Snapshot) []string {
	keys := make(map[string]struct{}, len(s)+len(next))
	for k := range s {
		keys[k] = struct{}{}
	}
	for k := range next {
		keys[k] = struct{}{}
	}

	var changed []string
	for k := range keys {
		if s[k] != next[k] {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}

// Record is implemented by every persisted business entity handled by the
// engine.
type Record interface {
	EntityType() EntityType
	RecordID() string
	Label() string
	Snapshot() Snapshot
	Stamp(id string, now time.Time)
	Touch(now time.Time)
}

// Sequenced is a Record that owns an allocated identifier.
type Sequenced interface {
	Record
	AssignNumber(number string)
	SequenceNumber() string
}

// Payload is a validated create request that builds a new, unsaved entity.
type Payload[E Record] interface {
	Validate() error
	Build() E
}

// Patch is a sparse update. Apply must only touch fields present in the patch.
type Patch[E Record] interface {
	Validate() error
	Apply(E)
}

// Base carries the identity and timestamps shared by all entities
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Base) RecordID() string { return b.ID }

// Stamp assigns identity and creation time to a new entity
func (b *Base) Stamp(id string, now time.Time) {
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
}

func (b *Base) Touch(now time.Time) { b.UpdatedAt = now }

// Numbered carries the allocated identifier. It has no patch counterpart, so
// it cannot change after creation.
type Numbered struct {
	Number string `json:"number"`
}

func (n *Numbered) AssignNumber(number string) { n.Number = number }

func (n *Numbered) SequenceNumber() string { return n.Number }

// Summary is the short description used for CREATE and DELETE audit records.
func Summary(r Record) string {
	label := r.Label()
	if s, ok := r.(Sequenced); ok && s.SequenceNumber() != "" {
		if label == "" {
			return s.SequenceNumber()
		}
		return s.SequenceNumber() + " " + label
	}
	return label
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func formatString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
