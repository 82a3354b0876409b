package domain

import (
	"fmt"
	"strconv"
)

// SequenceSpec is the static numbering rule for one entity type.
type SequenceSpec struct {
	EntityType EntityType `json:"entity_type" yaml:"-"`
	Prefix     string     `json:"prefix" yaml:"prefix"`
	PadWidth   int        `json:"pad_width" yaml:"pad_width"`
	Start      int64      `json:"start" yaml:"start"`
}

// Format renders value with the rule's prefix and zero padding. Values wider
// than PadWidth keep all their digits.
func (s SequenceSpec) Format(value int64) string {
	return FormatSequence(s.Prefix, s.PadWidth, value)
}

// FormatSequence renders prefix + value zero-padded to width digits.
func FormatSequence(prefix string, width int, value int64) string {
	if width <= 0 {
		return prefix + strconv.FormatInt(value, 10)
	}
	return fmt.Sprintf("%s%0*d", prefix, width, value)
}

// SequenceTable maps entity types to their numbering rules
type SequenceTable map[EntityType]SequenceSpec

// DefaultSequences is the numbering used unless overridden by configuration.
func DefaultSequences() SequenceTable {
	return SequenceTable{
		EntityProject:       {EntityType: EntityProject, Start: 100001},
		EntityPurchaseOrder: {EntityType: EntityPurchaseOrder, Prefix: "PO-", PadWidth: 4, Start: 1001},
		EntityQuote:         {EntityType: EntityQuote, Prefix: "Q-", PadWidth: 4, Start: 1001},
		EntityNCR:           {EntityType: EntityNCR, Prefix: "NCR-", PadWidth: 4, Start: 1},
		EntityVariation:     {EntityType: EntityVariation, Prefix: "VAR-", PadWidth: 4, Start: 1},
	}
}

// Lookup returns the numbering rule for entityType and whether the type is sequenced.
func (t SequenceTable) Lookup(entityType EntityType) (SequenceSpec, bool) {
	spec, ok := t[entityType]
	return spec, ok
}

// Validate rejects specs that could never produce a usable identifier.
func (t SequenceTable) Validate() error {
	for entityType, spec := range t {
		if spec.Start < 0 {
			return fmt.Errorf("sequence %s: start must not be negative", entityType)
		}
		if spec.PadWidth < 0 || spec.PadWidth > 18 {
			return fmt.Errorf("sequence %s: pad_width out of range", entityType)
		}
	}
	return nil
}

// SequenceCounter is the persisted state of one entity type's counter.
type SequenceCounter struct {
	EntityType EntityType `json:"entity_type"`
	Prefix     string     `json:"prefix"`
	PadWidth   int        `json:"pad_width"`
	LastValue  int64      `json:"last_value"`
}

// Current renders the last identifier issued by this counter.
func (c SequenceCounter) Current() string {
	return FormatSequence(c.Prefix, c.PadWidth, c.LastValue)
}
