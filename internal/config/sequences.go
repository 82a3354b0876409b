package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fixora/projectledger/internal/domain"
)

// sequenceFile is the YAML layout of a numbering override file:
//
//	sequences:
//	  purchase_order:
//	    prefix: "PO-"
//	    pad_width: 5
//	    start: 1
type sequenceFile struct {
	Sequences map[string]domain.SequenceSpec `yaml:"sequences"`
}

// LoadSequences returns the default numbering table with the entries from
// path layered on top. An empty path returns the defaults.
//
// Prefix and pad_width are copied into the counter row by the first
// allocation and never change afterwards; start only seeds that row.
// Allocator.CheckCounters rejects a table that disagrees with issued counters.
func LoadSequences(path string) (domain.SequenceTable, error) {
	table := domain.DefaultSequences()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sequence config: %w", err)
	}

	return mergeSequences(table, data)
}

func mergeSequences(table domain.SequenceTable, data []byte) (domain.SequenceTable, error) {
	var file sequenceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sequence config: %w", err)
	}

	for name, spec := range file.Sequences {
		entityType := domain.EntityType(name)
		if !knownEntityType(entityType) {
			return nil, fmt.Errorf("sequence config: unknown entity type %q", name)
		}
		spec.EntityType = entityType
		table[entityType] = spec
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func knownEntityType(t domain.EntityType) bool {
	switch t {
	case domain.EntityProject, domain.EntityPurchaseOrder, domain.EntityQuote,
		domain.EntityNCR, domain.EntityVariation, domain.EntityUser, domain.EntityProduct:
		return true
	}
	return false
}
