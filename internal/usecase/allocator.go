package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/ports"
)

// Allocator issues human-readable sequence numbers. Allocation happens inside
// the caller's transaction, so a number is consumed only if the record that
// carries it commits.
type Allocator struct {
	counters   ports.CounterRepository
	sequences  domain.SequenceTable
	isConflict func(error) bool
}

// NewAllocator creates a new allocator over the given numbering table.
// isConflict recognizes store contention; a nil func treats no error as
// contention.
func NewAllocator(counters ports.CounterRepository, sequences domain.SequenceTable, isConflict func(error) bool) *Allocator {
	if isConflict == nil {
		isConflict = func(error) bool { return false }
	}
	return &Allocator{counters: counters, sequences: sequences, isConflict: isConflict}
}

// Sequenced reports whether entityType receives allocated numbers
func (a *Allocator) Sequenced(entityType domain.EntityType) bool {
	_, ok := a.sequences.Lookup(entityType)
	return ok
}

// Allocate increments the counter for entityType and returns the formatted
// identifier. The counter row stays locked until tx ends. Contention on the
// counter is an AllocationConflict; any other store error is returned as is.
func (a *Allocator) Allocate(ctx context.Context, tx ports.Tx, entityType domain.EntityType, now time.Time) (string, error) {
	spec, ok := a.sequences.Lookup(entityType)
	if !ok {
		return "", domain.NewValidationError("%s is not a sequenced entity type", entityType)
	}
	spec.EntityType = entityType

	counter, err := a.counters.Increment(ctx, tx, spec, now)
	if err != nil {
		if a.isConflict(err) {
			return "", domain.NewAllocationConflict(entityType, err)
		}
		return "", err
	}

	return counter.Current(), nil
}

// Current returns the last identifier issued for entityType, read outside any
// transaction.
func (a *Allocator) Current(ctx context.Context, entityType domain.EntityType) (string, error) {
	if !a.Sequenced(entityType) {
		return "", domain.NewValidationError("%s is not a sequenced entity type", entityType)
	}

	counter, err := a.counters.Find(ctx, entityType)
	if err != nil {
		return "", err
	}
	return counter.Current(), nil
}

// Counters lists every persisted counter
func (a *Allocator) Counters(ctx context.Context) ([]domain.SequenceCounter, error) {
	return a.counters.List(ctx)
}

// CheckCounters compares the numbering table with the persisted counters.
// Prefix and pad width are fixed by the first allocation, so a table that
// disagrees with an existing counter is rejected rather than silently
// ignored.
func (a *Allocator) CheckCounters(ctx context.Context) error {
	counters, err := a.counters.List(ctx)
	if err != nil {
		return err
	}

	var mismatched []string
	for _, counter := range counters {
		spec, ok := a.sequences.Lookup(counter.EntityType)
		if !ok {
			continue
		}
		if spec.Prefix != counter.Prefix || spec.PadWidth != counter.PadWidth {
			mismatched = append(mismatched, string(counter.EntityType))
		}
	}

	if len(mismatched) > 0 {
		return domain.NewValidationError(
			"sequence config disagrees with issued counters for %s: prefix and pad_width cannot change after the first allocation",
			strings.Join(mismatched, ", "))
	}
	return nil
}
