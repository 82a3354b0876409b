package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/ports"
)

// AggregateRecalculator keeps parent rollups equal to their children. Both
// methods run inside the mutating transaction.
type AggregateRecalculator interface {
	// Lock takes the parent row lock before the child is written
	Lock(ctx context.Context, tx ports.Tx, dep domain.AggregateDependency, parentID string) error

	// Recalculate recomputes the rollup from all qualifying children and
	// stores it on the parent, stamped with now
	Recalculate(ctx context.Context, tx ports.Tx, dep domain.AggregateDependency, parentID string, now time.Time) (decimal.Decimal, error)
}

// Recalculator performs full recomputation of rollups. It never adjusts a
// stored value by a delta.
type Recalculator struct {
	aggregates ports.AggregateRepository
}

// NewRecalculator creates a new recalculator
func NewRecalculator(aggregates ports.AggregateRepository) *Recalculator {
	return &Recalculator{aggregates: aggregates}
}

// Lock locks the parent row. A missing parent surfaces as NotFound so the
// caller can reject the child before writing anything.
func (r *Recalculator) Lock(ctx context.Context, tx ports.Tx, dep domain.AggregateDependency, parentID string) error {
	if err := r.aggregates.LockParent(ctx, tx, dep, parentID); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return err
		}
		return domain.NewAggregateRecalcFailure(dep.Name, parentID, err)
	}
	return nil
}

// Recalculate recomputes and stores the rollup for one parent
func (r *Recalculator) Recalculate(ctx context.Context, tx ports.Tx, dep domain.AggregateDependency, parentID string, now time.Time) (decimal.Decimal, error) {
	value, err := r.aggregates.Aggregate(ctx, tx, dep, parentID)
	if err != nil {
		return decimal.Zero, domain.NewAggregateRecalcFailure(dep.Name, parentID, err)
	}

	if err := r.aggregates.Store(ctx, tx, dep, parentID, value, now); err != nil {
		return decimal.Zero, domain.NewAggregateRecalcFailure(dep.Name, parentID, err)
	}

	return value, nil
}

var _ AggregateRecalculator = (*Recalculator)(nil)
