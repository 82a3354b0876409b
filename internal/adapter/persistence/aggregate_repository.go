package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/ports"
)

// AggregateRepository implements ports.AggregateRepository. Table and column
// names come from domain.AggregateDependencies, never from request data.
type AggregateRepository struct {
	store *Store
}

// NewAggregateRepository creates a new aggregate repository
func NewAggregateRepository(store *Store) *AggregateRepository {
	return &AggregateRepository{store: store}
}

// LockParent selects the parent row with a write lock held to commit
func (r *AggregateRepository) LockParent(ctx context.Context, tx ports.Tx, dep domain.AggregateDependency, parentID string) error {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1%s`, dep.ParentTable, r.store.dialect.ForUpdate())

	var id string
	err := tx.QueryRowContext(ctx, r.store.q(query), parentID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError(dep.ParentType, parentID)
		}
		return fmt.Errorf("failed to lock %s %s: %w", dep.ParentType, parentID, err)
	}

	return nil
}

// Aggregate recomputes the rollup from every current qualifying child. The
// values are added with decimal arithmetic here rather than by SQL SUM, which
// SQLite evaluates in floating point. NULL values contribute nothing.
func (r *AggregateRepository) Aggregate(ctx context.Context, tx ports.Tx, dep domain.AggregateDependency, parentID string) (decimal.Decimal, error) {
	if dep.Func != domain.AggregateSum {
		return decimal.Zero, fmt.Errorf("unsupported aggregate function %q", dep.Func)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NOT NULL`,
		dep.ValueColumn, dep.ChildTable, dep.LinkColumn, dep.ValueColumn)
	if dep.Filter != "" {
		query += " AND " + dep.Filter
	}

	rows, err := tx.QueryContext(ctx, r.store.q(query), parentID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to aggregate %s: %w", dep.Name, err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var value decimal.Decimal
		if err := rows.Scan(&value); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan %s value: %w", dep.Name, err)
		}
		total = total.Add(value)
	}

	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating %s values: %w", dep.Name, err)
	}

	return domain.Money(total), nil
}

// Store writes the rollup value into the parent row
func (r *AggregateRepository) Store(ctx context.Context, tx ports.Tx, dep domain.AggregateDependency, parentID string, value decimal.Decimal, now time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, updated_at = $2 WHERE id = $3`, dep.ParentTable, dep.ParentColumn)

	result, err := tx.ExecContext(ctx, r.store.q(query), value.StringFixed(domain.MoneyScale), now.UTC(), parentID)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", dep.Name, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.NewNotFoundError(dep.ParentType, parentID)
	}

	return nil
}

var _ ports.AggregateRepository = (*AggregateRepository)(nil)
