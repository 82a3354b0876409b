package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/ports"
)

type reference struct {
	table  string
	column string
}

// protectedReferences lists, per entity type, the columns that must not point
// at a deleted row.
var protectedReferences = map[domain.EntityType][]reference{
	domain.EntityUser: {
		{table: "projects", column: "coordinator_id"},
		{table: "products", column: "designer_id"},
	},
	domain.EntityProject: {
		{table: "ncrs", column: "project_id"},
		{table: "variations", column: "project_id"},
		{table: "purchase_orders", column: "project_id"},
		{table: "quotes", column: "project_id"},
	},
}

// ReferenceGuard implements ports.ReferenceGuard by counting rows in the
// protected reference columns.
type ReferenceGuard struct {
	store *Store
}

// NewReferenceGuard creates a new reference guard
func NewReferenceGuard(store *Store) *ReferenceGuard {
	return &ReferenceGuard{store: store}
}

// CountReferences returns how many rows still reference id
func (g *ReferenceGuard) CountReferences(ctx context.Context, tx ports.Tx, entityType domain.EntityType, id string) (int, error) {
	total := 0
	for _, ref := range protectedReferences[entityType] {
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, ref.table, ref.column)

		var count int
		if err := tx.QueryRowContext(ctx, g.store.q(query), id).Scan(&count); err != nil {
			return 0, fmt.Errorf("failed to count %s.%s references: %w", ref.table, ref.column, err)
		}
		total += count
	}
	return total, nil
}

// LockReferenced shares-locks the target row of a link field so it cannot be
// deleted before the referencing write commits
func (g *ReferenceGuard) LockReferenced(ctx context.Context, tx ports.Tx, ref domain.Reference, id string) error {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1%s`, ref.TargetTable, g.store.dialect.ForShare())

	var found string
	if err := tx.QueryRowContext(ctx, g.store.q(query), id).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError(ref.TargetType, id)
		}
		return fmt.Errorf("failed to lock %s %s: %w", ref.TargetType, id, err)
	}

	return nil
}

var _ ports.ReferenceGuard = (*ReferenceGuard)(nil)
