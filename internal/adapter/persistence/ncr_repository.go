package persistence

import (
	"context"
	"fmt"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/ports"
)

const ncrColumns = `id, number, project_id, title, description, status, cost_impact, created_at, updated_at`

// NCRRepository persists non-conformance reports
type NCRRepository struct {
	store *Store
}

// NewNCRRepository creates a new NCR repository
func NewNCRRepository(store *Store) *NCRRepository {
	return &NCRRepository{store: store}
}

// Insert saves a new NCR
func (r *NCRRepository) Insert(ctx context.Context, tx ports.Tx, n *domain.NCR) error {
	query := `
		INSERT INTO ncrs (` + ncrColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.ExecContext(ctx, r.store.q(query),
		n.ID,
		n.Number,
		n.ProjectID,
		n.Title,
		n.Description,
		string(n.Status),
		moneyArg(n.CostImpact),
		n.CreatedAt.UTC(),
		n.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create ncr: %w", err)
	}

	return nil
}

// FindByID retrieves a NCR by its ID
func (r *NCRRepository) FindByID(ctx context.Context, tx ports.Tx, id string) (*domain.NCR, error) {
	return r.find(ctx, tx, id, "")
}

// FindForUpdate retrieves a NCR and locks its row until the transaction ends
func (r *NCRRepository) FindForUpdate(ctx context.Context, tx ports.Tx, id string) (*domain.NCR, error) {
	return r.find(ctx, tx, id, r.store.dialect.ForUpdate())
}

func (r *NCRRepository) find(ctx context.Context, tx ports.Tx, id, suffix string) (*domain.NCR, error) {
	query := `SELECT ` + ncrColumns + ` FROM ncrs WHERE id = $1`

	var n domain.NCR
	err := tx.QueryRowContext(ctx, r.store.q(query+suffix), id).Scan(
		&n.ID,
		&n.Number,
		&n.ProjectID,
		&n.Title,
		&n.Description,
		&n.Status,
		&n.CostImpact,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err, domain.EntityNCR, id)
	}

	return &n, nil
}

// Update overwrites the mutable columns of an NCR
func (r *NCRRepository) Update(ctx context.Context, tx ports.Tx, n *domain.NCR) error {
	query := `
		UPDATE ncrs
		SET project_id = $2, title = $3, description = $4, status = $5, cost_impact = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, r.store.q(query),
		n.ID,
		n.ProjectID,
		n.Title,
		n.Description,
		string(n.Status),
		moneyArg(n.CostImpact),
		n.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update ncr: %w", err)
	}

	return expectAffected(result, domain.EntityNCR, n.ID)
}

// Delete removes an NCR
func (r *NCRRepository) Delete(ctx context.Context, tx ports.Tx, id string) error {
	result, err := tx.ExecContext(ctx, r.store.q(`DELETE FROM ncrs WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("failed to delete ncr: %w", err)
	}
	return expectAffected(result, domain.EntityNCR, id)
}

var _ ports.Repository[*domain.NCR] = (*NCRRepository)(nil)
