package persistence

import (
	"context"
	"fmt"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/ports"
)

const variationColumns = `id, number, project_id, title, status, amount, created_at, updated_at`

// VariationRepository persists variations
type VariationRepository struct {
	store *Store
}

// NewVariationRepository creates a new variation repository
func NewVariationRepository(store *Store) *VariationRepository {
	return &VariationRepository{store: store}
}

func (r *VariationRepository) Insert(ctx context.Context, tx ports.Tx, v *domain.Variation) error {
	query := `
		INSERT INTO variations (` + variationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.ExecContext(ctx, r.store.q(query),
		v.ID,
		v.Number,
		v.ProjectID,
		v.Title,
		string(v.Status),
		moneyArg(v.Amount),
		v.CreatedAt.UTC(),
		v.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create variation: %w", err)
	}

	return nil
}

// FindByID retrieves a Variation by its ID
func (r *VariationRepository) FindByID(ctx context.Context, tx ports.Tx, id string) (*domain.Variation, error) {
	return r.find(ctx, tx, id, "")
}

// FindForUpdate retrieves a Variation and locks its row until the transaction ends
func (r *VariationRepository) FindForUpdate(ctx context.Context, tx ports.Tx, id string) (*domain.Variation, error) {
	return r.find(ctx, tx, id, r.store.dialect.ForUpdate())
}

func (r *VariationRepository) find(ctx context.Context, tx ports.Tx, id, suffix string) (*domain.Variation, error) {
	query := `SELECT ` + variationColumns + ` FROM variations WHERE id = $1`

	var v domain.Variation
	err := tx.QueryRowContext(ctx, r.store.q(query+suffix), id).Scan(
		&v.ID,
		&v.Number,
		&v.ProjectID,
		&v.Title,
		&v.Status,
		&v.Amount,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err, domain.EntityVariation, id)
	}

	return &v, nil
}

func (r *VariationRepository) Update(ctx context.Context, tx ports.Tx, v *domain.Variation) error {
	query := `
		UPDATE variations
		SET project_id = $2, title = $3, status = $4, amount = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, r.store.q(query),
		v.ID,
		v.ProjectID,
		v.Title,
		string(v.Status),
		moneyArg(v.Amount),
		v.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update variation: %w", err)
	}

	return expectAffected(result, domain.EntityVariation, v.ID)
}

func (r *VariationRepository) Delete(ctx context.Context, tx ports.Tx, id string) error {
	result, err := tx.ExecContext(ctx, r.store.q(`DELETE FROM variations WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("failed to delete variation: %w", err)
	}
	return expectAffected(result, domain.EntityVariation, id)
}

var _ ports.Repository[*domain.Variation] = (*VariationRepository)(nil)
