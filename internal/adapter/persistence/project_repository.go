package persistence

import (
	"context"
	"fmt"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/ports"
)

const projectColumns = `id, number, name, client, status, coordinator_id, start_date,
	ncr_cost, variation_total, purchase_order_total, created_at, updated_at`

// ProjectRepository persists projects
type ProjectRepository struct {
	store *Store
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(store *Store) *ProjectRepository {
	return &ProjectRepository{store: store}
}

// Insert saves a new project with zeroed rollups
func (r *ProjectRepository) Insert(ctx context.Context, tx ports.Tx, p *domain.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := tx.ExecContext(ctx, r.store.q(query),
		p.ID,
		p.Number,
		p.Name,
		p.Client,
		string(p.Status),
		p.CoordinatorID,
		p.StartDate,
		p.NCRCost.StringFixed(domain.MoneyScale),
		p.VariationTotal.StringFixed(domain.MoneyScale),
		p.PurchaseOrderTotal.StringFixed(domain.MoneyScale),
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// FindByID retrieves a Project by its ID
func (r *ProjectRepository) FindByID(ctx context.Context, tx ports.Tx, id string) (*domain.Project, error) {
	return r.find(ctx, tx, id, "")
}

// FindForUpdate retrieves a Project and locks its row until the transaction ends
func (r *ProjectRepository) FindForUpdate(ctx context.Context, tx ports.Tx, id string) (*domain.Project, error) {
	return r.find(ctx, tx, id, r.store.dialect.ForUpdate())
}

func (r *ProjectRepository) find(ctx context.Context, tx ports.Tx, id, suffix string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(tx.QueryRowContext(ctx, r.store.q(query+suffix), id))
	if err != nil {
		return nil, notFoundOr(err, domain.EntityProject, id)
	}
	return p, nil
}

// Update writes the caller-editable columns. The rollup columns belong to
// the aggregate repository and are never written here.
func (r *ProjectRepository) Update(ctx context.Context, tx ports.Tx, p *domain.Project) error {
	query := `
		UPDATE projects
		SET name = $2, client = $3, status = $4, coordinator_id = $5, start_date = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, r.store.q(query),
		p.ID,
		p.Name,
		p.Client,
		string(p.Status),
		p.CoordinatorID,
		p.StartDate,
		p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	return expectAffected(result, domain.EntityProject, p.ID)
}

// Delete removes a project
func (r *ProjectRepository) Delete(ctx context.Context, tx ports.Tx, id string) error {
	result, err := tx.ExecContext(ctx, r.store.q(`DELETE FROM projects WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return expectAffected(result, domain.EntityProject, id)
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID,
		&p.Number,
		&p.Name,
		&p.Client,
		&p.Status,
		&p.CoordinatorID,
		&p.StartDate,
		&p.NCRCost,
		&p.VariationTotal,
		&p.PurchaseOrderTotal,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

var _ ports.Repository[*domain.Project] = (*ProjectRepository)(nil)
