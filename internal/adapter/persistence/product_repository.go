package persistence

import (
	"context"
	"fmt"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/ports"
)

// ProductRepository persists products
type ProductRepository struct {
	store *Store
}

// NewProductRepository creates a new product repository
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) Insert(ctx context.Context, tx ports.Tx, p *domain.Product) error {
	query := `
		INSERT INTO products (id, name, designer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.ExecContext(ctx, r.store.q(query), p.ID, p.Name, p.DesignerID, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByID retrieves a Product by its ID
func (r *ProductRepository) FindByID(ctx context.Context, tx ports.Tx, id string) (*domain.Product, error) {
	return r.find(ctx, tx, id, "")
}

// FindForUpdate retrieves a Product and locks its row until the transaction ends
func (r *ProductRepository) FindForUpdate(ctx context.Context, tx ports.Tx, id string) (*domain.Product, error) {
	return r.find(ctx, tx, id, r.store.dialect.ForUpdate())
}

func (r *ProductRepository) find(ctx context.Context, tx ports.Tx, id, suffix string) (*domain.Product, error) {
	query := `SELECT id, name, designer_id, created_at, updated_at FROM products WHERE id = $1`

	var p domain.Product
	err := tx.QueryRowContext(ctx, r.store.q(query+suffix), id).Scan(&p.ID, &p.Name, &p.DesignerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, domain.EntityProduct, id)
	}

	return &p, nil
}

func (r *ProductRepository) Update(ctx context.Context, tx ports.Tx, p *domain.Product) error {
	query := `UPDATE products SET name = $2, designer_id = $3, updated_at = $4 WHERE id = $1`

	result, err := tx.ExecContext(ctx, r.store.q(query), p.ID, p.Name, p.DesignerID, p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return expectAffected(result, domain.EntityProduct, p.ID)
}

func (r *ProductRepository) Delete(ctx context.Context, tx ports.Tx, id string) error {
	result, err := tx.ExecContext(ctx, r.store.q(`DELETE FROM products WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return expectAffected(result, domain.EntityProduct, id)
}

var _ ports.Repository[*domain.Product] = (*ProductRepository)(nil)
