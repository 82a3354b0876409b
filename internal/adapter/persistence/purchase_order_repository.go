package persistence

import (
	"context"
	"fmt"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/ports"
)

const purchaseOrderColumns = `id, number, project_id, supplier, status, total, order_date, created_at, updated_at`

// PurchaseOrderRepository persists purchase orders
type PurchaseOrderRepository struct {
	store *Store
}

// NewPurchaseOrderRepository creates a new purchase order repository
func NewPurchaseOrderRepository(store *Store) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{store: store}
}

func (r *PurchaseOrderRepository) Insert(ctx context.Context, tx ports.Tx, o *domain.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (` + purchaseOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.ExecContext(ctx, r.store.q(query),
		o.ID,
		o.Number,
		o.ProjectID,
		o.Supplier,
		string(o.Status),
		moneyArg(o.Total),
		o.OrderDate,
		o.CreatedAt.UTC(),
		o.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create purchase order: %w", err)
	}

	return nil
}

// FindByID retrieves a PurchaseOrder by its ID
func (r *PurchaseOrderRepository) FindByID(ctx context.Context, tx ports.Tx, id string) (*domain.PurchaseOrder, error) {
	return r.find(ctx, tx, id, "")
}

// FindForUpdate retrieves a PurchaseOrder and locks its row until the transaction ends
func (r *PurchaseOrderRepository) FindForUpdate(ctx context.Context, tx ports.Tx, id string) (*domain.PurchaseOrder, error) {
	return r.find(ctx, tx, id, r.store.dialect.ForUpdate())
}

func (r *PurchaseOrderRepository) find(ctx context.Context, tx ports.Tx, id, suffix string) (*domain.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + ` FROM purchase_orders WHERE id = $1`

	var o domain.PurchaseOrder
	err := tx.QueryRowContext(ctx, r.store.q(query+suffix), id).Scan(
		&o.ID,
		&o.Number,
		&o.ProjectID,
		&o.Supplier,
		&o.Status,
		&o.Total,
		&o.OrderDate,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err, domain.EntityPurchaseOrder, id)
	}

	return &o, nil
}

func (r *PurchaseOrderRepository) Update(ctx context.Context, tx ports.Tx, o *domain.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders
		SET project_id = $2, supplier = $3, status = $4, total = $5, order_date = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, r.store.q(query),
		o.ID,
		o.ProjectID,
		o.Supplier,
		string(o.Status),
		moneyArg(o.Total),
		o.OrderDate,
		o.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update purchase order: %w", err)
	}

	return expectAffected(result, domain.EntityPurchaseOrder, o.ID)
}

func (r *PurchaseOrderRepository) Delete(ctx context.Context, tx ports.Tx, id string) error {
	result, err := tx.ExecContext(ctx, r.store.q(`DELETE FROM purchase_orders WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("failed to delete purchase order: %w", err)
	}
	return expectAffected(result, domain.EntityPurchaseOrder, id)
}

var _ ports.Repository[*domain.PurchaseOrder] = (*PurchaseOrderRepository)(nil)
