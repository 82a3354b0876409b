package persistence

import (
	"context"
	"fmt"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/ports"
)

const quoteColumns = `id, number, project_id, client, status, amount, valid_until, created_at, updated_at`

// QuoteRepository persists quotes
type QuoteRepository struct {
	store *Store
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(store *Store) *QuoteRepository {
	return &QuoteRepository{store: store}
}

func (r *QuoteRepository) Insert(ctx context.Context, tx ports.Tx, q *domain.Quote) error {
	query := `
		INSERT INTO quotes (` + quoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.ExecContext(ctx, r.store.q(query),
		q.ID,
		q.Number,
		q.ProjectID,
		q.Client,
		string(q.Status),
		moneyArg(q.Amount),
		q.ValidUntil,
		q.CreatedAt.UTC(),
		q.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}

	return nil
}

// FindByID retrieves a Quote by its ID
func (r *QuoteRepository) FindByID(ctx context.Context, tx ports.Tx, id string) (*domain.Quote, error) {
	return r.find(ctx, tx, id, "")
}

// FindForUpdate retrieves a Quote and locks its row until the transaction ends
func (r *QuoteRepository) FindForUpdate(ctx context.Context, tx ports.Tx, id string) (*domain.Quote, error) {
	return r.find(ctx, tx, id, r.store.dialect.ForUpdate())
}

func (r *QuoteRepository) find(ctx context.Context, tx ports.Tx, id, suffix string) (*domain.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`

	var q domain.Quote
	err := tx.QueryRowContext(ctx, r.store.q(query+suffix), id).Scan(
		&q.ID,
		&q.Number,
		&q.ProjectID,
		&q.Client,
		&q.Status,
		&q.Amount,
		&q.ValidUntil,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err, domain.EntityQuote, id)
	}

	return &q, nil
}

func (r *QuoteRepository) Update(ctx context.Context, tx ports.Tx, q *domain.Quote) error {
	query := `
		UPDATE quotes
		SET project_id = $2, client = $3, status = $4, amount = $5, valid_until = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, r.store.q(query),
		q.ID,
		q.ProjectID,
		q.Client,
		string(q.Status),
		moneyArg(q.Amount),
		q.ValidUntil,
		q.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update quote: %w", err)
	}

	return expectAffected(result, domain.EntityQuote, q.ID)
}

func (r *QuoteRepository) Delete(ctx context.Context, tx ports.Tx, id string) error {
	result, err := tx.ExecContext(ctx, r.store.q(`DELETE FROM quotes WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	return expectAffected(result, domain.EntityQuote, id)
}

var _ ports.Repository[*domain.Quote] = (*QuoteRepository)(nil)
