package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/ports"
)

// CounterRepository implements ports.CounterRepository on sequence_counters
type CounterRepository struct {
	store *Store
}

// NewCounterRepository creates a new counter repository
func NewCounterRepository(store *Store) *CounterRepository {
	return &CounterRepository{store: store}
}

// Increment upserts the counter row. The conflict branch is a single
// read-modify-write statement, and the row lock it takes is held until the
// caller's transaction ends, so concurrent allocations for the same entity
// type queue behind each other while other types proceed.
func (r *CounterRepository) Increment(ctx context.Context, tx ports.Tx, spec domain.SequenceSpec, now time.Time) (domain.SequenceCounter, error) {
	query := `
		INSERT INTO sequence_counters (entity_type, prefix, pad_width, last_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (entity_type) DO UPDATE
		SET last_value = sequence_counters.last_value + 1,
		    updated_at = $5
		RETURNING entity_type, prefix, pad_width, last_value
	`

	var counter domain.SequenceCounter
	err := tx.QueryRowContext(ctx, r.store.q(query),
		string(spec.EntityType),
		spec.Prefix,
		spec.PadWidth,
		spec.Start,
		now.UTC(),
	).Scan(
		&counter.EntityType,
		&counter.Prefix,
		&counter.PadWidth,
		&counter.LastValue,
	)
	if err != nil {
		return domain.SequenceCounter{}, fmt.Errorf("failed to increment %s counter: %w", spec.EntityType, err)
	}

	return counter, nil
}

// Find returns the counter for one entity type
func (r *CounterRepository) Find(ctx context.Context, entityType domain.EntityType) (domain.SequenceCounter, error) {
	query := `
		SELECT entity_type, prefix, pad_width, last_value
		FROM sequence_counters
		WHERE entity_type = $1
	`

	var counter domain.SequenceCounter
	err := r.store.db.QueryRowContext(ctx, r.store.q(query), string(entityType)).Scan(
		&counter.EntityType,
		&counter.Prefix,
		&counter.PadWidth,
		&counter.LastValue,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SequenceCounter{}, domain.NewNotFoundError("sequence_counter", string(entityType))
		}
		return domain.SequenceCounter{}, fmt.Errorf("failed to find counter: %w", err)
	}

	return counter, nil
}

// List returns every counter
func (r *CounterRepository) List(ctx context.Context) ([]domain.SequenceCounter, error) {
	query := `
		SELECT entity_type, prefix, pad_width, last_value
		FROM sequence_counters
		ORDER BY entity_type ASC
	`

	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query counters: %w", err)
	}
	defer rows.Close()

	var counters []domain.SequenceCounter
	for rows.Next() {
		var counter domain.SequenceCounter
		if err := rows.Scan(&counter.EntityType, &counter.Prefix, &counter.PadWidth, &counter.LastValue); err != nil {
			return nil, fmt.Errorf("failed to scan counter: %w", err)
		}
		counters = append(counters, counter)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counters: %w", err)
	}

	return counters, nil
}

var _ ports.CounterRepository = (*CounterRepository)(nil)
