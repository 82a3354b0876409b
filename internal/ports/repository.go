package ports

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fixora/projectledger/internal/domain"
)

// Tx is the statement surface of an open transaction. *sql.Tx satisfies it.
type Tx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TxHandle is an open transaction that can be finished
type TxHandle interface {
	Tx
	Commit() error
	Rollback() error
}

// Transactor opens transactions against the persistent store
type Transactor interface {
	// Begin opens a transaction bound to ctx
	Begin(ctx context.Context) (TxHandle, error)

	// IsConflict reports whether err is a serialization or lock conflict
	// that a fresh attempt of the whole transaction may not hit again.
	IsConflict(err error) bool
}

// Repository persists one entity type. All methods run inside the caller's
// transaction.
type Repository[E domain.Record] interface {
	// Insert saves a new entity
	Insert(ctx context.Context, tx Tx, entity E) error

	// FindByID loads an entity, returning a domain NotFound error if absent
	FindByID(ctx context.Context, tx Tx, id string) (E, error)

	// FindForUpdate loads an entity and holds its row lock until tx ends
	FindForUpdate(ctx context.Context, tx Tx, id string) (E, error)

	// Update overwrites the mutable columns of an existing entity
	Update(ctx context.Context, tx Tx, entity E) error

	// Delete removes an entity
	Delete(ctx context.Context, tx Tx, id string) error
}

// CounterRepository owns the sequence_counters table
type CounterRepository interface {
	// Increment atomically bumps the counter for spec.EntityType, creating it
	// at spec.Start when absent, and returns the row after the change.
	Increment(ctx context.Context, tx Tx, spec domain.SequenceSpec, now time.Time) (domain.SequenceCounter, error)

	// Find returns the counter for entityType, or a NotFound error
	Find(ctx context.Context, entityType domain.EntityType) (domain.SequenceCounter, error)

	// List returns every counter ordered by entity type
	List(ctx context.Context) ([]domain.SequenceCounter, error)
}

// AggregateRepository reads children and writes parent rollups
type AggregateRepository interface {
	// LockParent takes a write lock on the parent row for the rest of the
	// transaction, returning a NotFound error if the parent does not exist.
	LockParent(ctx context.Context, tx Tx, dep domain.AggregateDependency, parentID string) error

	// Aggregate applies dep.Func over the current qualifying children
	Aggregate(ctx context.Context, tx Tx, dep domain.AggregateDependency, parentID string) (decimal.Decimal, error)

	// Store writes value into the parent's rollup column and stamps the
	// parent's updated_at with now
	Store(ctx context.Context, tx Tx, dep domain.AggregateDependency, parentID string, value decimal.Decimal, now time.Time) error
}

// AuditRepository persists the audit trail. It exposes no update or delete.
type AuditRepository interface {
	// Append writes records inside tx, isolated by a savepoint so a rejected
	// write leaves the rest of the transaction usable.
	Append(ctx context.Context, tx Tx, records []*domain.AuditRecord) error

	// List retrieves audit records newest-first
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditRecord, error)
}

// ReferenceGuard protects link fields in both directions
type ReferenceGuard interface {
	// CountReferences counts records that still depend on an entity about to
	// be deleted
	CountReferences(ctx context.Context, tx Tx, entityType domain.EntityType, id string) (int, error)

	// LockReferenced checks that the row named by a link field exists and
	// keeps it from being deleted until tx ends. A missing row is a domain
	// NotFound error.
	LockReferenced(ctx context.Context, tx Tx, ref domain.Reference, id string) error
}
