package persistence

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fixora/projectledger/internal/domain"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// notFoundOr maps sql.ErrNoRows to a domain NotFound error and wraps
// everything else.
func notFoundOr(err error, entityType domain.EntityType, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(entityType, id)
	}
	return fmt.Errorf("failed to find %s: %w", entityType, err)
}

// expectAffected turns a zero-row write into a domain NotFound error
func expectAffected(result sql.Result, entityType domain.EntityType, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.NewNotFoundError(entityType, id)
	}
	return nil
}

// moneyArg binds an optional amount as fixed-scale text, or NULL. Both
// dialects store the exact digits: PostgreSQL casts into NUMERIC and SQLite
// keeps the TEXT column as written.
func moneyArg(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal.StringFixed(domain.MoneyScale)
}
