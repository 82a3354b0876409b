package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/fixora/projectledger/internal/ports"
)

// Dialect selects the SQL flavour of the underlying database
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// Rebind rewrites $n placeholders for the dialect. SQLite's ?n form binds by
// explicit index, so argument order matches PostgreSQL.
func (d Dialect) Rebind(query string) string {
	if d == DialectSQLite {
		return placeholderPattern.ReplaceAllString(query, "?$1")
	}
	return query
}

// ForUpdate is the row-lock suffix for SELECTs. SQLite has none; the store
// funnels SQLite through a single connection so writers are already
// serialized.
func (d Dialect) ForUpdate() string {
	if d == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// ForShare is the shared-lock suffix for SELECTs: the row may still be read
// and shared-locked by others but not updated or deleted.
func (d Dialect) ForShare() string {
	if d == DialectPostgres {
		return " FOR SHARE"
	}
	return ""
}

// Options tunes the connection pool
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
}

// Store owns the connection pool. It is opened once at process start and
// closed at shutdown.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to PostgreSQL using a lib/pq DSN or URL
func Open(ctx context.Context, dsn string, opts Options) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{db: db, dialect: DialectPostgres}, nil
}

// OpenSQLite creates or opens a SQLite database at path.
//
// The connection is configured with:
//   - WAL journal for concurrent reads
//   - 5-second busy timeout
//   - foreign key enforcement
//   - a single pooled connection, so transactions run one at a time
func OpenSQLite(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db, dialect: DialectSQLite}, nil
}

// Close closes the connection pool
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying pool
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL flavour of the store
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Begin opens a transaction. PostgreSQL runs at READ COMMITTED; consistency
// comes from row locks taken by the repositories.
func (s *Store) Begin(ctx context.Context) (ports.TxHandle, error) {
	var opts *sql.TxOptions
	if s.dialect == DialectPostgres {
		opts = &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}

	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// IsConflict reports serialization failures, deadlocks and lock contention
func (s *Store) IsConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
		return false
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}

	return false
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

var _ ports.Transactor = (*Store)(nil)
