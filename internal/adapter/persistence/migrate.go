package persistence

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

type migrationFile struct {
	version int
	name    string
	path    string
	kind    string // up or down
}

// MigrationResult lists the migrations applied or reverted by one run
type MigrationResult struct {
	Applied []string
}

// Migrate applies every pending up migration for the store's dialect.
// Safe to call on every start.
func (s *Store) Migrate(ctx context.Context) (*MigrationResult, error) {
	if err := s.ensureSchemaMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure schema_migrations: %w", err)
	}

	files, err := s.loadMigrationFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	result := &MigrationResult{}
	for _, f := range files {
		if f.kind != "up" {
			continue
		}
		applied, err := s.alreadyApplied(ctx, f.version)
		if err != nil {
			return nil, err
		}
		if applied {
			continue
		}

		if err := s.execMigration(ctx, f, true); err != nil {
			return nil, fmt.Errorf("failed applying %s: %w", f.path, err)
		}
		result.Applied = append(result.Applied, fmt.Sprintf("%03d_%s", f.version, f.name))
	}

	return result, nil
}

// MigrateDown reverts applied migrations, newest first
func (s *Store) MigrateDown(ctx context.Context) (*MigrationResult, error) {
	if err := s.ensureSchemaMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure schema_migrations: %w", err)
	}

	files, err := s.loadMigrationFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	var downs []migrationFile
	for _, f := range files {
		if f.kind == "down" {
			downs = append(downs, f)
		}
	}
	sort.Slice(downs, func(i, j int) bool { return downs[i].version > downs[j].version })

	result := &MigrationResult{}
	for _, f := range downs {
		applied, err := s.alreadyApplied(ctx, f.version)
		if err != nil {
			return nil, err
		}
		if !applied {
			continue
		}

		if err := s.execMigration(ctx, f, false); err != nil {
			return nil, fmt.Errorf("failed reverting %s: %w", f.path, err)
		}
		result.Applied = append(result.Applied, fmt.Sprintf("%03d_%s", f.version, f.name))
	}

	return result, nil
}

func (s *Store) ensureSchemaMigrations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

func (s *Store) loadMigrationFiles() ([]migrationFile, error) {
	dir := "migrations/postgres"
	if s.dialect == DialectSQLite {
		dir = "migrations/sqlite"
	}

	entries, err := fs.ReadDir(migrationFS, dir)
	if err != nil {
		return nil, err
	}

	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".sql") {
			continue
		}

		kind := "up"
		if strings.HasSuffix(lower, ".down.sql") {
			kind = "down"
		}

		ver, migName, err := parseVersionAndName(name)
		if err != nil {
			continue
		}

		files = append(files, migrationFile{
			version: ver,
			name:    migName,
			path:    path.Join(dir, name),
			kind:    kind,
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// parseVersionAndName splits 001_create_core_tables.up.sql into 1 and
// create_core_tables.
func parseVersionAndName(filename string) (int, string, error) {
	parts := strings.SplitN(filename, "_", 2)
	if len(parts) < 2 {
		return 0, "", errors.New("invalid filename")
	}
	ver, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", errors.New("invalid version")
	}
	name := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(parts[1], ".sql"), ".up"), ".down")
	return ver, name, nil
}

func (s *Store) alreadyApplied(ctx context.Context, version int) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM schema_migrations WHERE version = $1`), version).Scan(&count)
	return count > 0, err
}

// execMigration runs one file and records it in a single transaction
func (s *Store) execMigration(ctx context.Context, f migrationFile, up bool) error {
	body, err := migrationFS.ReadFile(f.path)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return err
	}

	if up {
		_, err = tx.ExecContext(ctx, s.q(`INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, $3)`),
			f.version, f.name, time.Now().UTC())
	} else {
		_, err = tx.ExecContext(ctx, s.q(`DELETE FROM schema_migrations WHERE version = $1`), f.version)
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}
