package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/ports"
)

const auditSavepoint = "audit_write"

// AuditRepository implements ports.AuditRepository on audit_log. It only
// appends and reads.
type AuditRepository struct {
	store *Store
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// Append inserts records under a savepoint. When an insert is rejected the
// savepoint is rolled back and a domain AuditWrite error is returned, leaving
// tx usable for commit. If the savepoint itself cannot be restored the
// transaction is unusable and a store error is returned instead.
func (r *AuditRepository) Append(ctx context.Context, tx ports.Tx, records []*domain.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}

	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+auditSavepoint); err != nil {
		return domain.NewStoreFailure("failed to open audit savepoint", err)
	}

	if err := r.insertAll(ctx, tx, records); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+auditSavepoint); rbErr != nil {
			return domain.NewStoreFailure("failed to roll back audit savepoint", rbErr)
		}
		return domain.NewAuditWriteFailure(records[0].EntityType, records[0].EntityID, err)
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+auditSavepoint); err != nil {
		return domain.NewStoreFailure("failed to release audit savepoint", err)
	}

	return nil
}

func (r *AuditRepository) insertAll(ctx context.Context, tx ports.Tx, records []*domain.AuditRecord) error {
	query := r.store.q(`
		INSERT INTO audit_log (id, created_at, actor_id, actor_name, action, entity_type, entity_id, field, old_value, new_value, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)

	for _, rec := range records {
		var metadata sql.NullString
		if len(rec.Metadata) > 0 {
			data, err := json.Marshal(rec.Metadata)
			if err != nil {
				return fmt.Errorf("failed to marshal audit metadata: %w", err)
			}
			metadata = sql.NullString{String: string(data), Valid: true}
		}

		_, err := tx.ExecContext(ctx, query,
			rec.ID,
			rec.Timestamp.UTC(),
			rec.ActorID,
			rec.ActorName,
			string(rec.Action),
			string(rec.EntityType),
			rec.EntityID,
			rec.Field,
			rec.OldValue,
			rec.NewValue,
			metadata,
		)
		if err != nil {
			return fmt.Errorf("failed to insert audit record: %w", err)
		}
	}

	return nil
}

// List retrieves audit records newest-first, ties broken by insertion order
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditRecord, error) {
	filter = filter.Normalize()

	var (
		conditions []string
		args       []interface{}
	)
	if filter.EntityType != "" {
		args = append(args, string(filter.EntityType))
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		conditions = append(conditions, fmt.Sprintf("entity_id = $%d", len(args)))
	}

	query := `
		SELECT seq, id, created_at, actor_id, actor_name, action, entity_type, entity_id, field, old_value, new_value, metadata
		FROM audit_log
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC, seq DESC LIMIT $%d", len(args))

	rows, err := r.store.db.QueryContext(ctx, r.store.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var records []*domain.AuditRecord
	for rows.Next() {
		var (
			rec      domain.AuditRecord
			metadata sql.NullString
		)

		err := rows.Scan(
			&rec.Seq,
			&rec.ID,
			&rec.Timestamp,
			&rec.ActorID,
			&rec.ActorName,
			&rec.Action,
			&rec.EntityType,
			&rec.EntityID,
			&rec.Field,
			&rec.OldValue,
			&rec.NewValue,
			&metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}

		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &rec.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode audit metadata: %w", err)
			}
		}

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log: %w", err)
	}

	return records, nil
}

var _ ports.AuditRepository = (*AuditRepository)(nil)
