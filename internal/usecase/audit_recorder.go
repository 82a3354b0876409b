package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/logger"
	"github.com/fixora/projectledger/internal/ports"
)

// AuditRecorder writes the audit trail for committed mutations. A rejected
// audit write never fails the business operation; it is handed to the
// FailureReporter instead.
type AuditRecorder struct {
	audit    ports.AuditRepository
	reporter ports.FailureReporter
	now      func() time.Time
}

// NewAuditRecorder creates a new audit recorder
func NewAuditRecorder(audit ports.AuditRepository, reporter ports.FailureReporter, now func() time.Time) *AuditRecorder {
	if now == nil {
		now = time.Now
	}
	return &AuditRecorder{audit: audit, reporter: reporter, now: now}
}

// RecordCreate writes one CREATE record summarizing entity
func (r *AuditRecorder) RecordCreate(ctx context.Context, tx ports.Tx, entity domain.Record, actor domain.Actor) error {
	rec := r.newRecord(ctx, domain.AuditCreate, entity, actor)
	summary := domain.Summary(entity)
	rec.NewValue = &summary
	return r.write(ctx, tx, []*domain.AuditRecord{rec})
}

// RecordUpdate writes one UPDATE record per changed field, in the order
// given. It writes nothing when changed is empty.
func (r *AuditRecorder) RecordUpdate(ctx context.Context, tx ports.Tx, entity domain.Record, actor domain.Actor, before, after domain.Snapshot, changed []string) error {
	if len(changed) == 0 {
		return nil
	}

	records := make([]*domain.AuditRecord, 0, len(changed))
	for _, field := range changed {
		rec := r.newRecord(ctx, domain.AuditUpdate, entity, actor)
		rec.Field = stringPtr(field)
		rec.OldValue = nullable(before[field])
		rec.NewValue = nullable(after[field])
		records = append(records, rec)
	}

	return r.write(ctx, tx, records)
}

// RecordDelete writes one DELETE record summarizing the removed entity
func (r *AuditRecorder) RecordDelete(ctx context.Context, tx ports.Tx, entity domain.Record, actor domain.Actor) error {
	rec := r.newRecord(ctx, domain.AuditDelete, entity, actor)
	summary := domain.Summary(entity)
	rec.OldValue = &summary
	return r.write(ctx, tx, []*domain.AuditRecord{rec})
}

// List reads the audit trail newest-first
func (r *AuditRecorder) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditRecord, error) {
	return r.audit.List(ctx, filter.Normalize())
}

func (r *AuditRecorder) write(ctx context.Context, tx ports.Tx, records []*domain.AuditRecord) error {
	err := r.audit.Append(ctx, tx, records)
	if err == nil {
		return nil
	}

	if domain.KindOf(err) == domain.KindAuditWrite {
		if r.reporter != nil {
			r.reporter.ReportAuditFailure(ctx, records, err)
		}
		return nil
	}

	return err
}

func (r *AuditRecorder) newRecord(ctx context.Context, action domain.AuditAction, entity domain.Record, actor domain.Actor) *domain.AuditRecord {
	rec := &domain.AuditRecord{
		ID:         uuid.NewString(),
		Timestamp:  r.now().UTC(),
		ActorID:    nullable(actor.ID),
		ActorName:  nullable(actor.Name),
		Action:     action,
		EntityType: entity.EntityType(),
		EntityID:   entity.RecordID(),
	}
	if id := logger.CorrelationID(ctx); id != "" {
		rec.Metadata = map[string]string{"correlationId": id}
	}
	return rec
}

func stringPtr(s string) *string {
	return &s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
