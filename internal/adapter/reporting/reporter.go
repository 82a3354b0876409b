package reporting

import (
	"context"
	"time"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/logger"
	"github.com/fixora/projectledger/internal/ports"
)

// AuditFailure is the record of one rejected audit write
type AuditFailure struct {
	OccurredAt    time.Time             `json:"occurred_at"`
	CorrelationID string                `json:"correlation_id,omitempty"`
	EntityType    domain.EntityType     `json:"entity_type"`
	EntityID      string                `json:"entity_id"`
	Error         string                `json:"error"`
	Records       []*domain.AuditRecord `json:"records"`
}

func newAuditFailure(ctx context.Context, records []*domain.AuditRecord, err error) AuditFailure {
	failure := AuditFailure{
		OccurredAt:    time.Now().UTC(),
		CorrelationID: logger.CorrelationID(ctx),
		Records:       records,
	}
	if err != nil {
		failure.Error = err.Error()
	}
	if len(records) > 0 {
		failure.EntityType = records[0].EntityType
		failure.EntityID = records[0].EntityID
	}
	return failure
}

// LogReporter writes audit failures to the structured log
type LogReporter struct {
	logger logger.Logger
}

// NewLogReporter creates a reporter backed by the structured logger
func NewLogReporter(log logger.Logger) *LogReporter {
	return &LogReporter{logger: log.WithFields(map[string]interface{}{"component": "audit_reporter"})}
}

func (r *LogReporter) ReportAuditFailure(ctx context.Context, records []*domain.AuditRecord, err error) {
	failure := newAuditFailure(ctx, records, err)
	r.logger.Error(ctx, "Audit write rejected", err, map[string]interface{}{
		"entity_type": failure.EntityType,
		"entity_id":   failure.EntityID,
		"records":     len(records),
	})
}

// MultiReporter fans a failure out to several reporters
type MultiReporter []ports.FailureReporter

func (m MultiReporter) ReportAuditFailure(ctx context.Context, records []*domain.AuditRecord, err error) {
	for _, r := range m {
		if r != nil {
			r.ReportAuditFailure(ctx, records, err)
		}
	}
}

var (
	_ ports.FailureReporter = (*LogReporter)(nil)
	_ ports.FailureReporter = MultiReporter(nil)
)
