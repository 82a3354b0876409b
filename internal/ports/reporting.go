package ports

import (
	"context"

	"github.com/fixora/projectledger/internal/domain"
)

// FailureReporter receives failures that are deliberately kept away from the
// caller, such as rejected audit writes.
type FailureReporter interface {
	ReportAuditFailure(ctx context.Context, records []*domain.AuditRecord, err error)
}
