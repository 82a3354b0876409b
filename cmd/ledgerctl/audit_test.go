package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fixora/projectledger/internal/adapter/reporting"
	"github.com/fixora/projectledger/internal/domain"
)

func TestPrintAuditRecord(t *testing.T) {
	field, old, name := "costImpact", "500", "Dana"
	rec := &domain.AuditRecord{
		Timestamp:  time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		Action:     domain.AuditUpdate,
		EntityType: domain.EntityNCR,
		EntityID:   "n1",
		ActorName:  &name,
		Field:      &field,
		OldValue:   &old,
	}

	var buf bytes.Buffer
	printAuditRecord(&buf, rec)
	assert.Equal(t, "2024-03-01T08:00:00Z  UPDATE  ncr/n1  by Dana  costImpact: 500 -> null\n", buf.String())
}

func TestAuditCmdDefaults(t *testing.T) {
	cmd := newAuditCmd()

	limit, err := cmd.Flags().GetInt("limit")
	assert.NoError(t, err)
	assert.Equal(t, domain.DefaultAuditLimit, limit)

	down := newMigrateCmd().Flags().Lookup("down")
	if assert.NotNil(t, down) {
		assert.Equal(t, "false", down.DefValue)
	}
}

func TestPrintAuditFailure(t *testing.T) {
	failure := reporting.AuditFailure{
		OccurredAt:    time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		CorrelationID: "req-7",
		EntityType:    domain.EntityNCR,
		EntityID:      "n1",
		Error:         "no such table: audit_log",
		Records:       []*domain.AuditRecord{{Action: domain.AuditCreate}},
	}

	var buf bytes.Buffer
	printAuditFailure(&buf, failure)
	assert.Equal(t, "2024-03-01T08:00:00Z  ncr/n1  records=1  no such table: audit_log  correlation=req-7\n", buf.String())
}

func TestAuditFailuresCmdDefaults(t *testing.T) {
	limit, err := newAuditFailuresCmd().Flags().GetInt64("limit")
	assert.NoError(t, err)
	assert.Equal(t, int64(20), limit)
}
