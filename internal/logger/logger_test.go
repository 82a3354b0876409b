package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONIncludesCorrelationAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", ServiceName: "ledger", Output: &buf})

	ctx := WithCorrelationID(context.Background(), "corr-1")
	log.WithFields(map[string]interface{}{"component": "coordinator"}).
		Error(ctx, "commit failed", errors.New("boom"), map[string]interface{}{"entity_type": "ncr"})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "commit failed", line["msg"])
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "corr-1", line["correlation_id"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "ledger", line["service"])
	assert.Equal(t, "coordinator", line["component"])
	assert.Equal(t, "ncr", line["entity_type"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "json", Output: &buf})

	log.Info(context.Background(), "hidden", nil)
	assert.Zero(t, buf.Len())

	log.Warn(context.Background(), "shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestCorrelationID_Missing(t *testing.T) {
	assert.Empty(t, CorrelationID(context.Background()))
}
