package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/projectledger/internal/config"
	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/logger"
)

func TestNew_SQLite(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:      config.DriverSQLite,
			SQLitePath:  filepath.Join(t.TempDir(), "app.db"),
			AutoMigrate: true,
		},
		Engine: config.EngineConfig{
			TxTimeout:        5 * time.Second,
			RetryMaxAttempts: 3,
		},
	}

	a, err := New(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer a.Close()

	p, err := a.Coordinator.CreateProject(context.Background(), domain.CreateProject{Name: "Wired"}, domain.Actor{})
	require.NoError(t, err)
	assert.Equal(t, "100001", p.Number)

	counters, err := a.Coordinator.Allocator().Counters(context.Background())
	require.NoError(t, err)
	assert.Len(t, counters, 1)
}

func TestNew_BadSequenceFile(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db")},
		Engine:   config.EngineConfig{SequenceConfigFile: "/does/not/exist.yaml", RetryMaxAttempts: 1},
	}

	_, err := New(context.Background(), cfg, logger.NewNop())
	assert.Error(t, err)
}
