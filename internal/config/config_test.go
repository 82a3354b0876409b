package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/projectledger/internal/domain"
)

func TestLoad_SQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("SQLITE_PATH", "/tmp/ledger.db")
	t.Setenv("TX_TIMEOUT", "3s")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/ledger.db", cfg.Database.SQLitePath)
	assert.Equal(t, 3*time.Second, cfg.Engine.TxTimeout)
	assert.Equal(t, 5, cfg.Engine.RetryMaxAttempts)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"postgres without url", func(c *Config) { c.Database.URL = "" }, ErrMissingDatabaseURL},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, ErrUnknownDriver},
		{"redis sink without url", func(c *Config) { c.AuditSink.RedisEnabled = true }, ErrMissingRedisURL},
		{"valid", func(c *Config) {}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:   ServerConfig{Port: "8080"},
				Database: DatabaseConfig{Driver: DriverPostgres, URL: "postgres://localhost/ledger"},
				Engine:   EngineConfig{RetryMaxAttempts: 3},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoadSequences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequences.yaml")
	body := "sequences:\n  purchase_order:\n    prefix: \"PUR-\"\n    pad_width: 6\n    start: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	table, err := LoadSequences(path)
	require.NoError(t, err)

	spec, ok := table.Lookup(domain.EntityPurchaseOrder)
	require.True(t, ok)
	assert.Equal(t, "PUR-000001", spec.Format(spec.Start))

	ncr, ok := table.Lookup(domain.EntityNCR)
	require.True(t, ok)
	assert.Equal(t, "NCR-0001", ncr.Format(ncr.Start))
}

func TestLoadSequences_Rejects(t *testing.T) {
	_, err := mergeSequences(domain.DefaultSequences(), []byte("sequences:\n  invoice:\n    prefix: INV-\n"))
	assert.Error(t, err)

	_, err = mergeSequences(domain.DefaultSequences(), []byte("sequences:\n  quote:\n    pad_width: 40\n"))
	assert.Error(t, err)

	table, err := LoadSequences("")
	require.NoError(t, err)
	assert.Len(t, table, 5)
}
