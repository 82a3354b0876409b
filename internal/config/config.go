package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Engine    EngineConfig    `json:"engine"`
	AuditSink AuditSinkConfig `json:"audit_sink"`
	Logging   LoggingConfig   `json:"logging"`
	CORS      CORSConfig      `json:"cors"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	Host         string        `json:"host"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Environment  string        `json:"environment"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver         string        `json:"driver"` // postgres, sqlite3
	URL            string        `json:"url"`
	SQLitePath     string        `json:"sqlite_path"`
	MaxConnections int           `json:"max_connections"`
	MaxIdle        int           `json:"max_idle"`
	MaxIdleTime    time.Duration `json:"max_idle_time"`
	AutoMigrate    bool          `json:"auto_migrate"`
}

// EngineConfig tunes the transaction coordinator
type EngineConfig struct {
	TxTimeout            time.Duration `json:"tx_timeout"`
	RetryMaxAttempts     int           `json:"retry_max_attempts"`
	RetryInitialInterval time.Duration `json:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `json:"retry_max_interval"`
	SequenceConfigFile   string        `json:"sequence_config_file"`
}

// AuditSinkConfig configures where rejected audit writes are reported
type AuditSinkConfig struct {
	RedisEnabled bool   `json:"redis_enabled"`
	RedisURL     string `json:"redis_url"`
	RedisKey     string `json:"redis_key"`
	RedisMaxLen  int    `json:"redis_max_len"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json, text
}

// CORSConfig represents cross-origin configuration for the HTTP adapter
type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required for the postgres driver")
	ErrMissingSQLitePath  = errors.New("SQLITE_PATH is required for the sqlite3 driver")
	ErrUnknownDriver      = errors.New("DB_DRIVER must be postgres or sqlite3")
	ErrMissingRedisURL    = errors.New("REDIS_URL is required when AUDIT_SINK_REDIS_ENABLED is true")
)

// Load reads .env (when present) and the process environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			Environment:  getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Driver:         getEnv("DB_DRIVER", DriverPostgres),
			URL:            getEnv("DATABASE_URL", ""),
			SQLitePath:     getEnv("SQLITE_PATH", "ledger.db"),
			MaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 20),
			MaxIdle:        getEnvInt("DB_MAX_IDLE", 5),
			MaxIdleTime:    getEnvDuration("DB_MAX_IDLE_TIME", 30*time.Minute),
			AutoMigrate:    getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Engine: EngineConfig{
			TxTimeout:            getEnvDuration("TX_TIMEOUT", 10*time.Second),
			RetryMaxAttempts:     getEnvInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialInterval: getEnvDuration("RETRY_INITIAL_INTERVAL", 25*time.Millisecond),
			RetryMaxInterval:     getEnvDuration("RETRY_MAX_INTERVAL", 250*time.Millisecond),
			SequenceConfigFile:   getEnv("SEQUENCE_CONFIG_FILE", ""),
		},
		AuditSink: AuditSinkConfig{
			RedisEnabled: getEnvBool("AUDIT_SINK_REDIS_ENABLED", false),
			RedisURL:     getEnv("REDIS_URL", ""),
			RedisKey:     getEnv("AUDIT_SINK_REDIS_KEY", "ledger:audit_failures"),
			RedisMaxLen:  getEnvInt("AUDIT_SINK_REDIS_MAX_LEN", 10000),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		CORS: CORSConfig{
			Enabled:          getEnvBool("CORS_ENABLED", false),
			AllowedOrigins:   getEnvSlice("CORS_ALLOWED_ORIGINS", nil),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", false),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return ErrMissingDatabaseURL
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return ErrMissingSQLitePath
		}
	default:
		return ErrUnknownDriver
	}

	if c.Engine.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}

	if c.AuditSink.RedisEnabled && c.AuditSink.RedisURL == "" {
		return ErrMissingRedisURL
	}

	return nil
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Address returns the HTTP listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// Helper functions for environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
