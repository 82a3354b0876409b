package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/logger"
	"github.com/fixora/projectledger/internal/ports"
)

// RedisConfig configures the Redis failure sink
type RedisConfig struct {
	URL     string
	Key     string
	MaxLen  int64
	Timeout time.Duration
}

// RedisReporter pushes audit failures onto a capped Redis list so an
// operator or a replay job can pick them up.
type RedisReporter struct {
	client  *redis.Client
	key     string
	maxLen  int64
	timeout time.Duration
	logger  logger.Logger
}

// NewRedisReporter connects to Redis and verifies the connection
func NewRedisReporter(config RedisConfig, log logger.Logger) (*RedisReporter, error) {
	opt, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisReporter(client, config, log), nil
}

func newRedisReporter(client *redis.Client, config RedisConfig, log logger.Logger) *RedisReporter {
	if config.Key == "" {
		config.Key = "ledger:audit_failures"
	}
	if config.MaxLen <= 0 {
		config.MaxLen = 10000
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}

	return &RedisReporter{
		client:  client,
		key:     config.Key,
		maxLen:  config.MaxLen,
		timeout: config.Timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "redis_audit_reporter"}),
	}
}

// ReportAuditFailure pushes the failure on the list head and trims the tail.
// Reporting never blocks the caller beyond the configured timeout.
func (r *RedisReporter) ReportAuditFailure(ctx context.Context, records []*domain.AuditRecord, err error) {
	payload, marshalErr := json.Marshal(newAuditFailure(ctx, records, err))
	if marshalErr != nil {
		r.logger.Error(ctx, "Failed to encode audit failure", marshalErr, nil)
		return
	}

	pushCtx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	pipe := r.client.TxPipeline()
	pipe.LPush(pushCtx, r.key, payload)
	pipe.LTrim(pushCtx, r.key, 0, r.maxLen-1)
	if _, pushErr := pipe.Exec(pushCtx); pushErr != nil {
		r.logger.Error(ctx, "Failed to push audit failure to Redis", pushErr, map[string]interface{}{
			"key": r.key,
		})
	}
}

// Recent returns up to n of the newest failures
func (r *RedisReporter) Recent(ctx context.Context, n int64) ([]AuditFailure, error) {
	raw, err := r.client.LRange(ctx, r.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit failures: %w", err)
	}

	failures := make([]AuditFailure, 0, len(raw))
	for _, item := range raw {
		var f AuditFailure
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			return nil, fmt.Errorf("failed to decode audit failure: %w", err)
		}
		failures = append(failures, f)
	}
	return failures, nil
}

// Close closes the Redis client
func (r *RedisReporter) Close() error {
	return r.client.Close()
}

var _ ports.FailureReporter = (*RedisReporter)(nil)
