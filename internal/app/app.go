package app

import (
	"context"
	"fmt"

	"github.com/fixora/projectledger/internal/adapter/persistence"
	"github.com/fixora/projectledger/internal/adapter/reporting"
	"github.com/fixora/projectledger/internal/config"
	"github.com/fixora/projectledger/internal/logger"
	"github.com/fixora/projectledger/internal/ports"
	"github.com/fixora/projectledger/internal/usecase"
)

// App holds the long-lived resources of a running process
type App struct {
	Config      *config.Config
	Logger      logger.Logger
	Store       *persistence.Store
	Coordinator *usecase.Coordinator

	// FailureSink is the Redis audit failure list, nil unless enabled
	FailureSink *reporting.RedisReporter

	closers []func() error
}

// OpenStore connects to the configured database
func OpenStore(ctx context.Context, cfg *config.Config) (*persistence.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		return persistence.OpenSQLite(cfg.Database.SQLitePath)
	default:
		return persistence.Open(ctx, cfg.Database.URL, persistence.Options{
			MaxOpenConns:    cfg.Database.MaxConnections,
			MaxIdleConns:    cfg.Database.MaxIdle,
			ConnMaxIdleTime: cfg.Database.MaxIdleTime,
		})
	}
}

// NewRepositories builds every repository over store
func NewRepositories(store *persistence.Store) usecase.Repositories {
	return usecase.Repositories{
		Projects:       persistence.NewProjectRepository(store),
		PurchaseOrders: persistence.NewPurchaseOrderRepository(store),
		Quotes:         persistence.NewQuoteRepository(store),
		NCRs:           persistence.NewNCRRepository(store),
		Variations:     persistence.NewVariationRepository(store),
		Users:          persistence.NewUserRepository(store),
		Products:       persistence.NewProductRepository(store),
		Counters:       persistence.NewCounterRepository(store),
		Aggregates:     persistence.NewAggregateRepository(store),
		Audit:          persistence.NewAuditRepository(store),
		Guard:          persistence.NewReferenceGuard(store),
	}
}

// New opens the store, applies migrations when enabled and assembles the
// coordinator with its failure reporters.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	sequences, err := config.LoadSequences(cfg.Engine.SequenceConfigFile)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: log, Store: store}
	a.closers = append(a.closers, store.Close)

	if cfg.Database.AutoMigrate {
		result, err := store.Migrate(ctx)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
		if len(result.Applied) > 0 {
			log.Info(ctx, "Migrations applied", map[string]interface{}{"applied": result.Applied})
		}
	}

	reporters := reporting.MultiReporter{reporting.NewLogReporter(log)}
	if cfg.AuditSink.RedisEnabled {
		redisReporter, err := reporting.NewRedisReporter(reporting.RedisConfig{
			URL:    cfg.AuditSink.RedisURL,
			Key:    cfg.AuditSink.RedisKey,
			MaxLen: int64(cfg.AuditSink.RedisMaxLen),
		}, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		reporters = append(reporters, redisReporter)
		a.FailureSink = redisReporter
		a.closers = append(a.closers, redisReporter.Close)
		log.Info(ctx, "Redis audit failure sink enabled", map[string]interface{}{"key": cfg.AuditSink.RedisKey})
	}

	a.Coordinator = usecase.NewCoordinator(store, NewRepositories(store), sequences, log,
		usecase.WithTimeout(cfg.Engine.TxTimeout),
		usecase.WithRetryPolicy(usecase.RetryPolicy{
			MaxAttempts:     cfg.Engine.RetryMaxAttempts,
			InitialInterval: cfg.Engine.RetryInitialInterval,
			MaxInterval:     cfg.Engine.RetryMaxInterval,
		}),
		usecase.WithFailureReporter(failureReporter(reporters)),
	)

	return a, nil
}

// Close releases resources in reverse order of acquisition
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func failureReporter(reporters reporting.MultiReporter) ports.FailureReporter {
	if len(reporters) == 1 {
		return reporters[0]
	}
	return reporters
}
