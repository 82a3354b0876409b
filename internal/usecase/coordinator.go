package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/logger"
	"github.com/fixora/projectledger/internal/ports"
)

// Kind binds an entity type to its repository
type Kind[E domain.Record] struct {
	Type domain.EntityType
	Repo ports.Repository[E]
}

// Repositories groups the persistence ports the coordinator drives
type Repositories struct {
	Projects       ports.Repository[*domain.Project]
	PurchaseOrders ports.Repository[*domain.PurchaseOrder]
	Quotes         ports.Repository[*domain.Quote]
	NCRs           ports.Repository[*domain.NCR]
	Variations     ports.Repository[*domain.Variation]
	Users          ports.Repository[*domain.User]
	Products       ports.Repository[*domain.Product]

	Counters   ports.CounterRepository
	Aggregates ports.AggregateRepository
	Audit      ports.AuditRepository
	Guard      ports.ReferenceGuard
}

// Option customizes a Coordinator
type Option func(*Coordinator)

// WithRetryPolicy overrides the conflict retry policy
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Coordinator) { c.retry = policy }
}

// WithTimeout bounds every operation, on top of any caller deadline
func WithTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) { c.timeout = timeout }
}

// WithRecalculator replaces the rollup recalculator
func WithRecalculator(r AggregateRecalculator) Option {
	return func(c *Coordinator) { c.rollups = r }
}

// WithFailureReporter sets where rejected audit writes are reported
func WithFailureReporter(reporter ports.FailureReporter) Option {
	return func(c *Coordinator) { c.reporter = reporter }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// Coordinator runs every business mutation as one transaction: sequence
// allocation, the entity write, rollup recomputation and the audit trail
// commit or roll back together.
type Coordinator struct {
	transactor ports.Transactor
	allocator  *Allocator
	rollups    AggregateRecalculator
	audit      *AuditRecorder
	reporter   ports.FailureReporter
	guard      ports.ReferenceGuard
	logger     logger.Logger
	retry      RetryPolicy
	timeout    time.Duration
	now        func() time.Time

	projects       Kind[*domain.Project]
	purchaseOrders Kind[*domain.PurchaseOrder]
	quotes         Kind[*domain.Quote]
	ncrs           Kind[*domain.NCR]
	variations     Kind[*domain.Variation]
	users          Kind[*domain.User]
	products       Kind[*domain.Product]
}

// NewCoordinator creates a new coordinator
func NewCoordinator(
	transactor ports.Transactor,
	repos Repositories,
	sequences domain.SequenceTable,
	log logger.Logger,
	opts ...Option,
) *Coordinator {
	if log == nil {
		log = logger.NewNop()
	}

	c := &Coordinator{
		transactor: transactor,
		allocator:  NewAllocator(repos.Counters, sequences, transactor.IsConflict),
		rollups:    NewRecalculator(repos.Aggregates),
		guard:      repos.Guard,
		logger:     log.WithFields(map[string]interface{}{"component": "coordinator"}),
		retry:      DefaultRetryPolicy(),
		now:        time.Now,

		projects:       Kind[*domain.Project]{Type: domain.EntityProject, Repo: repos.Projects},
		purchaseOrders: Kind[*domain.PurchaseOrder]{Type: domain.EntityPurchaseOrder, Repo: repos.PurchaseOrders},
		quotes:         Kind[*domain.Quote]{Type: domain.EntityQuote, Repo: repos.Quotes},
		ncrs:           Kind[*domain.NCR]{Type: domain.EntityNCR, Repo: repos.NCRs},
		variations:     Kind[*domain.Variation]{Type: domain.EntityVariation, Repo: repos.Variations},
		users:          Kind[*domain.User]{Type: domain.EntityUser, Repo: repos.Users},
		products:       Kind[*domain.Product]{Type: domain.EntityProduct, Repo: repos.Products},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.reporter == nil {
		c.reporter = &logReporter{logger: c.logger}
	}
	c.audit = NewAuditRecorder(repos.Audit, c.reporter, c.now)

	return c
}

// Allocator exposes the sequence allocator for read-only inspection
func (c *Coordinator) Allocator() *Allocator {
	return c.allocator
}

// ListAudit reads the audit trail newest-first
func (c *Coordinator) ListAudit(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditRecord, error) {
	records, err := c.audit.List(ctx, filter)
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	return records, nil
}

type txFunc func(ctx context.Context, tx ports.Tx) error

// run executes fn in a fresh transaction, retrying the whole transaction on
// store conflicts.
func (c *Coordinator) run(ctx context.Context, operation string, entityType domain.EntityType, fn txFunc) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	attempts := 0
	err := c.retry.Do(ctx, func() error {
		attempts++
		err := c.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		if ctx.Err() == nil && c.transactor.IsConflict(err) {
			return err
		}
		return backoff.Permanent(err)
	}, func(err error, wait time.Duration) {
		c.logger.Warn(ctx, "Transaction conflict, retrying", map[string]interface{}{
			"operation":   operation,
			"entity_type": entityType,
			"attempt":     attempts,
			"wait_ms":     wait.Milliseconds(),
			"error":       err.Error(),
		})
	})

	fields := map[string]interface{}{
		"operation":   operation,
		"entity_type": entityType,
		"attempts":    attempts,
	}
	if err != nil {
		err = c.classify(ctx, err)
		switch domain.KindOf(err) {
		case domain.KindValidation, domain.KindNotFound, domain.KindReferentialBlock:
			c.logger.Debug(ctx, "Operation rejected", fields)
		default:
			c.logger.Error(ctx, "Operation failed", err, fields)
		}
		return err
	}

	logger.LogPerformance(ctx, c.logger, operation, time.Since(start), fields)
	return nil
}

func (c *Coordinator) attempt(ctx context.Context, fn txFunc) error {
	tx, err := c.transactor.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit()
}

// classify maps raw failures onto the engine's error kinds
func (c *Coordinator) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if domain.KindOf(err) == domain.KindTimeout {
			return err
		}
		return domain.NewTimeoutError(err)
	}

	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return err
	}

	return domain.NewStoreFailure("store operation failed", err)
}

// parentRef is one rollup that must be refreshed for one parent
type parentRef struct {
	dep      domain.AggregateDependency
	parentID string
}

// collectParents lists the rollups touched by a child moving from before to
// after. Either snapshot may be nil for creates and deletes.
func collectParents(entityType domain.EntityType, before, after domain.Snapshot) []parentRef {
	var refs []parentRef
	seen := make(map[string]bool)
	add := func(dep domain.AggregateDependency, parentID string) {
		key := dep.Name + "/" + parentID
		if parentID == "" || seen[key] {
			return
		}
		seen[key] = true
		refs = append(refs, parentRef{dep: dep, parentID: parentID})
	}

	for _, dep := range domain.DependenciesForChild(entityType) {
		if before != nil && after != nil && !dep.Affected(before, after) {
			continue
		}
		if before != nil {
			add(dep, dep.ParentID(before))
		}
		if after != nil {
			add(dep, dep.ParentID(after))
		}
	}
	return refs
}

// lockParents locks each distinct parent row in id order, so concurrent
// operations acquire parent locks in the same sequence.
func (c *Coordinator) lockParents(ctx context.Context, tx ports.Tx, refs []parentRef) error {
	ordered := make([]parentRef, len(refs))
	copy(ordered, refs)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.dep.ParentTable != b.dep.ParentTable {
			return a.dep.ParentTable < b.dep.ParentTable
		}
		return a.parentID < b.parentID
	})

	locked := make(map[string]bool)
	for _, ref := range ordered {
		key := ref.dep.ParentTable + "/" + ref.parentID
		if locked[key] {
			continue
		}
		if err := c.rollups.Lock(ctx, tx, ref.dep, ref.parentID); err != nil {
			return err
		}
		locked[key] = true
	}
	return nil
}

// lockReferences checks every link field set or changed by the write and
// share-locks its target. Targets already locked as rollup parents are
// skipped. Locks are taken in table then id order, after the parent locks.
func (c *Coordinator) lockReferences(ctx context.Context, tx ports.Tx, entityType domain.EntityType, before, after domain.Snapshot, parents []parentRef) error {
	if c.guard == nil || after == nil {
		return nil
	}

	held := make(map[string]bool, len(parents))
	for _, ref := range parents {
		held[ref.dep.ParentTable+"/"+ref.parentID] = true
	}

	type target struct {
		ref domain.Reference
		id  string
	}
	var targets []target
	for _, ref := range domain.ReferencesFrom(entityType) {
		id := after[ref.Field]
		if id == "" || (before != nil && before[ref.Field] == id) {
			continue
		}
		key := ref.TargetTable + "/" + id
		if held[key] {
			continue
		}
		held[key] = true
		targets = append(targets, target{ref: ref, id: id})
	}

	sort.Slice(targets, func(i, j int) bool {
		if targets[i].ref.TargetTable != targets[j].ref.TargetTable {
			return targets[i].ref.TargetTable < targets[j].ref.TargetTable
		}
		return targets[i].id < targets[j].id
	})

	for _, t := range targets {
		if err := c.guard.LockReferenced(ctx, tx, t.ref, t.id); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) recalculate(ctx context.Context, tx ports.Tx, refs []parentRef, now time.Time) error {
	for _, ref := range refs {
		if _, err := c.rollups.Recalculate(ctx, tx, ref.dep, ref.parentID, now); err != nil {
			return err
		}
	}
	return nil
}

// logReporter is the FailureReporter used when none is configured
type logReporter struct {
	logger logger.Logger
}

func (r *logReporter) ReportAuditFailure(ctx context.Context, records []*domain.AuditRecord, err error) {
	fields := map[string]interface{}{"records": len(records)}
	if len(records) > 0 {
		fields["entity_type"] = records[0].EntityType
		fields["entity_id"] = records[0].EntityID
		fields["action"] = records[0].Action
	}
	r.logger.Error(ctx, "Audit write rejected", err, fields)
}

func newID() string {
	return uuid.NewString()
}
