package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/projectledger/internal/adapter/persistence"
	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/logger"
	"github.com/fixora/projectledger/internal/ports"
)

var testActor = domain.Actor{ID: "u-admin", Name: "Admin"}

type recordingReporter struct {
	mu       sync.Mutex
	failures []error
	records  int
}

func (r *recordingReporter) ReportAuditFailure(_ context.Context, records []*domain.AuditRecord, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, err)
	r.records += len(records)
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures)
}

// failingRecalculator locks parents normally but refuses to store rollups
type failingRecalculator struct {
	*Recalculator
}

func (f failingRecalculator) Recalculate(_ context.Context, _ ports.Tx, dep domain.AggregateDependency, parentID string, _ time.Time) (decimal.Decimal, error) {
	return decimal.Zero, domain.NewAggregateRecalcFailure(dep.Name, parentID, errors.New("forced failure"))
}

func newTestStore(t *testing.T) *persistence.Store {
	t.Helper()

	store, err := persistence.OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.Migrate(context.Background())
	require.NoError(t, err)

	return store
}

func newRepositories(store *persistence.Store) Repositories {
	return Repositories{
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

type fixture struct {
	store    *persistence.Store
	coord    *Coordinator
	reporter *recordingReporter
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	store := newTestStore(t)
	reporter := &recordingReporter{}
	opts = append([]Option{WithFailureReporter(reporter)}, opts...)
	coord := NewCoordinator(store, newRepositories(store), domain.DefaultSequences(), logger.NewNop(), opts...)

	return &fixture{store: store, coord: coord, reporter: reporter}
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.store.DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func (f *fixture) audit(t *testing.T, entityType domain.EntityType, id string) []*domain.AuditRecord {
	t.Helper()
	records, err := f.coord.ListAudit(context.Background(), domain.AuditFilter{EntityType: entityType, EntityID: id, Limit: domain.MaxAuditLimit})
	require.NoError(t, err)
	return records
}

func (f *fixture) project(t *testing.T, name string) *domain.Project {
	t.Helper()
	p, err := f.coord.CreateProject(context.Background(), domain.CreateProject{Name: name, Client: "Acme"}, testActor)
	require.NoError(t, err)
	return p
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(domain.MoneyScale))
}

func str(s string) *string {
	return &s
}
