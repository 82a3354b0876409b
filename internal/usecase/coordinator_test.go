package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/logger"
)

func TestCoordinator_ConcurrentProjectNumbersAreDistinctAndContiguous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []string
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := f.coord.CreateProject(ctx, domain.CreateProject{Name: fmt.Sprintf("Tower %d", i)}, testActor)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers = append(numbers, p.Number)
		}(i)
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Len(t, numbers, workers)

	sort.Strings(numbers)
	for i, number := range numbers {
		assert.Equal(t, fmt.Sprintf("%d", 100001+i), number)
	}
	assert.Equal(t, workers, f.count(t, "projects"))
}

func TestCoordinator_PurchaseOrderNumbersArePadded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, want := range []string{"PO-1001", "PO-1002", "PO-1003"} {
		po, err := f.coord.CreatePurchaseOrder(ctx, domain.CreatePurchaseOrder{Supplier: "Steelworks"}, testActor)
		require.NoError(t, err)
		assert.Equal(t, want, po.Number)
		assert.Equal(t, domain.PurchaseOrderStatusDraft, po.Status)
	}

	current, err := f.coord.Allocator().Current(ctx, domain.EntityPurchaseOrder)
	require.NoError(t, err)
	assert.Equal(t, "PO-1003", current)
}

func TestCoordinator_UnsequencedTypesGetNoNumber(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.CreateUser(context.Background(), domain.CreateUser{Name: "Dana", Email: "Dana@Example.com"}, testActor)
	require.NoError(t, err)

	_, err = f.coord.Allocator().Current(context.Background(), domain.EntityUser)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestCoordinator_NCRCostFollowsChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Harbour Bridge")

	ncr, err := f.coord.CreateNCR(ctx, domain.CreateNCR{ProjectID: p.ID, Title: "Weld crack", CostImpact: domain.Amount("500")}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "NCR-0001", ncr.Number)
	assertNCRCost(t, f, p.ID, "500.00")

	_, err = f.coord.UpdateNCR(ctx, ncr.ID, domain.NCRPatch{CostImpact: domain.Some(domain.Amount("300"))}, testActor)
	require.NoError(t, err)
	assertNCRCost(t, f, p.ID, "300.00")

	second, err := f.coord.CreateNCR(ctx, domain.CreateNCR{ProjectID: p.ID, Title: "Paint defect", CostImpact: domain.Amount("200")}, testActor)
	require.NoError(t, err)
	assertNCRCost(t, f, p.ID, "500.00")

	require.NoError(t, f.coord.DeleteNCR(ctx, ncr.ID, testActor))
	assertNCRCost(t, f, p.ID, "200.00")

	_, err = f.coord.UpdateNCR(ctx, second.ID, domain.NCRPatch{CostImpact: domain.Some(decimal.NullDecimal{})}, testActor)
	require.NoError(t, err)
	assertNCRCost(t, f, p.ID, "0.00")
}

func TestCoordinator_RecalculationFailureRollsBackChild(t *testing.T) {
	store := newTestStore(t)
	healthy := NewCoordinator(store, newRepositories(store), domain.DefaultSequences(), logger.NewNop())
	ctx := context.Background()

	p, err := healthy.CreateProject(ctx, domain.CreateProject{Name: "Depot"}, testActor)
	require.NoError(t, err)

	broken := NewCoordinator(store, newRepositories(store), domain.DefaultSequences(), logger.NewNop(),
		WithRecalculator(failingRecalculator{NewRecalculator(newRepositories(store).Aggregates)}))

	_, err = broken.CreateNCR(ctx, domain.CreateNCR{ProjectID: p.ID, Title: "Leak", CostImpact: domain.Amount("100")}, testActor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAggregateRecalc))
	assert.True(t, domain.IsRetryable(err))

	var n int
	require.NoError(t, store.DB().QueryRow("SELECT COUNT(*) FROM ncrs").Scan(&n))
	assert.Zero(t, n)

	// the rolled back allocation did not consume a number
	ncr, err := healthy.CreateNCR(ctx, domain.CreateNCR{ProjectID: p.ID, Title: "Leak", CostImpact: domain.Amount("100")}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "NCR-0001", ncr.Number)

	got, err := healthy.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assertMoney(t, "100.00", got.NCRCost)
}

func TestCoordinator_ChildOfMissingParentIsRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.CreateNCR(context.Background(), domain.CreateNCR{ProjectID: "missing", Title: "Orphan"}, testActor)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Zero(t, f.count(t, "ncrs"))
	assert.Zero(t, f.count(t, "sequence_counters"))
}

func TestCoordinator_AuditTrail(t *testing.T) {
	f := newFixture(t)
	ctx := logger.WithCorrelationID(context.Background(), "corr-42")
	p := f.project(t, "Library")

	ncr, err := f.coord.CreateNCR(ctx, domain.CreateNCR{ProjectID: p.ID, Title: "Crack", CostImpact: domain.Amount("10")}, testActor)
	require.NoError(t, err)

	records := f.audit(t, domain.EntityNCR, ncr.ID)
	require.Len(t, records, 1)
	assert.Equal(t, domain.AuditCreate, records[0].Action)
	require.NotNil(t, records[0].NewValue)
	assert.Equal(t, "NCR-0001 Crack", *records[0].NewValue)
	assert.Equal(t, "corr-42", records[0].Metadata["correlationId"])
	require.NotNil(t, records[0].ActorName)
	assert.Equal(t, "Admin", *records[0].ActorName)

	_, err = f.coord.UpdateNCR(ctx, ncr.ID, domain.NCRPatch{
		Title:      domain.Some("Hairline crack"),
		Status:     domain.Some(domain.NCRStatusClosed),
		CostImpact: domain.Some(domain.Amount("10")),
	}, testActor)
	require.NoError(t, err)

	records = f.audit(t, domain.EntityNCR, ncr.ID)
	require.Len(t, records, 3)
	fields := map[string]string{}
	for _, rec := range records[:2] {
		require.Equal(t, domain.AuditUpdate, rec.Action)
		require.NotNil(t, rec.Field)
		fields[*rec.Field] = *rec.NewValue
	}
	assert.Equal(t, map[string]string{"title": "Hairline crack", "status": "CLOSED"}, fields)

	// re-submitting the current values writes nothing
	_, err = f.coord.UpdateNCR(ctx, ncr.ID, domain.NCRPatch{Title: domain.Some("Hairline crack")}, testActor)
	require.NoError(t, err)
	assert.Len(t, f.audit(t, domain.EntityNCR, ncr.ID), 3)

	require.NoError(t, f.coord.DeleteNCR(ctx, ncr.ID, domain.Actor{}))
	records = f.audit(t, domain.EntityNCR, ncr.ID)
	require.Len(t, records, 4)
	assert.Equal(t, domain.AuditDelete, records[0].Action)
	assert.Nil(t, records[0].ActorID)
	require.NotNil(t, records[0].OldValue)
	assert.Equal(t, "NCR-0001 Hairline crack", *records[0].OldValue)
}

func TestCoordinator_UpdateClearsFieldToNull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Museum")

	ncr, err := f.coord.CreateNCR(ctx, domain.CreateNCR{ProjectID: p.ID, Title: "Chip", CostImpact: domain.Amount("75")}, testActor)
	require.NoError(t, err)

	_, err = f.coord.UpdateNCR(ctx, ncr.ID, domain.NCRPatch{CostImpact: domain.Some(decimal.NullDecimal{})}, testActor)
	require.NoError(t, err)

	records := f.audit(t, domain.EntityNCR, ncr.ID)
	require.Equal(t, domain.AuditUpdate, records[0].Action)
	assert.Equal(t, "costImpact", *records[0].Field)
	assert.Equal(t, "75.00", *records[0].OldValue)
	assert.Nil(t, records[0].NewValue)

	got, err := f.coord.GetNCR(ctx, ncr.ID)
	require.NoError(t, err)
	assert.False(t, got.CostImpact.Valid)
	assert.Equal(t, "Chip", got.Title)
}

func TestCoordinator_ReferentialBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	busy, err := f.coord.CreateUser(ctx, domain.CreateUser{Name: "Coordinator", Email: "c@example.com"}, testActor)
	require.NoError(t, err)
	idle, err := f.coord.CreateUser(ctx, domain.CreateUser{Name: "Idle", Email: "i@example.com"}, testActor)
	require.NoError(t, err)

	for _, name := range []string{"North wing", "South wing"} {
		_, err := f.coord.CreateProject(ctx, domain.CreateProject{Name: name, CoordinatorID: str(busy.ID)}, testActor)
		require.NoError(t, err)
	}
	_, err = f.coord.CreateProduct(ctx, domain.CreateProduct{Name: "Chair", DesignerID: str(busy.ID)}, testActor)
	require.NoError(t, err)

	err = f.coord.DeleteUser(ctx, busy.ID, testActor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrReferentialBlock))
	var domainErr *domain.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, 3, domainErr.Blockers)

	_, err = f.coord.GetUser(ctx, busy.ID)
	assert.NoError(t, err)
	for _, rec := range f.audit(t, domain.EntityUser, busy.ID) {
		assert.NotEqual(t, domain.AuditDelete, rec.Action)
	}

	require.NoError(t, f.coord.DeleteUser(ctx, idle.ID, testActor))
	_, err = f.coord.GetUser(ctx, idle.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCoordinator_AuditFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.DB().Exec("DROP TABLE audit_log")
	require.NoError(t, err)

	p, err := f.coord.CreateProject(ctx, domain.CreateProject{Name: "Terminal"}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "100001", p.Number)

	got, err := f.coord.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Terminal", got.Name)

	require.Equal(t, 1, f.reporter.count())
	assert.True(t, errors.Is(f.reporter.failures[0], domain.ErrAuditWrite))
}

func TestCoordinator_ReparentingRecalculatesBothParents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from := f.project(t, "Old site")
	to := f.project(t, "New site")

	v, err := f.coord.CreateVariation(ctx, domain.CreateVariation{ProjectID: from.ID, Title: "Extra bay", Amount: domain.Amount("1200")}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "VAR-0001", v.Number)

	_, err = f.coord.UpdateVariation(ctx, v.ID, domain.VariationPatch{ProjectID: domain.Some(to.ID)}, testActor)
	require.NoError(t, err)

	oldParent, err := f.coord.GetProject(ctx, from.ID)
	require.NoError(t, err)
	newParent, err := f.coord.GetProject(ctx, to.ID)
	require.NoError(t, err)
	assertMoney(t, "0.00", oldParent.VariationTotal)
	assertMoney(t, "1200.00", newParent.VariationTotal)
}

func TestCoordinator_FilteredRollups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Stadium")

	_, err := f.coord.CreateVariation(ctx, domain.CreateVariation{ProjectID: p.ID, Title: "A", Amount: domain.Amount("100")}, testActor)
	require.NoError(t, err)
	rejected, err := f.coord.CreateVariation(ctx, domain.CreateVariation{ProjectID: p.ID, Title: "B", Amount: domain.Amount("50")}, testActor)
	require.NoError(t, err)

	po, err := f.coord.CreatePurchaseOrder(ctx, domain.CreatePurchaseOrder{ProjectID: str(p.ID), Supplier: "Concrete Co", Total: domain.Amount("900")}, testActor)
	require.NoError(t, err)

	got, err := f.coord.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assertMoney(t, "150.00", got.VariationTotal)
	assertMoney(t, "900.00", got.PurchaseOrderTotal)

	_, err = f.coord.UpdateVariation(ctx, rejected.ID, domain.VariationPatch{Status: domain.Some(domain.VariationStatusRejected)}, testActor)
	require.NoError(t, err)
	_, err = f.coord.UpdatePurchaseOrder(ctx, po.ID, domain.PurchaseOrderPatch{Status: domain.Some(domain.PurchaseOrderStatusCancelled)}, testActor)
	require.NoError(t, err)

	got, err = f.coord.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assertMoney(t, "100.00", got.VariationTotal)
	assertMoney(t, "0.00", got.PurchaseOrderTotal)
}

func TestCoordinator_ProjectWithChildrenCannotBeDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Warehouse")

	_, err := f.coord.CreateQuote(ctx, domain.CreateQuote{ProjectID: str(p.ID), Client: "Acme", Amount: domain.Amount("10")}, testActor)
	require.NoError(t, err)

	err = f.coord.DeleteProject(ctx, p.ID, testActor)
	assert.True(t, errors.Is(err, domain.ErrReferentialBlock))
}

func TestCoordinator_ValidationHappensBeforeTransaction(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.CreateProject(context.Background(), domain.CreateProject{Name: "  "}, testActor)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Zero(t, f.count(t, "sequence_counters"))

	_, err = f.coord.UpdateProject(context.Background(), "any", domain.ProjectPatch{Name: domain.Some("")}, testActor)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestCoordinator_MissingEntity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coord.UpdateQuote(ctx, "nope", domain.QuotePatch{Client: domain.Some("X")}, testActor)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = f.coord.DeleteProduct(ctx, "nope", testActor)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCoordinator_ExpiredDeadlineIsTimeout(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := f.coord.CreateProject(ctx, domain.CreateProject{Name: "Late"}, testActor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTimeout))
	assert.True(t, domain.IsRetryable(err))
	assert.Zero(t, f.count(t, "projects"))
}

func TestCoordinator_RollupsSumExactly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Cents")

	_, err := f.coord.CreateNCR(ctx, domain.CreateNCR{ProjectID: p.ID, Title: "A", CostImpact: domain.Amount("0.1")}, testActor)
	require.NoError(t, err)
	_, err = f.coord.CreateNCR(ctx, domain.CreateNCR{ProjectID: p.ID, Title: "B", CostImpact: domain.Amount("0.2")}, testActor)
	require.NoError(t, err)

	got, err := f.coord.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assertMoney(t, "0.30", got.NCRCost)
	assert.True(t, got.NCRCost.Equal(decimal.RequireFromString("0.3")))

	rounded, err := f.coord.CreateNCR(ctx, domain.CreateNCR{ProjectID: p.ID, Title: "C", CostImpact: domain.Amount("19.999")}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "20.00", rounded.CostImpact.Decimal.StringFixed(domain.MoneyScale))

	stored, err := f.coord.GetNCR(ctx, rounded.ID)
	require.NoError(t, err)
	assert.True(t, stored.CostImpact.Decimal.Equal(rounded.CostImpact.Decimal))
	assertNCRCost(t, f, p.ID, "20.30")
}

func TestCoordinator_DanglingReferenceIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coord.CreateProject(ctx, domain.CreateProject{Name: "Ghosted", CoordinatorID: str("ghost")}, testActor)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Zero(t, f.count(t, "projects"))
	assert.Zero(t, f.count(t, "sequence_counters"))

	_, err = f.coord.CreateProduct(ctx, domain.CreateProduct{Name: "Bracket", DesignerID: str("ghost")}, testActor)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Zero(t, f.count(t, "products"))

	_, err = f.coord.CreateQuote(ctx, domain.CreateQuote{ProjectID: str("ghost"), Client: "Acme"}, testActor)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Zero(t, f.count(t, "quotes"))

	_, err = f.coord.CreatePurchaseOrder(ctx, domain.CreatePurchaseOrder{ProjectID: str("ghost"), Supplier: "Steel Co"}, testActor)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Zero(t, f.count(t, "purchase_orders"))

	user, err := f.coord.CreateUser(ctx, domain.CreateUser{Name: "Coordinator", Email: "coord@example.com"}, testActor)
	require.NoError(t, err)
	p, err := f.coord.CreateProject(ctx, domain.CreateProject{Name: "Linked", CoordinatorID: str(user.ID)}, testActor)
	require.NoError(t, err)

	_, err = f.coord.UpdateProject(ctx, p.ID, domain.ProjectPatch{CoordinatorID: domain.Some(str("ghost"))}, testActor)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	got, err := f.coord.GetProject(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CoordinatorID)
	assert.Equal(t, user.ID, *got.CoordinatorID)
}

func TestCoordinator_BrokenCounterTableIsStoreFailure(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.DB().Exec("DROP TABLE sequence_counters")
	require.NoError(t, err)

	_, err = f.coord.CreateProject(context.Background(), domain.CreateProject{Name: "Orphaned"}, testActor)
	require.Error(t, err)
	assert.Equal(t, domain.KindStore, domain.KindOf(err))
	assert.False(t, errors.Is(err, domain.ErrAllocationConflict))
	assert.False(t, domain.IsRetryable(err))
	assert.Zero(t, f.count(t, "projects"))
}

func TestCoordinator_OneClockReadingPerWrite(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	f := newFixture(t, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	p := f.project(t, "Clocked")
	assert.True(t, p.CreatedAt.Equal(fixed))

	var counterUpdated time.Time
	require.NoError(t, f.store.DB().QueryRow(
		"SELECT updated_at FROM sequence_counters WHERE entity_type = ?", string(domain.EntityProject),
	).Scan(&counterUpdated))
	assert.True(t, counterUpdated.Equal(fixed), "counter updated_at %s", counterUpdated)

	ncr, err := f.coord.CreateNCR(ctx, domain.CreateNCR{ProjectID: p.ID, Title: "Dent", CostImpact: domain.Amount("5")}, testActor)
	require.NoError(t, err)
	assert.True(t, ncr.UpdatedAt.Equal(fixed))

	parent, err := f.coord.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, parent.UpdatedAt.Equal(fixed), "project updated_at %s", parent.UpdatedAt)
}

func assertNCRCost(t *testing.T, f *fixture, projectID string, want string) {
	t.Helper()
	p, err := f.coord.GetProject(context.Background(), projectID)
	require.NoError(t, err)
	assertMoney(t, want, p.NCRCost)
}
