package persistence

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/projectledger/internal/domain"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.Migrate(context.Background())
	require.NoError(t, err)
	return store
}

func TestDialect_Rebind(t *testing.T) {
	query := "UPDATE t SET a = $1, b = $2 WHERE id = $10 AND c = $1"

	assert.Equal(t, query, DialectPostgres.Rebind(query))
	assert.Equal(t, "UPDATE t SET a = ?1, b = ?2 WHERE id = ?10 AND c = ?1", DialectSQLite.Rebind(query))
	assert.Equal(t, " FOR UPDATE", DialectPostgres.ForUpdate())
	assert.Empty(t, DialectSQLite.ForUpdate())
	assert.Equal(t, " FOR SHARE", DialectPostgres.ForShare())
	assert.Empty(t, DialectSQLite.ForShare())
}

func TestStore_MigrateIsIdempotent(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer store.Close()

	first, err := store.Migrate(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, first.Applied)

	second, err := store.Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second.Applied)

	down, err := store.MigrateDown(context.Background())
	require.NoError(t, err)
	assert.Len(t, down.Applied, len(first.Applied))

	again, err := store.Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Applied, again.Applied)
}

func TestCounterRepository_Increment(t *testing.T) {
	store := newSQLiteStore(t)
	repo := NewCounterRepository(store)
	ctx := context.Background()
	spec := domain.SequenceSpec{EntityType: domain.EntityNCR, Prefix: "NCR-", PadWidth: 4, Start: 1}
	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	for want := int64(1); want <= 3; want++ {
		tx, err := store.Begin(ctx)
		require.NoError(t, err)
		counter, err := repo.Increment(ctx, tx, spec, now)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		assert.Equal(t, want, counter.LastValue)
	}

	// a rolled back increment leaves no gap
	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	_, err = repo.Increment(ctx, tx, spec, now)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	counter, err := repo.Find(ctx, domain.EntityNCR)
	require.NoError(t, err)
	assert.Equal(t, "NCR-0003", counter.Current())

	_, err = repo.Find(ctx, domain.EntityQuote)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	var updated time.Time
	require.NoError(t, store.DB().QueryRow(
		"SELECT updated_at FROM sequence_counters WHERE entity_type = ?", string(domain.EntityNCR),
	).Scan(&updated))
	assert.True(t, updated.Equal(now))
}

func TestAuditRepository_ListOrderAndLimit(t *testing.T) {
	store := newSQLiteStore(t)
	repo := NewAuditRepository(store)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var records []*domain.AuditRecord
	for i := 0; i < 4; i++ {
		field := []string{"a", "b", "c", "d"}[i]
		records = append(records, &domain.AuditRecord{
			ID:         field,
			Timestamp:  base.Add(time.Duration(i/2) * time.Minute),
			Action:     domain.AuditUpdate,
			EntityType: domain.EntityProject,
			EntityID:   "p1",
			Field:      &field,
			Metadata:   map[string]string{"correlationId": "c-" + field},
		})
	}
	records = append(records, &domain.AuditRecord{
		ID: "other", Timestamp: base, Action: domain.AuditCreate, EntityType: domain.EntityUser, EntityID: "u1",
	})

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, tx, records))
	require.NoError(t, tx.Commit())

	got, err := repo.List(ctx, domain.AuditFilter{EntityType: domain.EntityProject, EntityID: "p1"})
	require.NoError(t, err)
	require.Len(t, got, 4)
	ids := []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	assert.Equal(t, []string{"d", "c", "b", "a"}, ids)
	assert.Equal(t, "c-d", got[0].Metadata["correlationId"])

	limited, err := repo.List(ctx, domain.AuditFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestAuditRepository_RejectedAppendKeepsTransactionUsable(t *testing.T) {
	store := newSQLiteStore(t)
	audit := NewAuditRepository(store)
	users := NewUserRepository(store)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)

	user := &domain.User{Name: "Dana", Email: "dana@example.com", Role: domain.UserRoleStaff}
	user.Stamp("u1", time.Now().UTC())
	require.NoError(t, users.Insert(ctx, tx, user))

	dup := []*domain.AuditRecord{
		{ID: "same", Timestamp: time.Now(), Action: domain.AuditCreate, EntityType: domain.EntityUser, EntityID: "u1"},
		{ID: "same", Timestamp: time.Now(), Action: domain.AuditCreate, EntityType: domain.EntityUser, EntityID: "u1"},
	}
	err = audit.Append(ctx, tx, dup)
	assert.True(t, errors.Is(err, domain.ErrAuditWrite))
	require.NoError(t, tx.Commit())

	found, err := users.FindByID(ctx, store.DB(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", found.Email)

	records, err := audit.List(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReferenceGuard_CountReferences(t *testing.T) {
	store := newSQLiteStore(t)
	guard := NewReferenceGuard(store)
	ctx := context.Background()
	now := time.Now().UTC()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	user := &domain.User{Name: "Lee", Email: "lee@example.com", Role: domain.UserRoleDesigner}
	user.Stamp("u1", now)
	require.NoError(t, NewUserRepository(store).Insert(ctx, tx, user))

	designer := "u1"
	product := &domain.Product{Name: "Lamp", DesignerID: &designer}
	product.Stamp("prod1", now)
	require.NoError(t, NewProductRepository(store).Insert(ctx, tx, product))

	count, err := guard.CountReferences(ctx, tx, domain.EntityUser, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = guard.CountReferences(ctx, tx, domain.EntityNCR, "n1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAggregateRepository_MissingParent(t *testing.T) {
	store := newSQLiteStore(t)
	repo := NewAggregateRepository(store)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	err = repo.LockParent(ctx, tx, domain.AggregateDependencies[0], "ghost")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestReferenceGuard_LockReferenced(t *testing.T) {
	store := newSQLiteStore(t)
	guard := NewReferenceGuard(store)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	user := &domain.User{Name: "Lee", Email: "lee@example.com", Role: domain.UserRoleDesigner}
	user.Stamp("u1", time.Now().UTC())
	require.NoError(t, NewUserRepository(store).Insert(ctx, tx, user))

	designer := domain.ReferencesFrom(domain.EntityProduct)[0]
	require.NoError(t, guard.LockReferenced(ctx, tx, designer, "u1"))

	err = guard.LockReferenced(ctx, tx, designer, "ghost")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "ghost")
}

func TestAggregateRepository_SumIsExact(t *testing.T) {
	store := newSQLiteStore(t)
	repo := NewAggregateRepository(store)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	project := &domain.Project{Name: "Exact", Client: "Acme", Status: domain.ProjectStatusActive}
	project.Stamp("p1", now)
	project.AssignNumber("100001")
	require.NoError(t, NewProjectRepository(store).Insert(ctx, tx, project))

	ncrs := NewNCRRepository(store)
	for i, cost := range []decimal.NullDecimal{domain.Amount("0.1"), domain.Amount("0.2"), {}} {
		ncr := &domain.NCR{ProjectID: "p1", Title: "n", Status: domain.NCRStatusOpen, CostImpact: cost}
		ncr.Stamp(fmt.Sprintf("n%d", i), now)
		ncr.AssignNumber(fmt.Sprintf("NCR-%04d", i+1))
		require.NoError(t, ncrs.Insert(ctx, tx, ncr))
	}

	dep := domain.AggregateDependencies[0]
	total, err := repo.Aggregate(ctx, tx, dep, "p1")
	require.NoError(t, err)
	assert.Equal(t, "0.30", total.StringFixed(domain.MoneyScale))

	require.NoError(t, repo.Store(ctx, tx, dep, "p1", total, now))
	var stored string
	require.NoError(t, tx.QueryRowContext(ctx, "SELECT ncr_cost FROM projects WHERE id = ?", "p1").Scan(&stored))
	assert.Equal(t, "0.30", stored)
}

func TestStore_IsConflict(t *testing.T) {
	store := &Store{dialect: DialectPostgres}

	serialization := &pq.Error{Code: "40001"}
	assert.True(t, store.IsConflict(serialization))
	assert.True(t, store.IsConflict(domain.NewAllocationConflict(domain.EntityNCR, serialization)))
	assert.True(t, store.IsConflict(fmt.Errorf("increment: %w", &pq.Error{Code: "40P01"})))

	assert.False(t, store.IsConflict(&pq.Error{Code: "42P01"}))
	assert.False(t, store.IsConflict(errors.New("no such table: sequence_counters")))
}
