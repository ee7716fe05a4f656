//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rentloop/orders-api/internal/domains/orders/domain"
	"github.com/rentloop/orders-api/internal/domains/orders/ports"
	"github.com/rentloop/orders-api/internal/platform/migrations"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("orders_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func newPlacedOrder(t *testing.T, id, number string) *domain.Order {
	t.Helper()
	items := []domain.OrderItem{{
		ProductID: "prod-1",
		Name:      "Linen Suit",
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(45),
	}}
	address := domain.Address{Recipient: "Mina Park", Line1: "12 Hanok Lane", City: "Seoul", PostalCode: "04524"}
	amounts := domain.Amounts{
		Subtotal:    decimal.NewFromInt(45),
		Tax:         decimal.NewFromInt(5),
		TotalAmount: decimal.NewFromInt(50),
	}
	order, err := domain.NewOrder(id, number, "buyer-1", "seller-1", items, address, amounts, time.Now().UTC())
	require.NoError(t, err)
	return order
}

func TestRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order := newPlacedOrder(t, "order-1", "ORD-2001")
	created, err := repo.Create(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Entity.Version)
	assert.Equal(t, domain.StatusOrdered, created.Entity.Status)

	fetched, err := repo.GetByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, "ORD-2001", fetched.Entity.Number)
	assert.Equal(t, "Linen Suit", fetched.Entity.Items[0].Name)
	assert.True(t, fetched.Entity.Amounts.TotalAmount.Equal(decimal.NewFromInt(50)))
	require.Len(t, fetched.Entity.Timeline, 5)
	assert.NotNil(t, fetched.Entity.Timeline[0].CompletedAt)

	byNumber, err := repo.GetByNumber(ctx, "ORD-2001")
	require.NoError(t, err)
	assert.Equal(t, "order-1", byNumber.Entity.ID)

	_, err = repo.Create(ctx, order)
	assert.ErrorIs(t, err, ports.ErrDuplicateOrder)
}

func TestRepository_UpdateCompareAndSwap(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order := newPlacedOrder(t, "order-1", "ORD-2001")
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	mutated := order.Clone()
	_, err = mutated.ApplyTransition(domain.TransitionConfirmPayment, domain.RoleSeller, time.Now().UTC())
	require.NoError(t, err)

	updated, err := repo.Update(ctx, mutated, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Entity.Version)
	assert.Equal(t, domain.StatusShipping, updated.Entity.Status)
	assert.NotNil(t, updated.Entity.Timeline[1].CompletedAt)

	// Fresh read: the serialized timeline must survive the update statement.
	reloaded, err := repo.GetByID(ctx, "order-1")
	require.NoError(t, err)
	require.Len(t, reloaded.Entity.Timeline, 5)
	assert.Equal(t, domain.PhaseShipping, reloaded.Entity.Timeline[1].Phase)
	assert.NotNil(t, reloaded.Entity.Timeline[1].CompletedAt)
	assert.Nil(t, reloaded.Entity.Timeline[2].CompletedAt)

	// Stale writer still holds version 1 and must lose.
	_, err = repo.Update(ctx, mutated, 1)
	assert.ErrorIs(t, err, ports.ErrVersionConflict)

	_, err = repo.Update(ctx, newPlacedOrder(t, "missing", "ORD-9999"), 1)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_SchedulePersistence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order := newPlacedOrder(t, "order-1", "ORD-2001")
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	date := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	require.NoError(t, order.SetSchedule(domain.Schedule{
		Kind:     domain.ScheduleReceive,
		Date:     date,
		Location: "Mapo pickup point",
		Notes:    "bring ID",
	}))
	updated, err := repo.Update(ctx, order, 1)
	require.NoError(t, err)
	require.NotNil(t, updated.Entity.Schedules.Receive)
	assert.Equal(t, "Mapo pickup point", updated.Entity.Schedules.Receive.Location)
	assert.True(t, date.Equal(updated.Entity.Schedules.Receive.Date))
	assert.Nil(t, updated.Entity.Schedules.Return)
}

func TestRepository_DueSchedules(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	soon := newPlacedOrder(t, "order-soon", "ORD-3001")
	require.NoError(t, soon.SetSchedule(domain.Schedule{
		Kind:     domain.ScheduleReceive,
		Date:     now.Add(6 * time.Hour),
		Location: "Mapo pickup point",
	}))
	_, err := repo.Create(ctx, soon)
	require.NoError(t, err)

	later := newPlacedOrder(t, "order-later", "ORD-3002")
	require.NoError(t, later.SetSchedule(domain.Schedule{
		Kind:     domain.ScheduleReturn,
		Date:     now.Add(96 * time.Hour),
		Location: "Mapo dropoff point",
	}))
	_, err = repo.Create(ctx, later)
	require.NoError(t, err)

	unscheduled := newPlacedOrder(t, "order-bare", "ORD-3003")
	_, err = repo.Create(ctx, unscheduled)
	require.NoError(t, err)

	due, err := repo.DueSchedules(ctx, now, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "order-soon", due[0].Entity.ID)
}

func TestRepository_ListFiltersAndPages(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		order := newPlacedOrder(t, fmt.Sprintf("order-%d", i), fmt.Sprintf("ORD-200%d", i))
		_, err := repo.Create(ctx, order)
		require.NoError(t, err)
	}

	page, err := repo.List(ctx, ports.ListFilter{ActorID: "buyer-1", Role: domain.RoleBuyer, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.True(t, page.HasMore)
	require.NotEmpty(t, page.NextCursor)

	rest, err := repo.List(ctx, ports.ListFilter{ActorID: "buyer-1", Role: domain.RoleBuyer, Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Orders, 1)
	assert.False(t, rest.HasMore)

	none, err := repo.List(ctx, ports.ListFilter{ActorID: "buyer-2", Role: domain.RoleBuyer})
	require.NoError(t, err)
	assert.Empty(t, none.Orders)

	filtered, err := repo.List(ctx, ports.ListFilter{
		ActorID:  "seller-1",
		Role:     domain.RoleSeller,
		Statuses: []domain.Status{domain.StatusShipping},
	})
	require.NoError(t, err)
	assert.Empty(t, filtered.Orders)
}

func TestReviewDirectory_HasReview(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	dir := NewReviewDirectory(db)
	ctx := context.Background()

	has, err := dir.HasReview(ctx, "ORD-2001")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, dir.RecordReview(ctx, "rev-1", "ORD-2001", "buyer-1"))

	has, err = dir.HasReview(ctx, "ORD-2001")
	require.NoError(t, err)
	assert.True(t, has)
}
