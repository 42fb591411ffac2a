//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/allforyou/ordertext/internal/domain/order"
	"github.com/allforyou/ordertext/internal/storage/postgres"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := testpostgres.Run(ctx,
		"postgres:16-alpine",
		testpostgres.WithDatabase("ordertext"),
		testpostgres.WithUsername("test"),
		testpostgres.WithPassword("test"),
		testpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.RunMigrations(ctx, pool))
	return pool
}

func testOrder(number string) order.Order {
	now := time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC)
	return order.Order{
		Number: number,
		Items: []order.Item{
			{Name: "Стіл", Price: decimal.RequireFromString("1500"), Quantity: 1},
			{Name: "Стілець", Price: decimal.RequireFromString("350.50"), Quantity: 4},
		},
		DateCreated:  now,
		DateModified: now,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := postgres.NewStore(setupPool(t))
	ctx := context.Background()

	o := testOrder("1001")
	require.NoError(t, store.Save(ctx, o.Number, o))

	got, err := store.Get(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, o.Number, got.Number)
	require.Len(t, got.Items, 2)
	assert.True(t, o.Items[1].Price.Equal(got.Items[1].Price))
	assert.True(t, o.DateCreated.Equal(got.DateCreated))
}

func TestStore_OverwriteKeepsOneRow(t *testing.T) {
	store := postgres.NewStore(setupPool(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "A", testOrder("A")))

	o2 := testOrder("A")
	o2.Items = []order.Item{{Name: "Шафа", Price: decimal.RequireFromString("8000"), Quantity: 1}}
	o2.DateModified = o2.DateModified.Add(time.Hour)
	require.NoError(t, store.Save(ctx, "A", o2))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, "Шафа", all["A"].Items[0].Name)
}

func TestStore_NotFoundAndExists(t *testing.T) {
	store := postgres.NewStore(setupPool(t))
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, order.ErrNotFound)

	ok, err := store.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, "B", testOrder("B")))
	ok, err = store.Exists(ctx, "B")
	require.NoError(t, err)
	assert.True(t, ok)
}
