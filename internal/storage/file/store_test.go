package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allforyou/ordertext/internal/domain/order"
)

func testOrder(number string) order.Order {
	created := time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC)
	return order.Order{
		Number: number,
		Items: []order.Item{
			{Name: "Стіл", Price: decimal.RequireFromString("1500"), Quantity: 1},
			{Name: "Стілець", Price: decimal.RequireFromString("350.50"), Quantity: 4},
		},
		DateCreated:  created,
		DateModified: created.Add(time.Hour),
	}
}

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "orders.json"))
	require.NoError(t, err)
	return s
}

func assertOrdersEqual(t *testing.T, want, got order.Order) {
	t.Helper()
	assert.Equal(t, want.Number, got.Number)
	require.Len(t, got.Items, len(want.Items))
	for i := range want.Items {
		assert.Equal(t, want.Items[i].Name, got.Items[i].Name)
		assert.True(t, want.Items[i].Price.Equal(got.Items[i].Price),
			"price %s != %s", want.Items[i].Price, got.Items[i].Price)
		assert.Equal(t, want.Items[i].Quantity, got.Items[i].Quantity)
	}
	assert.True(t, want.DateCreated.Equal(got.DateCreated))
	assert.True(t, want.DateModified.Equal(got.DateModified))
}

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	s := tempStore(t)

	all, err := s.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSaveGet_RoundTrip(t *testing.T) {
	s := tempStore(t)
	o := testOrder("1001")

	require.NoError(t, s.Save(context.Background(), o.Number, o))

	got, err := s.Get(context.Background(), "1001")
	require.NoError(t, err)
	assertOrdersEqual(t, o, *got)
}

func TestRoundTrip_AcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	s, err := Open(path)
	require.NoError(t, err)

	o := testOrder("1001")
	require.NoError(t, s.Save(context.Background(), o.Number, o))

	reopened, err := Open(path)
	require.NoError(t, err)

	got, err := reopened.Get(context.Background(), "1001")
	require.NoError(t, err)
	assertOrdersEqual(t, o, *got)
}

func TestSave_OverwriteKeepsOneRecord(t *testing.T) {
	s := tempStore(t)

	o1 := testOrder("A")
	o2 := testOrder("A")
	o2.Items = []order.Item{{Name: "Шафа", Price: decimal.RequireFromString("8000"), Quantity: 1}}

	require.NoError(t, s.Save(context.Background(), "A", o1))
	require.NoError(t, s.Save(context.Background(), "A", o2))

	got, err := s.Get(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "Шафа", got.Items[0].Name)
	assert.Equal(t, 1, s.Len())
}

func TestGet_NotFound(t *testing.T) {
	s := tempStore(t)

	_, err := s.Get(context.Background(), "missing")
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestExists(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Save(context.Background(), "A", testOrder("A")))

	ok, err := s.Exists(context.Background(), "A")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(context.Background(), "B")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_CorruptBlobSurfaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"A": {"items": [nonsense`), 0o644))

	_, err := Open(path)
	var cErr *order.CorruptStoreError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, path, cErr.Path)

	// The bad blob stays on disk for recovery.
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestGetAll_ReturnsCopies(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Save(context.Background(), "A", testOrder("A")))

	all, err := s.GetAll(context.Background())
	require.NoError(t, err)

	mutated := all["A"]
	mutated.Items[0].Name = "hacked"

	got, err := s.Get(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "Стіл", got.Items[0].Name)
}

func TestDecode_BareNumberPrices(t *testing.T) {
	// Blob written by the browser original: prices as JSON numbers.
	blob := `{"7": {"orderNumber": "7", "items": [{"name": "Стіл", "price": 1500.5, "quantity": 2}],
		"dateCreated": "2025-03-10T09:15:00Z", "dateModified": "2025-03-10T09:15:00Z"}}`
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(blob), 0o644))

	s, err := Open(path)
	require.NoError(t, err)

	got, err := s.Get(context.Background(), "7")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1500.5").Equal(got.Items[0].Price))
}

func TestFlush_Deterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), "B", testOrder("B")))
	require.NoError(t, s.Save(context.Background(), "A", testOrder("A")))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	// Re-saving identical state produces identical bytes (sorted keys).
	require.NoError(t, s.Save(context.Background(), "A", testOrder("A")))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
