package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/apparel-shop-backend/internal/storage"
)

type failingStorage struct {
	*storage.MemoryStore
	failSet bool
}

func (f *failingStorage) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func tee(productID int, size, color string, qty int) Item {
	return Item{ProductID: productID, Name: "Crew Tee", UnitPrice: 450, Quantity: qty, Size: size, Color: color}
}

func TestAddItem_MergesSameVariant(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, storage.NewMemoryStore(), "s1")
	require.NoError(t, err)

	for _, q := range []int{1, 2, 4} {
		_, err := st.AddItem(ctx, tee(7, "M", "Black", q))
		require.NoError(t, err)
	}

	items := st.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
	assert.NotEmpty(t, items[0].ID)
}

func TestAddItem_DistinctVariantsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, storage.NewMemoryStore(), "s1")
	require.NoError(t, err)

	_, _ = st.AddItem(ctx, tee(7, "M", "Black", 1))
	_, _ = st.AddItem(ctx, tee(7, "L", "Black", 1))
	_, _ = st.AddItem(ctx, tee(7, "M", "White", 1))
	_, _ = st.AddItem(ctx, tee(8, "M", "Black", 1))

	items := st.Items()
	require.Len(t, items, 4)
	assert.Equal(t, "L", items[1].Size)
	assert.Equal(t, "White", items[2].Color)
	assert.Equal(t, 8, items[3].ProductID)
}

func TestAddItem_ZeroQuantityCountsAsOne(t *testing.T) {
	ctx := context.Background()
	st, _ := Open(ctx, storage.NewMemoryStore(), "s1")

	line, err := st.AddItem(ctx, tee(1, "S", "Red", 0))
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)
}

func TestUpdateQuantity_NonPositiveRemoves(t *testing.T) {
	ctx := context.Background()
	for _, q := range []int{0, -5} {
		st, _ := Open(ctx, storage.NewMemoryStore(), "s1")
		line, _ := st.AddItem(ctx, tee(1, "S", "Red", 3))

		require.NoError(t, st.UpdateQuantity(ctx, line.ID, q))
		assert.True(t, st.IsEmpty(), "quantity %d should remove the line", q)
	}
}

func TestUpdateQuantity_ReplacesQuantity(t *testing.T) {
	ctx := context.Background()
	st, _ := Open(ctx, storage.NewMemoryStore(), "s1")
	line, _ := st.AddItem(ctx, tee(1, "S", "Red", 3))

	require.NoError(t, st.UpdateQuantity(ctx, line.ID, 5))
	assert.Equal(t, 5, st.Items()[0].Quantity)

	require.NoError(t, st.UpdateQuantity(ctx, "missing", 9))
	assert.Equal(t, 5, st.Items()[0].Quantity)
}

func TestRemoveItem_UnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	st, _ := Open(ctx, storage.NewMemoryStore(), "s1")
	_, _ = st.AddItem(ctx, tee(1, "S", "Red", 1))

	require.NoError(t, st.RemoveItem(ctx, "nope"))
	assert.Len(t, st.Items(), 1)
}

func TestTotalPriceAndCount(t *testing.T) {
	ctx := context.Background()
	st, _ := Open(ctx, storage.NewMemoryStore(), "s1")
	_, _ = st.AddItem(ctx, Item{ProductID: 1, UnitPrice: 300, Quantity: 2, Size: "M", Color: "Navy"})
	_, _ = st.AddItem(ctx, Item{ProductID: 2, UnitPrice: 340, Quantity: 1, Size: "L", Color: "Grey"})

	assert.Equal(t, 940, st.TotalPrice())
	assert.Equal(t, 3, st.Count())
}

func TestPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()

	st, _ := Open(ctx, kv, "s1")
	_, _ = st.AddItem(ctx, tee(3, "XL", "Olive", 2))

	reopened, err := Open(ctx, kv, "s1")
	require.NoError(t, err)
	require.Len(t, reopened.Items(), 1)
	assert.Equal(t, 2, reopened.Items()[0].Quantity)

	other, _ := Open(ctx, kv, "s2")
	assert.True(t, other.IsEmpty())

	require.NoError(t, reopened.Clear(ctx))
	again, _ := Open(ctx, kv, "s1")
	assert.True(t, again.IsEmpty())
}

func TestOpen_CorruptSlotYieldsEmptyCart(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, "cart:s1", []byte("{not json")))

	st, err := Open(ctx, kv, "s1")
	require.NoError(t, err)
	assert.True(t, st.IsEmpty())
}

func TestFailedWriteLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	kv := &failingStorage{MemoryStore: storage.NewMemoryStore()}
	st, _ := Open(ctx, kv, "s1")
	_, err := st.AddItem(ctx, tee(1, "S", "Red", 1))
	require.NoError(t, err)

	kv.failSet = true
	_, err = st.AddItem(ctx, tee(1, "S", "Red", 1))
	require.Error(t, err)
	assert.Equal(t, 1, st.Items()[0].Quantity)
}

// stubCatalog prices every product in prices and reports each variant as
// available.
type stubCatalog struct {
	prices    map[int]int
	available bool
}

func (s stubCatalog) Price(_ context.Context, id int) (int, bool, error) {
	p, ok := s.prices[id]
	return p, ok, nil
}

func (s stubCatalog) Available(context.Context, int, string, string) (bool, error) {
	return s.available, nil
}

func TestService_AddToCartRejectsUnavailable(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), stubCatalog{prices: map[int]int{1: 450}, available: false})
	_, err := svc.AddToCart(context.Background(), "s1", tee(1, "S", "Red", 1))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestService_AddToCartUsesCatalogPrice(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), stubCatalog{prices: map[int]int{1: 500}, available: true})
	ctx := context.Background()

	item := tee(1, "S", "Red", 2)
	item.UnitPrice = 1
	st, err := svc.AddToCart(ctx, "s1", item)
	require.NoError(t, err)
	assert.Equal(t, 500, st.Items()[0].UnitPrice)
	assert.Equal(t, 1000, st.TotalPrice())

	_, err = svc.AddToCart(ctx, "s1", tee(7, "S", "Red", 1))
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestService_RequiresSession(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), nil)
	_, err := svc.GetCart(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)
}
