package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/salesrep/cart/pkg/request"
	"github.com/Alturino/salesrep/cart/pkg/response"
	"github.com/Alturino/salesrep/internal/cache"
	inErrors "github.com/Alturino/salesrep/internal/errors"
	"github.com/Alturino/salesrep/internal/remote"
	"github.com/Alturino/salesrep/internal/state"
	"github.com/Alturino/salesrep/internal/testutil"
)

type cartFixture struct {
	svc      CartService
	source   *testutil.ProductSource
	products cache.Products
}

func newCartFixture(t *testing.T, products ...remote.Product) cartFixture {
	t.Helper()
	st := testutil.NewStore(t)
	source := testutil.NewProductSource()
	source.Set("cat-1", products...)
	cached := cache.NewProducts(st, source)
	require.NoError(t, cached.Refresh(testutil.Context(t), "cat-1", ""))
	return cartFixture{svc: NewCartService(st, cached), source: source, products: cached}
}

func (f cartFixture) restock(t *testing.T, products ...remote.Product) {
	t.Helper()
	f.source.Set("cat-1", products...)
	require.NoError(t, f.products.Refresh(testutil.Context(t), "cat-1", ""))
}

func quantities(cart response.Cart) map[string]int32 {
	result := map[string]int32{}
	for _, item := range cart.CartItems {
		result[item.ProductID] = item.Quantity
	}
	return result
}

func nextCart(t *testing.T, ch <-chan state.State[response.Cart]) state.State[response.Cart] {
	t.Helper()
	select {
	case st, ok := <-ch:
		require.True(t, ok, "cart feed closed")
		return st
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for cart feed")
	}
	return state.State[response.Cart]{}
}

func TestCartServiceAddItem(t *testing.T) {
	c := testutil.Context(t)

	t.Run("should add quantities and reject a total above stock", func(t *testing.T) {
		f := newCartFixture(t, testutil.Product("p", "cat-1", "2.50", 10))

		require.NoError(t, f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 4}))
		require.NoError(t, f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 4}))
		err := f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 4})

		require.ErrorIs(t, err, inErrors.ErrStockExceeded)
		assert.Contains(t, err.Error(), "total quantity=12")
		cart, err := f.svc.Snapshot(c)
		require.NoError(t, err)
		assert.Equal(t, map[string]int32{"p": 8}, quantities(cart))
		assert.Equal(t, "20", cart.Total.String())
	})

	t.Run("should reject a first add above stock", func(t *testing.T) {
		f := newCartFixture(t, testutil.Product("p", "cat-1", "1.00", 3))

		err := f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 4})

		require.ErrorIs(t, err, inErrors.ErrStockExceeded)
		assert.Contains(t, err.Error(), "quantity=4 exceeds stock=3")
		assert.NotContains(t, err.Error(), "total")
	})

	t.Run("should reject a non positive quantity", func(t *testing.T) {
		f := newCartFixture(t, testutil.Product("p", "cat-1", "1.00", 3))
		for _, quantity := range []int32{0, -1} {
			err := f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: quantity})
			assert.ErrorIs(t, err, inErrors.ErrInvalidQuantity)
		}
	})

	t.Run("should reject a product missing from the catalog", func(t *testing.T) {
		f := newCartFixture(t)
		err := f.svc.AddItem(c, request.AddItem{ProductID: "ghost", Quantity: 1})
		assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
	})

	t.Run("should validate against the restocked catalog", func(t *testing.T) {
		f := newCartFixture(t, testutil.Product("p", "cat-1", "1.00", 2))
		require.Error(t, f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 5}))

		f.restock(t, testutil.Product("p", "cat-1", "1.00", 5))
		assert.NoError(t, f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 5}))
	})
}

func TestCartServiceUpdateQuantity(t *testing.T) {
	c := testutil.Context(t)

	t.Run("should set the quantity absolutely", func(t *testing.T) {
		f := newCartFixture(t, testutil.Product("p", "cat-1", "1.00", 10))
		require.NoError(t, f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 4}))
		require.NoError(t, f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 4}))

		require.NoError(t, f.svc.UpdateQuantity(c, request.UpdateQuantity{ProductID: "p", Quantity: 9}))

		cart, err := f.svc.Snapshot(c)
		require.NoError(t, err)
		assert.Equal(t, map[string]int32{"p": 9}, quantities(cart))
	})

	t.Run("should delete the line on zero and then report not in cart", func(t *testing.T) {
		f := newCartFixture(t, testutil.Product("p", "cat-1", "1.00", 10))
		require.NoError(t, f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 1}))

		require.NoError(t, f.svc.UpdateQuantity(c, request.UpdateQuantity{ProductID: "p", Quantity: 0}))
		cart, err := f.svc.Snapshot(c)
		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())

		err = f.svc.UpdateQuantity(c, request.UpdateQuantity{ProductID: "p", Quantity: 0})
		assert.ErrorIs(t, err, inErrors.ErrNotInCart)
	})

	t.Run("should check failures in order", func(t *testing.T) {
		f := newCartFixture(t, testutil.Product("p", "cat-1", "1.00", 3), testutil.Product("q", "cat-1", "1.00", 3))
		require.NoError(t, f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 1}))
		require.NoError(t, f.svc.AddItem(c, request.AddItem{ProductID: "q", Quantity: 1}))

		testCases := []struct {
			name     string
			param    request.UpdateQuantity
			expected error
		}{
			{
				name:     "not in cart wins over a negative quantity",
				param:    request.UpdateQuantity{ProductID: "absent", Quantity: -1},
				expected: inErrors.ErrNotInCart,
			},
			{
				name:     "negative quantity",
				param:    request.UpdateQuantity{ProductID: "p", Quantity: -1},
				expected: inErrors.ErrInvalidQuantity,
			},
			{
				name:     "stock exceeded",
				param:    request.UpdateQuantity{ProductID: "p", Quantity: 4},
				expected: inErrors.ErrStockExceeded,
			},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				assert.ErrorIs(t, f.svc.UpdateQuantity(c, tc.param), tc.expected)
			})
		}

		_, err := f.products.Clear(c, "cat-1")
		require.NoError(t, err)
		f.restock(t, testutil.Product("q", "cat-1", "1.00", 3))
		err = f.svc.UpdateQuantity(c, request.UpdateQuantity{ProductID: "p", Quantity: 1})
		assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
		err = f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 1})
		assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
	})
}

func TestCartServiceStockInvariant(t *testing.T) {
	c := testutil.Context(t)
	f := newCartFixture(t, testutil.Product("p", "cat-1", "1.00", 6))

	operations := []func() error{
		func() error { return f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 2}) },
		func() error { return f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 5}) },
		func() error { return f.svc.UpdateQuantity(c, request.UpdateQuantity{ProductID: "p", Quantity: 7}) },
		func() error { return f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 4}) },
		func() error { return f.svc.UpdateQuantity(c, request.UpdateQuantity{ProductID: "p", Quantity: 1}) },
		func() error { return f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 5}) },
		func() error { return f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 1}) },
	}
	for i, operation := range operations {
		err := operation()
		cart, snapshotErr := f.svc.Snapshot(c)
		require.NoError(t, snapshotErr)
		for _, item := range cart.CartItems {
			assert.LessOrEqual(t, item.Quantity, item.Stock, "operation %d", i)
		}
		if err != nil {
			assert.ErrorIs(t, err, inErrors.ErrStockExceeded, "operation %d", i)
		}
	}
	cart, err := f.svc.Snapshot(c)
	require.NoError(t, err)
	assert.Equal(t, map[string]int32{"p": 6}, quantities(cart))
}

func TestCartServiceRemoveAndClear(t *testing.T) {
	c := testutil.Context(t)
	f := newCartFixture(t, testutil.Product("p", "cat-1", "1.00", 3), testutil.Product("q", "cat-1", "1.00", 3))
	require.NoError(t, f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 1}))
	require.NoError(t, f.svc.AddItem(c, request.AddItem{ProductID: "q", Quantity: 2}))

	require.NoError(t, f.svc.RemoveItem(c, "p"))
	require.NoError(t, f.svc.RemoveItem(c, "p"))
	cart, err := f.svc.Snapshot(c)
	require.NoError(t, err)
	assert.Equal(t, map[string]int32{"q": 2}, quantities(cart))

	deleted, err := f.svc.ClearCart(c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	deleted, err = f.svc.ClearCart(c)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestCartServiceObserveCart(t *testing.T) {
	c, cancel := context.WithCancel(testutil.Context(t))
	defer cancel()
	f := newCartFixture(t, testutil.Product("p", "cat-1", "1.25", 5), testutil.Product("q", "cat-1", "3.00", 5))

	live := f.svc.ObserveCart(c)
	initial := nextCart(t, live)
	require.True(t, initial.IsSuccess())
	assert.True(t, initial.Data.IsEmpty())

	require.NoError(t, f.svc.AddItem(c, request.AddItem{ProductID: "p", Quantity: 2}))
	added := nextCart(t, live)
	require.True(t, added.IsSuccess())
	require.Len(t, added.Data.CartItems, 1)
	assert.Equal(t, "2.5", added.Data.CartItems[0].Subtotal.String())

	t.Run("should re-join when the catalog changes", func(t *testing.T) {
		repriced := testutil.Product("p", "cat-1", "2.00", 5)
		f.restock(t, repriced, testutil.Product("q", "cat-1", "3.00", 5))
		updated := nextCart(t, live)
		require.True(t, updated.IsSuccess())
		assert.Equal(t, "4", updated.Data.Total.String())
	})

	t.Run("should drop lines whose product left the catalog", func(t *testing.T) {
		_, err := f.products.Clear(c, "cat-1")
		require.NoError(t, err)
		dropped := nextCart(t, live)
		require.True(t, dropped.IsSuccess())
		assert.True(t, dropped.Data.IsEmpty())
	})

	t.Run("should emit nothing after zero deletion", func(t *testing.T) {
		f.restock(t, testutil.Product("p", "cat-1", "2.00", 5))
		restocked := nextCart(t, live)
		require.Len(t, restocked.Data.CartItems, 1)

		require.NoError(t, f.svc.UpdateQuantity(c, request.UpdateQuantity{ProductID: "p", Quantity: 0}))
		removed := nextCart(t, live)
		assert.True(t, removed.Data.IsEmpty())
	})
}
