package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/salesrep/catalog/pkg/response"
	"github.com/Alturino/salesrep/internal/constants"
	inErrors "github.com/Alturino/salesrep/internal/errors"
	"github.com/Alturino/salesrep/internal/remote"
	"github.com/Alturino/salesrep/internal/state"
	"github.com/Alturino/salesrep/internal/testutil"
)

func productIds(products []response.Product) []string {
	ids := make([]string, len(products))
	for i, product := range products {
		ids[i] = product.ID
	}
	return ids
}

func next[T any](t *testing.T, ch <-chan state.State[T]) state.State[T] {
	t.Helper()
	select {
	case st, ok := <-ch:
		require.True(t, ok, "live query closed")
		return st
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for live query")
	}
	return state.State[T]{}
}

func TestProductsRefresh(t *testing.T) {
	c := testutil.Context(t)

	t.Run("should upsert every product and order by price desc then id", func(t *testing.T) {
		source := testutil.NewProductSource()
		source.Set("cat-1",
			testutil.Product("b", "cat-1", "10.00", 5),
			testutil.Product("a", "cat-1", "10.00", 3),
			testutil.Product("c", "cat-1", "99.99", 1),
			testutil.Product("d", "cat-1", "0.50", 0),
		)
		products := NewProducts(testutil.NewStore(t), source)

		require.NoError(t, products.Refresh(c, "cat-1", ""))

		actual, err := products.List(c, "cat-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b", "d"}, productIds(actual))
		assert.True(t, decimal.RequireFromString("99.99").Equal(actual[0].Price))
	})

	t.Run("should be idempotent and overwrite with the latest response", func(t *testing.T) {
		source := testutil.NewProductSource()
		source.Set("cat-1", testutil.Product("a", "cat-1", "10.00", 5))
		products := NewProducts(testutil.NewStore(t), source)

		require.NoError(t, products.Refresh(c, "cat-1", ""))
		require.NoError(t, products.Refresh(c, "cat-1", ""))

		updated := testutil.Product("a", "cat-1", "12.50", 2)
		updated.Name = "renamed"
		source.Set("cat-1", updated)
		require.NoError(t, products.Refresh(c, "cat-1", ""))

		actual, err := products.List(c, "cat-1")
		require.NoError(t, err)
		require.Len(t, actual, 1)
		assert.Equal(t, "renamed", actual[0].Name)
		assert.Equal(t, int32(2), actual[0].Stock)
		assert.True(t, decimal.RequireFromString("12.50").Equal(actual[0].Price))
	})

	t.Run("should leave the cache untouched when the fetch fails", func(t *testing.T) {
		source := testutil.NewProductSource()
		source.Set("cat-1", testutil.Product("a", "cat-1", "10.00", 5))
		products := NewProducts(testutil.NewStore(t), source)
		require.NoError(t, products.Refresh(c, "cat-1", ""))

		source.Set("cat-1", testutil.Product("a", "cat-1", "1.00", 1), testutil.Product("b", "cat-1", "2.00", 1))
		source.Fail(errors.New("connection refused"))
		err := products.Refresh(c, "cat-1", "")

		require.Error(t, err)
		assert.ErrorIs(t, err, inErrors.ErrRemoteFailure)
		actual, err := products.List(c, "cat-1")
		require.NoError(t, err)
		require.Len(t, actual, 1)
		assert.True(t, decimal.RequireFromString("10.00").Equal(actual[0].Price))
	})

	t.Run("should fill the placeholder image when the source has none", func(t *testing.T) {
		source := testutil.NewProductSource()
		missing := testutil.Product("a", "cat-1", "1.00", 1)
		missing.ImageURL = nil
		blank := testutil.Product("b", "cat-1", "1.00", 1)
		empty := "  "
		blank.ImageURL = &empty
		source.Set("cat-1", missing, blank)
		products := NewProducts(testutil.NewStore(t), source)

		require.NoError(t, products.Refresh(c, "cat-1", ""))

		actual, err := products.List(c, "cat-1")
		require.NoError(t, err)
		require.Len(t, actual, 2)
		for _, product := range actual {
			assert.Equal(t, constants.PLACEHOLDER_IMAGE_URL, product.ImageURL)
		}
	})

	t.Run("should keep categories isolated", func(t *testing.T) {
		source := testutil.NewProductSource()
		source.Set("cat-1", testutil.Product("a", "cat-1", "1.00", 1))
		source.Set("cat-2", testutil.Product("b", "cat-2", "1.00", 1))
		products := NewProducts(testutil.NewStore(t), source)

		require.NoError(t, products.Refresh(c, "cat-1", ""))
		require.NoError(t, products.Refresh(c, "cat-2", ""))
		deleted, err := products.Clear(c, "cat-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		first, err := products.List(c, "cat-1")
		require.NoError(t, err)
		assert.Empty(t, first)
		second, err := products.List(c, "cat-2")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, productIds(second))
	})
}

func TestProductsFindById(t *testing.T) {
	c := testutil.Context(t)
	source := testutil.NewProductSource()
	source.Set("cat-1", testutil.Product("a", "cat-1", "3.50", 7))
	products := NewProducts(testutil.NewStore(t), source)
	require.NoError(t, products.Refresh(c, "cat-1", ""))

	t.Run("should return the cached product", func(t *testing.T) {
		actual, err := products.FindById(c, "a")
		require.NoError(t, err)
		assert.Equal(t, "cat-1", actual.CategoryID)
		assert.Equal(t, int32(7), actual.Stock)
	})

	t.Run("should return product not found for an unknown id", func(t *testing.T) {
		_, err := products.FindById(c, "missing")
		assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
	})
}

func TestProductsObserve(t *testing.T) {
	c := testutil.Context(t)
	source := testutil.NewProductSource()
	products := NewProducts(testutil.NewStore(t), source)

	live := products.Observe(c, "cat-1")
	initial := next(t, live)
	require.True(t, initial.IsSuccess())
	assert.Empty(t, initial.Data)

	source.Set("cat-1", testutil.Product("a", "cat-1", "1.00", 1), testutil.Product("b", "cat-1", "2.00", 1))
	require.NoError(t, products.Refresh(c, "cat-1", ""))

	updated := next(t, live)
	require.True(t, updated.IsSuccess())
	assert.Equal(t, []string{"b", "a"}, productIds(updated.Data))

	_, err := products.Clear(c, "cat-1")
	require.NoError(t, err)
	cleared := next(t, live)
	require.True(t, cleared.IsSuccess())
	assert.Empty(t, cleared.Data)
}

func TestCategories(t *testing.T) {
	c := testutil.Context(t)
	source := &testutil.CategorySource{}
	source.Set(
		remote.Category{ID: "2", Name: "Drinks"},
		remote.Category{ID: "1", Name: "Bakery"},
		remote.Category{ID: "3", Name: "Drinks"},
	)
	categories := NewCategories(testutil.NewStore(t), source)

	require.NoError(t, categories.Refresh(c, "", ""))

	actual, err := categories.List(c, "")
	require.NoError(t, err)
	assert.Equal(t, []response.Category{
		{ID: "1", Name: "Bakery"},
		{ID: "2", Name: "Drinks"},
		{ID: "3", Name: "Drinks"},
	}, actual)

	category, err := categories.FindById(c, "2")
	require.NoError(t, err)
	assert.Equal(t, "Drinks", category.Name)

	_, err = categories.FindById(c, "9")
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	deleted, err := categories.Clear(c, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}
