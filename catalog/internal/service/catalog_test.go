package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/salesrep/catalog/pkg/response"
	"github.com/Alturino/salesrep/internal/cache"
	inErrors "github.com/Alturino/salesrep/internal/errors"
	"github.com/Alturino/salesrep/internal/remote"
	"github.com/Alturino/salesrep/internal/state"
	"github.com/Alturino/salesrep/internal/testutil"
)

func newCatalogService(t *testing.T) (CatalogService, *testutil.ProductSource, *testutil.CategorySource) {
	t.Helper()
	st := testutil.NewStore(t)
	products := testutil.NewProductSource()
	categories := &testutil.CategorySource{}
	return NewCatalogService(cache.NewProducts(st, products), cache.NewCategories(st, categories)), products, categories
}

func receive(t *testing.T, ch <-chan state.State[[]response.Product]) state.State[[]response.Product] {
	t.Helper()
	select {
	case st, ok := <-ch:
		require.True(t, ok, "feed closed")
		return st
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for feed")
	}
	return state.State[[]response.Product]{}
}

func ids(products []response.Product) []string {
	result := make([]string, len(products))
	for i, product := range products {
		result[i] = product.ID
	}
	return result
}

func TestFilter(t *testing.T) {
	milk := response.Product{ID: "1", Name: "Whole Milk", Description: "1L bottle"}
	bread := response.Product{ID: "2", Name: "Bread", Description: "Fresh milk bread"}
	soap := response.Product{ID: "3", Name: "Soap", Description: "Lavender"}
	products := []response.Product{milk, bread, soap}

	testCases := []struct {
		name     string
		query    string
		expected []response.Product
	}{
		{name: "blank query keeps everything", query: "  ", expected: products},
		{name: "matches name ignoring case", query: "SOAP", expected: []response.Product{soap}},
		{name: "matches description", query: "milk", expected: []response.Product{milk, bread}},
		{name: "no match yields empty list", query: "coffee", expected: []response.Product{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Filter(products, tc.query))
		})
	}
}

func TestCatalogServiceRefreshCategory(t *testing.T) {
	c := testutil.Context(t)
	svc, source, _ := newCatalogService(t)
	source.Set("cat-1", testutil.Product("a", "cat-1", "5.00", 2), testutil.Product("b", "cat-1", "7.00", 4))

	require.NoError(t, svc.RefreshCategory(c, "cat-1", "customer-1"))
	first, err := svc.ListCategory(c, "cat-1")
	require.NoError(t, err)
	require.NoError(t, svc.RefreshCategory(c, "cat-1", "customer-1"))
	second, err := svc.ListCategory(c, "cat-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"b", "a"}, ids(second))

	product, err := svc.GetById(c, "a")
	require.NoError(t, err)
	assert.Equal(t, int32(2), product.Stock)

	source.Fail(errors.New("timeout"))
	err = svc.RefreshCategory(c, "cat-1", "customer-1")
	assert.ErrorIs(t, err, inErrors.ErrRemoteFailure)

	deleted, err := svc.ClearCategory(c, "cat-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	_, err = svc.GetById(c, "a")
	assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
}

func TestCatalogServiceCategories(t *testing.T) {
	c := testutil.Context(t)
	svc, _, source := newCatalogService(t)
	source.Set(remote.Category{ID: "2", Name: "Snacks"}, remote.Category{ID: "1", Name: "Dairy"})

	require.NoError(t, svc.RefreshCategories(c))
	categories, err := svc.ListCategories(c)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Dairy", categories[0].Name)

	source.Fail(errors.New("bad gateway"))
	assert.ErrorIs(t, svc.RefreshCategories(c), inErrors.ErrRemoteFailure)
	categories, err = svc.ListCategories(c)
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	deleted, err := svc.ClearCategories(c)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestCatalogServiceObserveSearch(t *testing.T) {
	c, cancel := context.WithCancel(testutil.Context(t))
	defer cancel()
	svc, source, _ := newCatalogService(t)
	milk := testutil.Product("a", "cat-1", "2.00", 1)
	milk.Name = "Milk"
	source.Set("cat-1", milk, testutil.Product("b", "cat-1", "3.00", 1))
	require.NoError(t, svc.RefreshCategory(c, "cat-1", ""))

	live := svc.ObserveSearch(c, "cat-1", "milk")
	initial := receive(t, live)
	require.True(t, initial.IsSuccess())
	assert.Equal(t, []string{"a"}, ids(initial.Data))

	oatMilk := testutil.Product("c", "cat-1", "4.00", 1)
	oatMilk.Name = "Oat milk"
	source.Set("cat-1", milk, testutil.Product("b", "cat-1", "3.00", 1), oatMilk)
	require.NoError(t, svc.RefreshCategory(c, "cat-1", ""))

	updated := receive(t, live)
	require.True(t, updated.IsSuccess())
	assert.Equal(t, []string{"c", "a"}, ids(updated.Data))

	cancel()
	require.Eventually(t, func() bool {
		_, ok := <-live
		return !ok
	}, 5*time.Second, 5*time.Millisecond)
}

func TestCatalogServiceWatchCategory(t *testing.T) {
	c, cancel := context.WithCancel(testutil.Context(t))
	defer cancel()
	svc, source, _ := newCatalogService(t)
	source.Set("cat-1", testutil.Product("a", "cat-1", "2.00", 1))

	feed, report := svc.WatchCategory(c, "cat-1")
	assert.True(t, receive(t, feed).IsLoading())
	empty := receive(t, feed)
	require.True(t, empty.IsSuccess())
	assert.Empty(t, empty.Data)

	require.NoError(t, svc.RefreshCategory(c, "cat-1", ""))
	report(c, nil)
	loaded := receive(t, feed)
	require.True(t, loaded.IsSuccess())
	assert.Equal(t, []string{"a"}, ids(loaded.Data))

	failure := inErrors.Remote("failed fetching products", errors.New("no route to host"))
	report(c, failure)
	failed := receive(t, feed)
	require.True(t, failed.IsError())
	assert.ErrorIs(t, failed.Err, failure)
	assert.Equal(t, []string{"a"}, ids(failed.Data))

	report(c, nil)
	recovered := receive(t, feed)
	require.True(t, recovered.IsSuccess())
	assert.Equal(t, []string{"a"}, ids(recovered.Data))
}
