// Package testutil holds store and remote fakes shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/salesrep/internal/remote"
	"github.com/Alturino/salesrep/internal/store"
	"github.com/Alturino/salesrep/order/pkg/request"
	"github.com/Alturino/salesrep/order/pkg/response"
)

// Context returns a context carrying a test logger and cancelled at cleanup.
func Context(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	c, cancel := context.WithCancel(logger.WithContext(context.Background()))
	t.Cleanup(cancel)
	return c
}

// NewStore opens a migrated store in a temporary directory.
func NewStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(Context(t), filepath.Join(t.TempDir(), "salesrep.db"), store.NewLocalNotifier(), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func Product(id, categoryID, price string, stock int32) remote.Product {
	imageURL := "https://example.com/" + id + ".png"
	return remote.Product{
		ID:          id,
		CategoryID:  categoryID,
		Name:        "product " + id,
		Description: "description " + id,
		ImageURL:    &imageURL,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		CreatedAt:   "2024-01-01T00:00:00Z",
		UpdatedAt:   "2024-01-01T00:00:00Z",
	}
}

type ProductSource struct {
	mu       sync.Mutex
	products map[string][]remote.Product
	err      error
	calls    int
}

func NewProductSource() *ProductSource {
	return &ProductSource{products: map[string][]remote.Product{}}
}

func (s *ProductSource) Set(categoryID string, products ...remote.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[categoryID] = products
}

func (s *ProductSource) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *ProductSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *ProductSource) FetchProducts(c context.Context, categoryID string, contextID string) ([]remote.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.products[categoryID], nil
}

type CategorySource struct {
	mu         sync.Mutex
	categories []remote.Category
	err        error
}

func (s *CategorySource) Set(categories ...remote.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = categories
}

func (s *CategorySource) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *CategorySource) FetchCategories(c context.Context) ([]remote.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.categories, nil
}

type OrderSubmitter struct {
	mu        sync.Mutex
	submitted []request.CreateOrder
	err       error
}

func (s *OrderSubmitter) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *OrderSubmitter) Submitted() []request.CreateOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]request.CreateOrder(nil), s.submitted...)
}

func (s *OrderSubmitter) SubmitOrder(c context.Context, order request.CreateOrder) (response.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, order)
	if s.err != nil {
		return response.Order{}, s.err
	}
	return response.Order{
		ID:         order.ID.String(),
		CustomerID: order.CustomerID,
		Status:     "pending",
		Total:      order.Total,
		CreatedAt:  order.OrderDate.Format(time.RFC3339),
	}, nil
}
