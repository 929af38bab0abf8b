package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Alturino/salesrep/catalog/internal/common/otel"
	"github.com/Alturino/salesrep/catalog/pkg/response"
	"github.com/Alturino/salesrep/internal/cache"
	"github.com/Alturino/salesrep/internal/log"
	inOtel "github.com/Alturino/salesrep/internal/otel"
	"github.com/Alturino/salesrep/internal/state"
)

type CatalogService struct {
	products   cache.Products
	categories cache.Categories
}

func NewCatalogService(products cache.Products, categories cache.Categories) CatalogService {
	return CatalogService{products: products, categories: categories}
}

// ObserveCategory emits the cached products of categoryID, price descending,
// until c is done. It never touches the network.
func (svc CatalogService) ObserveCategory(c context.Context, categoryID string) <-chan state.State[[]response.Product] {
	c = zerolog.Ctx(c).With().Str(log.KeyCategoryID, categoryID).Logger().WithContext(c)
	return svc.products.Observe(c, categoryID)
}

func (svc CatalogService) ListCategory(c context.Context, categoryID string) ([]response.Product, error) {
	return svc.products.List(c, categoryID)
}

func (svc CatalogService) RefreshCategory(c context.Context, categoryID string, contextID string) error {
	c, span := otel.Tracer.Start(c, "CatalogService RefreshCategory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService RefreshCategory").
		Str(log.KeyCategoryID, categoryID).
		Str(log.KeyCustomerID, contextID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "refreshing category").Logger()
	logger.Info().Msgf("refreshing categoryId=%s", categoryID)
	if err := svc.products.Refresh(logger.WithContext(c), categoryID, contextID); err != nil {
		err = fmt.Errorf("failed refreshing categoryId=%s with error=%w", categoryID, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msgf("refreshed categoryId=%s", categoryID)
	return nil
}

// GetById reads a product from the cache only.
func (svc CatalogService) GetById(c context.Context, productID string) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "CatalogService GetById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService GetById").
		Str(log.KeyProductID, productID).
		Str(log.KeyProcess, "finding product").
		Logger()

	logger.Trace().Msgf("finding productId=%s", productID)
	product, err := svc.products.FindById(c, productID)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Trace().Msgf("found productId=%s", productID)
	return product, nil
}

// ClearCategory drops every cached product of categoryID.
func (svc CatalogService) ClearCategory(c context.Context, categoryID string) (int64, error) {
	c, span := otel.Tracer.Start(c, "CatalogService ClearCategory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService ClearCategory").
		Str(log.KeyCategoryID, categoryID).
		Logger()

	deleted, err := svc.products.Clear(logger.WithContext(c), categoryID)
	if err != nil {
		err = fmt.Errorf("failed clearing categoryId=%s with error=%w", categoryID, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}
	return deleted, nil
}

func (svc CatalogService) ObserveCategories(c context.Context) <-chan state.State[[]response.Category] {
	return svc.categories.Observe(c, "")
}

func (svc CatalogService) ListCategories(c context.Context) ([]response.Category, error) {
	return svc.categories.List(c, "")
}

func (svc CatalogService) RefreshCategories(c context.Context) error {
	c, span := otel.Tracer.Start(c, "CatalogService RefreshCategories")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService RefreshCategories").
		Str(log.KeyProcess, "refreshing categories").
		Logger()

	logger.Info().Msg("refreshing categories")
	if err := svc.categories.Refresh(logger.WithContext(c), "", ""); err != nil {
		err = fmt.Errorf("failed refreshing categories with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("refreshed categories")
	return nil
}

func (svc CatalogService) ClearCategories(c context.Context) (int64, error) {
	c, span := otel.Tracer.Start(c, "CatalogService ClearCategories")
	defer span.End()

	deleted, err := svc.categories.Clear(c, "")
	if err != nil {
		err = fmt.Errorf("failed clearing categories with error=%w", err)
		inOtel.RecordError(err, span)
		zerolog.Ctx(c).Error().Err(err).Str(log.KeyTag, "CatalogService ClearCategories").Msg(err.Error())
		return 0, err
	}
	return deleted, nil
}

// ObserveSearch filters every emission of ObserveCategory by query. The
// filter is recomputed per emission and never cached.
func (svc CatalogService) ObserveSearch(
	c context.Context,
	categoryID string,
	query string,
) <-chan state.State[[]response.Product] {
	c = zerolog.Ctx(c).With().Str(log.KeyQuery, query).Logger().WithContext(c)
	live := svc.ObserveCategory(c, categoryID)
	out := make(chan state.State[[]response.Product])
	go func() {
		defer close(out)
		for st := range live {
			select {
			case out <- state.Map(st, func(products []response.Product) []response.Product {
				return Filter(products, query)
			}):
			case <-c.Done():
				return
			}
		}
	}()
	return out
}

// Filter keeps the products whose name or description contains query,
// ignoring case. A blank query keeps everything.
func Filter(products []response.Product, query string) []response.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products
	}
	filtered := []response.Product{}
	for _, product := range products {
		if strings.Contains(strings.ToLower(product.Name), query) ||
			strings.Contains(strings.ToLower(product.Description), query) {
			filtered = append(filtered, product)
		}
	}
	return filtered
}

// WatchCategory is the screen feed for one category: Loading first, then the
// live cache contents. Refresh outcomes passed to the returned Reporter turn
// into Error states carrying the last good list, so the cached view stays
// usable while the remote is failing.
func (svc CatalogService) WatchCategory(
	c context.Context,
	categoryID string,
) (<-chan state.State[[]response.Product], Reporter) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService WatchCategory").
		Str(log.KeyCategoryID, categoryID).
		Logger()

	reports := &latest{ch: make(chan error, 1)}
	live := svc.ObserveCategory(c, categoryID)
	out := make(chan state.State[[]response.Product])

	go func() {
		defer close(out)

		send := func(st state.State[[]response.Product]) bool {
			select {
			case out <- st:
				return true
			case <-c.Done():
				return false
			}
		}

		if !send(state.NewLoading[[]response.Product]()) {
			return
		}
		var last []response.Product
		var failure error
		for {
			select {
			case st, ok := <-live:
				if !ok {
					return
				}
				if st.IsSuccess() {
					last = st.Data
					if failure != nil {
						st = state.NewError(failure, st.Data)
					}
				}
				if !send(st) {
					return
				}
			case err := <-reports.ch:
				if err == nil {
					if failure == nil {
						continue
					}
					failure = nil
					logger.Info().Msg("refresh recovered")
					if !send(state.NewSuccess(last)) {
						return
					}
					continue
				}
				failure = err
				if !send(state.NewError(err, last)) {
					return
				}
			case <-c.Done():
				return
			}
		}
	}()
	return out, reports.report
}

// Reporter receives the outcome of each scheduled refresh.
type Reporter func(c context.Context, err error)

// latest holds only the most recent unconsumed report.
type latest struct {
	mu sync.Mutex
	ch chan error
}

func (l *latest) report(c context.Context, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.ch:
	default:
	}
	l.ch <- err
}
