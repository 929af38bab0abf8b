package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/salesrep/cart/internal/common/otel"
	"github.com/Alturino/salesrep/cart/pkg/request"
	"github.com/Alturino/salesrep/cart/pkg/response"
	catalogResponse "github.com/Alturino/salesrep/catalog/pkg/response"
	"github.com/Alturino/salesrep/internal/constants"
	inErrors "github.com/Alturino/salesrep/internal/errors"
	"github.com/Alturino/salesrep/internal/log"
	inOtel "github.com/Alturino/salesrep/internal/otel"
	"github.com/Alturino/salesrep/internal/repository"
	"github.com/Alturino/salesrep/internal/state"
	"github.com/Alturino/salesrep/internal/store"
)

var mutationTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "salesrep",
		Subsystem: "cart",
		Name:      "mutation_total",
		Help:      "Cart mutations by operation and result.",
	},
	[]string{"operation", "result"},
)

func countMutation(operation string, err error) {
	result := "success"
	if err != nil {
		result = inErrors.Kind(err)
	}
	mutationTotal.WithLabelValues(operation, result).Inc()
}

// ProductFinder reads current stock from the catalog cache.
type ProductFinder interface {
	FindById(c context.Context, productID string) (catalogResponse.Product, error)
}

type CartService struct {
	store    *store.Store
	queries  *repository.Queries
	products ProductFinder
	now      func() time.Time
}

func NewCartService(st *store.Store, products ProductFinder) CartService {
	return CartService{
		store:    st,
		queries:  repository.New(st.DB()),
		products: products,
		now:      time.Now,
	}
}

func (svc CartService) timestamp() string {
	return svc.now().UTC().Format(time.RFC3339Nano)
}

// storeError leaves taxonomy errors untouched and wraps anything else as a
// store failure.
func storeError(msg string, err error) error {
	if inErrors.Kind(err) != "Unknown" {
		return err
	}
	return inErrors.Store(msg, err)
}

// AddItem adds param.Quantity more units to the line of param.ProductID,
// creating it when missing. The resulting total must not exceed the stock
// read at call time.
func (svc CartService) AddItem(c context.Context, param request.AddItem) (err error) {
	defer func() { countMutation("add", err) }()

	c, span := otel.Tracer.Start(
		c,
		"CartService AddItem",
		trace.WithAttributes(
			attribute.String(log.KeyProductID, param.ProductID),
			attribute.Int(log.KeyQuantity, int(param.Quantity)),
		),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyProductID, param.ProductID).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating quantity").Logger()
	if param.Quantity <= 0 {
		err = fmt.Errorf("%w: quantity=%d must be greater than zero", inErrors.ErrInvalidQuantity, param.Quantity)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Trace().Msgf("finding productId=%s", param.ProductID)
	product, err := svc.products.FindById(c, param.ProductID)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger = logger.With().Int32(log.KeyStock, product.Stock).Logger()
	logger.Trace().Msgf("found productId=%s", param.ProductID)

	logger = logger.With().Str(log.KeyProcess, "upserting cart item").Logger()
	logger.Trace().Msg("upserting cart item")
	var total int64
	err = svc.store.WithTx(c, func(tx *sql.Tx) error {
		queries := svc.queries.WithTx(tx)

		var existing int32
		line, err := queries.FindCartItemById(c, param.ProductID)
		switch {
		case err == nil:
			existing = line.Quantity
		case errors.Is(err, sql.ErrNoRows):
		default:
			return inErrors.Store(fmt.Sprintf("failed finding cart item productId=%s", param.ProductID), err)
		}

		total = int64(existing) + int64(param.Quantity)
		if total > int64(product.Stock) {
			if existing > 0 {
				return fmt.Errorf(
					"%w: total quantity=%d (in cart=%d, adding=%d) exceeds stock=%d",
					inErrors.ErrStockExceeded,
					total,
					existing,
					param.Quantity,
					product.Stock,
				)
			}
			return fmt.Errorf(
				"%w: quantity=%d exceeds stock=%d",
				inErrors.ErrStockExceeded,
				param.Quantity,
				product.Stock,
			)
		}

		return queries.UpsertCartItem(c, repository.UpsertCartItemParams{
			ProductID: param.ProductID,
			Quantity:  int32(total),
			UpdatedAt: svc.timestamp(),
		})
	}, constants.TABLE_CART_ITEMS)
	if err != nil {
		err = storeError(fmt.Sprintf("failed adding productId=%s", param.ProductID), err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Int64(log.KeyQuantity, total).Msg("upserted cart item")

	return nil
}

// UpdateQuantity sets the line of param.ProductID to exactly param.Quantity.
// Zero deletes the line.
func (svc CartService) UpdateQuantity(c context.Context, param request.UpdateQuantity) (err error) {
	defer func() { countMutation("update", err) }()

	c, span := otel.Tracer.Start(
		c,
		"CartService UpdateQuantity",
		trace.WithAttributes(
			attribute.String(log.KeyProductID, param.ProductID),
			attribute.Int(log.KeyQuantity, int(param.Quantity)),
		),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateQuantity").
		Str(log.KeyProductID, param.ProductID).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart item").Logger()
	logger.Trace().Msg("finding cart item")
	line, err := svc.queries.FindCartItemById(c, param.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("%w: productId=%s", inErrors.ErrNotInCart, param.ProductID)
		} else {
			err = inErrors.Store(fmt.Sprintf("failed finding cart item productId=%s", param.ProductID), err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger = logger.With().Int32(log.KeyExistingQuantity, line.Quantity).Logger()
	logger.Trace().Msg("found cart item")

	if param.Quantity < 0 {
		err = fmt.Errorf("%w: quantity=%d must not be negative", inErrors.ErrInvalidQuantity, param.Quantity)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Trace().Msgf("finding productId=%s", param.ProductID)
	product, err := svc.products.FindById(c, param.ProductID)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger = logger.With().Int32(log.KeyStock, product.Stock).Logger()
	logger.Trace().Msgf("found productId=%s", param.ProductID)

	if param.Quantity > product.Stock {
		err = fmt.Errorf(
			"%w: quantity=%d exceeds stock=%d",
			inErrors.ErrStockExceeded,
			param.Quantity,
			product.Stock,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	if param.Quantity == 0 {
		logger = logger.With().Str(log.KeyProcess, "deleting cart item").Logger()
		logger.Trace().Msg("deleting cart item")
	} else {
		logger = logger.With().Str(log.KeyProcess, "updating cart item").Logger()
		logger.Trace().Msg("updating cart item")
	}
	err = svc.store.WithTx(c, func(tx *sql.Tx) error {
		queries := svc.queries.WithTx(tx)
		if param.Quantity == 0 {
			deleted, err := queries.DeleteCartItemById(c, param.ProductID)
			if err != nil {
				return err
			}
			if deleted == 0 {
				return fmt.Errorf("%w: productId=%s", inErrors.ErrNotInCart, param.ProductID)
			}
			return nil
		}
		if _, err := queries.FindCartItemById(c, param.ProductID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: productId=%s", inErrors.ErrNotInCart, param.ProductID)
			}
			return err
		}
		return queries.UpsertCartItem(c, repository.UpsertCartItemParams{
			ProductID: param.ProductID,
			Quantity:  param.Quantity,
			UpdatedAt: svc.timestamp(),
		})
	}, constants.TABLE_CART_ITEMS)
	if err != nil {
		err = storeError(fmt.Sprintf("failed updating productId=%s", param.ProductID), err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if param.Quantity == 0 {
		logger.Info().Msg("deleted cart item")
	} else {
		logger.Info().Msg("updated cart item")
	}

	return nil
}

// RemoveItem deletes the line of productID if there is one.
func (svc CartService) RemoveItem(c context.Context, productID string) (err error) {
	defer func() { countMutation("remove", err) }()

	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyProductID, productID).
		Str(log.KeyProcess, "deleting cart item").
		Logger()

	logger.Trace().Msg("deleting cart item")
	var deleted int64
	err = svc.store.WithTx(c, func(tx *sql.Tx) error {
		var err error
		deleted, err = svc.queries.WithTx(tx).DeleteCartItemById(c, productID)
		return err
	}, constants.TABLE_CART_ITEMS)
	if err != nil {
		err = inErrors.Store(fmt.Sprintf("failed deleting cart item productId=%s", productID), err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Int64(log.KeyCount, deleted).Msg("deleted cart item")

	return nil
}

// ClearCart deletes every line and returns how many there were.
func (svc CartService) ClearCart(c context.Context) (deleted int64, err error) {
	defer func() { countMutation("clear", err) }()

	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ClearCart").
		Str(log.KeyProcess, "deleting cart items").
		Logger()

	logger.Trace().Msg("deleting cart items")
	err = svc.store.WithTx(c, func(tx *sql.Tx) error {
		var err error
		deleted, err = svc.queries.WithTx(tx).DeleteCartItems(c)
		return err
	}, constants.TABLE_CART_ITEMS)
	if err != nil {
		err = inErrors.Store("failed deleting cart items", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}
	logger.Info().Int64(log.KeyCount, deleted).Msg("deleted cart items")

	return deleted, nil
}

func (svc CartService) findCart(c context.Context) (response.Cart, error) {
	rows, err := svc.queries.FindCartItems(c)
	if err != nil {
		return response.Cart{}, err
	}
	items := make([]response.CartItem, len(rows))
	for i, row := range rows {
		items[i] = row.Response()
	}
	return response.NewCart(items), nil
}

// ObserveCart emits the cart joined with the catalog after every change to
// either side until c is done.
func (svc CartService) ObserveCart(c context.Context) <-chan state.State[response.Cart] {
	return store.Observe(c, svc.store, svc.findCart, constants.TABLE_CART_ITEMS, constants.TABLE_PRODUCTS)
}

// Snapshot reads the joined cart once.
func (svc CartService) Snapshot(c context.Context) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService Snapshot")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Snapshot").
		Str(log.KeyProcess, "finding cart items").
		Logger()

	logger.Trace().Msg("finding cart items")
	cart, err := svc.findCart(c)
	if err != nil {
		err = inErrors.Store("failed finding cart items", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Trace().Int(log.KeyCartItemsCount, len(cart.CartItems)).Msg("found cart items")

	return cart, nil
}
