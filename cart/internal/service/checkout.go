package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/salesrep/cart/internal/common/otel"
	"github.com/Alturino/salesrep/cart/pkg/response"
	inErrors "github.com/Alturino/salesrep/internal/errors"
	"github.com/Alturino/salesrep/internal/log"
	inOtel "github.com/Alturino/salesrep/internal/otel"
	"github.com/Alturino/salesrep/internal/validate"
	"github.com/Alturino/salesrep/order/pkg/request"
	orderResponse "github.com/Alturino/salesrep/order/pkg/response"
)

type Cart interface {
	Snapshot(c context.Context) (response.Cart, error)
	ClearCart(c context.Context) (int64, error)
}

type OrderSubmitter interface {
	SubmitOrder(c context.Context, order request.CreateOrder) (orderResponse.Order, error)
}

type CheckoutService struct {
	cart      Cart
	submitter OrderSubmitter
	validate  *validator.Validate
	now       func() time.Time
}

func NewCheckoutService(cart Cart, submitter OrderSubmitter) CheckoutService {
	return CheckoutService{
		cart:      cart,
		submitter: submitter,
		validate:  validate.New(),
		now:       time.Now,
	}
}

// PlaceOrder submits the current cart as an order for customerID and clears
// the cart once the remote has accepted it. A failed submission leaves the
// cart as it was and returns the cause unchanged. There is no retry.
func (svc CheckoutService) PlaceOrder(c context.Context, customerID string) (orderResponse.Order, error) {
	c, span := otel.Tracer.Start(
		c,
		"CheckoutService PlaceOrder",
		trace.WithAttributes(attribute.String(log.KeyCustomerID, customerID)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService PlaceOrder").
		Str(log.KeyCustomerID, customerID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart").Logger()
	logger.Info().Msg("finding cart")
	span.AddEvent("finding cart")
	cart, err := svc.cart.Snapshot(logger.WithContext(c))
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	if cart.IsEmpty() {
		err = fmt.Errorf("failed placing order for customerId=%s with error=%w", customerID, inErrors.ErrEmptyCart)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	logger = logger.With().Int(log.KeyCartItemsCount, len(cart.CartItems)).Logger()
	span.AddEvent("found cart")
	logger.Info().Msg("found cart")

	logger = logger.With().Str(log.KeyProcess, "mapping cart to order").Logger()
	logger.Info().Msg("mapping cart to order")
	order := cart.Order(uuid.New(), customerID, svc.now().UTC())
	if err := svc.validate.StructCtx(c, order); err != nil {
		err = fmt.Errorf("failed validating order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	logger = logger.With().
		Str(log.KeyOrderID, order.ID.String()).
		Stringer(log.KeyOrderTotal, order.Total).
		Logger()
	span.SetAttributes(attribute.String(log.KeyOrderID, order.ID.String()))
	logger.Info().Msg("mapped cart to order")

	logger = logger.With().Str(log.KeyProcess, "submitting order").Logger()
	logger.Info().Msg("submitting order")
	span.AddEvent("submitting order")
	placed, err := svc.submitter.SubmitOrder(logger.WithContext(c), order)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	span.AddEvent("submitted order")
	logger.Info().Str("status", placed.Status).Msg("submitted order")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	if _, err := svc.cart.ClearCart(logger.WithContext(c)); err != nil {
		err = storeError(fmt.Sprintf("order id=%s was placed but clearing cart failed", placed.ID), err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return placed, err
	}
	logger.Info().Msg("cleared cart")

	return placed, nil
}
