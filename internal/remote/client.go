package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/salesrep/internal/config"
	inErrors "github.com/Alturino/salesrep/internal/errors"
	inHttp "github.com/Alturino/salesrep/internal/http"
	"github.com/Alturino/salesrep/internal/log"
	inOtel "github.com/Alturino/salesrep/internal/otel"
	"github.com/Alturino/salesrep/internal/validate"
	"github.com/Alturino/salesrep/order/pkg/request"
	"github.com/Alturino/salesrep/order/pkg/response"
)

const maxErrorBody = 4 << 10

// Client talks to the remote catalog service.
type Client struct {
	client   *http.Client
	validate *validator.Validate
	baseURL  string
	token    string
}

func NewClient(cfg config.Remote) *Client {
	return &Client{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		validate: validate.New(),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
	}
}

func (cl *Client) FetchCategories(c context.Context) ([]Category, error) {
	c, span := inOtel.Tracer.Start(c, "Client FetchCategories")
	defer span.End()

	data, err := do[categoriesData](c, cl, http.MethodGet, "/categories", nil, nil)
	if err != nil {
		inOtel.RecordError(err, span)
		return nil, err
	}
	return data.Categories, nil
}

func (cl *Client) FetchProducts(c context.Context, categoryID string, contextID string) ([]Product, error) {
	c, span := inOtel.Tracer.Start(
		c,
		"Client FetchProducts",
		trace.WithAttributes(
			attribute.String(log.KeyCategoryID, categoryID),
			attribute.String(log.KeyCustomerID, contextID),
		),
	)
	defer span.End()

	query := url.Values{}
	query.Set("categoryId", categoryID)
	query.Set("contextId", contextID)
	data, err := do[productsData](c, cl, http.MethodGet, "/products", query, nil)
	if err != nil {
		inOtel.RecordError(err, span)
		return nil, err
	}
	return data.Products, nil
}

func (cl *Client) SubmitOrder(c context.Context, param request.CreateOrder) (response.Order, error) {
	c, span := inOtel.Tracer.Start(
		c,
		"Client SubmitOrder",
		trace.WithAttributes(attribute.String(log.KeyOrderID, param.ID.String())),
	)
	defer span.End()

	data, err := do[orderData](c, cl, http.MethodPost, "/orders", nil, param)
	if err != nil {
		inOtel.RecordError(err, span)
		return response.Order{}, err
	}
	return response.Order{
		ID:         data.Order.ID,
		CustomerID: data.Order.CustomerID,
		Status:     data.Order.Status,
		Total:      data.Order.Total,
		CreatedAt:  data.Order.CreatedAt,
	}, nil
}

func do[T any](
	c context.Context,
	cl *Client,
	method string,
	path string,
	query url.Values,
	body any,
) (T, error) {
	var zero T

	endpoint := cl.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client do").
		Str(log.KeyURL, endpoint).
		Str("method", method).
		Logger()

	var reader io.Reader
	if body != nil {
		logger = logger.With().Str(log.KeyProcess, "marshaling request body").Logger()
		payload, err := json.Marshal(body)
		if err != nil {
			err = inErrors.Remote("failed marshaling request body", err)
			logger.Error().Err(err).Msg(err.Error())
			return zero, err
		}
		reader = bytes.NewReader(payload)
	}

	logger = logger.With().Str(log.KeyProcess, "creating request").Logger()
	req, err := http.NewRequestWithContext(c, method, endpoint, reader)
	if err != nil {
		err = inErrors.Remote("failed creating request", err)
		logger.Error().Err(err).Msg(err.Error())
		return zero, err
	}
	req.Header.Set(inHttp.HeaderAccept, inHttp.HeaderValueJson)
	if body != nil {
		req.Header.Set(inHttp.HeaderContentType, inHttp.HeaderValueJson)
	}
	if cl.token != "" {
		req.Header.Set(inHttp.HeaderAuthorization, "Bearer "+cl.token)
	}
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Set(inHttp.HeaderRequestID, requestID)
	}

	logger = logger.With().Str(log.KeyProcess, "sending request").Logger()
	logger.Trace().Msg("sending request")
	resp, err := cl.client.Do(req)
	if err != nil {
		err = inErrors.Remote("failed sending request", err)
		logger.Error().Err(err).Msg(err.Error())
		return zero, err
	}
	defer resp.Body.Close()
	logger = logger.With().Int(log.KeyStatusCode, resp.StatusCode).Logger()
	logger.Trace().Msg("sent request")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err = inErrors.Remote(
			"unexpected response",
			fmt.Errorf("status code=%d body=%s", resp.StatusCode, strings.TrimSpace(string(message))),
		)
		logger.Error().Err(err).Msg(err.Error())
		return zero, err
	}

	logger = logger.With().Str(log.KeyProcess, "decoding response body").Logger()
	envelope := Envelope[T]{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		err = inErrors.Remote("failed decoding response body", err)
		logger.Error().Err(err).Msg(err.Error())
		return zero, err
	}

	logger = logger.With().Str(log.KeyProcess, "validating response body").Logger()
	if err := cl.validate.StructCtx(c, envelope.Data); err != nil {
		err = inErrors.Remote("failed validating response body", err)
		logger.Error().Err(err).Msg(err.Error())
		return zero, err
	}
	logger.Trace().Msg("validated response body")

	return envelope.Data, nil
}
