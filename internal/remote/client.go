package remote

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/abgdnv/stocksync/internal/product"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	productsPath = "/api/v1/products"
	productPath  = "/api/v1/products/{id}"
)

// Config holds the transport settings of the remote client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	LogBodies bool
}

// Client implements Service over HTTP/JSON.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

var _ Service = (*Client)(nil)

// NewClient creates a REST client for the endpoint at cfg.BaseURL.
// With cfg.LogBodies set, every request and response is logged with its body at debug level.
// Requests carry the trace context of ctx.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}, logger)
}

// NewClientWithHTTP is NewClient on top of an existing *http.Client.
func NewClientWithHTTP(cfg Config, hc *http.Client, logger *slog.Logger) *Client {
	logger = logger.With("component", "remote")
	rc := resty.NewWithClient(hc).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetLogger(slogAdapter{logger: logger}).
		SetDebug(cfg.LogBodies)
	return &Client{http: rc, logger: logger}
}

// ListAll fetches every product.
func (c *Client) ListAll(ctx context.Context) ([]product.Product, error) {
	var products []product.Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&products).
		Get(productsPath)
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []product.Product{}
	}
	return products, nil
}

// Create posts a new product. The ID of p is not sent.
func (c *Client) Create(ctx context.Context, p product.Product) (product.Product, error) {
	var created product.Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(p.WithID(0)).
		SetResult(&created).
		Post(productsPath)
	if err := checkResponse(resp, err); err != nil {
		return product.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

// Update puts p under the given ID.
func (c *Client) Update(ctx context.Context, id int64, p product.Product) (product.Product, error) {
	var updated product.Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetBody(p).
		SetResult(&updated).
		Put(productPath)
	if err := checkResponse(resp, err); err != nil {
		return product.Product{}, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return updated, nil
}

// Delete removes the product with the given ID.
func (c *Client) Delete(ctx context.Context, id int64) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		Delete(productPath)
	if err := checkResponse(resp, err); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

// checkResponse maps a resty outcome to the package error kinds.
func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return transportError(err)
	}
	if !resp.IsSuccess() {
		return &ResponseError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

// slogAdapter routes resty's request/response dumps to slog.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Errorf(format string, v ...any) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

func (a slogAdapter) Warnf(format string, v ...any) {
	a.logger.Warn(fmt.Sprintf(format, v...))
}

func (a slogAdapter) Debugf(format string, v ...any) {
	a.logger.Debug(fmt.Sprintf(format, v...))
}
