package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/tracing"
)

const upstreamName = "catalog"

// ClientConfig configures the HTTP catalog client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client implements Source over the catalog's REST API with retries and a
// circuit breaker.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	tracer  trace.Tracer
	logger  *slog.Logger
}

var _ Source = (*Client)(nil)

// NewClient creates a catalog client. No request is made until the first fetch.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	hc := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
	}
	if cfg.MaxRetries >= 0 {
		hc.MaxRetries = cfg.MaxRetries
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: httpclient.NewCircuitBreakerClient(
			httpclient.New(hc),
			httpclient.DefaultCircuitBreakerConfig(upstreamName),
			logger,
		),
		tracer: tracing.Tracer("github.com/utafrali/storefront/internal/catalog"),
		logger: logger,
	}
}

// FetchProducts returns the full remote product list in upstream order.
func (c *Client) FetchProducts(ctx context.Context) (products []domain.Product, err error) {
	ctx, span := c.tracer.Start(ctx, "catalog.FetchProducts", trace.WithSpanKind(trace.SpanKindClient))
	defer func() { tracing.End(span, err, attribute.Int("catalog.product_count", len(products))) }()

	body, err := c.get(ctx, c.baseURL+"/products")
	if err != nil {
		return nil, err
	}
	products, err = decodeProductList(body)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "fetched catalog", slog.Int("count", len(products)))
	return products, nil
}

// FetchProductByID returns one product. An unknown id yields an error
// matching apperrors.ErrNotFound.
func (c *Client) FetchProductByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	ctx, span := c.tracer.Start(ctx, "catalog.FetchProductByID",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("catalog.product_id", id)),
	)
	defer func() { tracing.End(span, err) }()

	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	body, err := c.get(ctx, c.baseURL+"/products/"+url.PathEscape(id))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, err
	}

	var w wireProduct
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	p := w.toDomain()
	return &p, nil
}

// Healthy reports an error while the circuit breaker is open.
func (c *Client) Healthy(context.Context) error {
	if c.http.State() == gobreaker.StateOpen {
		return apperrors.ServiceUnavailable("catalog circuit breaker is open", httpclient.ErrCircuitOpen)
	}
	return nil
}

// get performs a GET and returns the body of a 2xx response. Transport
// failures and an open breaker become ServiceUnavailable errors.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.http.Get(ctx, rawURL)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, apperrors.ServiceUnavailable("catalog is unreachable", err)
	}
	var raw json.RawMessage
	if err := httpclient.DecodeJSON(resp, upstreamName, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
