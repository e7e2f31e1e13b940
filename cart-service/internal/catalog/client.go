// Package catalog reads product price and availability from the product
// service.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/domain"
	"github.com/sanketp1/ecommerce-microservices/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client looks up one product per call. Every failure mode, including an
// open breaker, is reported as absence: callers cannot tell "not found"
// from "unreachable".
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[*domain.Product]
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    httpClient,
		breaker: circuitbreaker.New[*domain.Product]("catalog", circuitbreaker.DefaultConfig()),
		logger:  logger,
	}
}

// GetProduct returns the product, or nil when it cannot be fetched.
func (c *Client) GetProduct(ctx context.Context, productID string) *domain.Product {
	product, err := c.breaker.Execute(func() (*domain.Product, error) {
		return c.fetch(ctx, productID)
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "catalog lookup failed",
			"product_id", productID, "error", err, "breaker_open", circuitbreaker.IsOpen(err))
		return nil
	}
	return product
}

// fetch only returns an error for failures that should count against the
// breaker. A 404 or a client error is a healthy catalog saying no.
func (c *Client) fetch(ctx context.Context, productID string) (*domain.Product, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", productID).
		Get("/products/{id}")
	if err != nil {
		return nil, fmt.Errorf("request product %s: %w", productID, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		c.logger.WarnContext(ctx, "product not found in catalog", "product_id", productID)
		return nil, nil
	case resp.StatusCode() >= http.StatusInternalServerError:
		return nil, fmt.Errorf("catalog returned %d for product %s", resp.StatusCode(), productID)
	case !resp.IsSuccess():
		c.logger.WarnContext(ctx, "catalog rejected product lookup",
			"product_id", productID, "status", resp.StatusCode())
		return nil, nil
	}

	var product domain.Product
	if err := json.Unmarshal(resp.Body(), &product); err != nil {
		c.logger.ErrorContext(ctx, "undecodable catalog response", "product_id", productID, "error", err)
		return nil, nil
	}
	if product.ID == "" {
		product.ID = domain.ProductID(productID)
	}
	return &product, nil
}
