// Package cartclient reads the caller's priced cart from the cart service.
package cartclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/domain"
	"github.com/sanketp1/ecommerce-microservices/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrUnavailable = errors.New("cart service unavailable")

type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[*domain.PricedCart]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
			SetHeader("Accept", "application/json"),
		breaker: circuitbreaker.New[*domain.PricedCart]("cart-service", circuitbreaker.DefaultConfig()),
	}
}

// GetCart fetches the cart on behalf of the bearer token's owner.
func (c *Client) GetCart(ctx context.Context, bearerToken string) (*domain.PricedCart, error) {
	cart, err := c.breaker.Execute(func() (*domain.PricedCart, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(bearerToken).
			Get("/cart")
		if err != nil {
			return nil, fmt.Errorf("request cart: %w", err)
		}
		if resp.StatusCode() >= http.StatusBadRequest && resp.StatusCode() < http.StatusInternalServerError {
			return nil, circuitbreaker.ClientError(fmt.Errorf("cart service rejected request with %d", resp.StatusCode()))
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("cart service returned %d", resp.StatusCode())
		}

		var cart domain.PricedCart
		if err := json.Unmarshal(resp.Body(), &cart); err != nil {
			return nil, fmt.Errorf("decode cart: %w", err)
		}
		return &cart, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return cart, nil
}
