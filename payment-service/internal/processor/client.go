// Package processor talks to the external payment processor (Razorpay
// compatible Orders API).
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sanketp1/ecommerce-microservices/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrUnavailable = errors.New("payment processor unavailable")

type OrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt,omitempty"`
	PaymentCapture int    `json:"payment_capture"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Client struct {
	http      *resty.Client
	breaker   *gobreaker.CircuitBreaker[string]
	keyID     string
	keySecret string
}

func NewClient(baseURL, keyID, keySecret string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
			SetBasicAuth(keyID, keySecret).
			SetHeader("Content-Type", "application/json"),
		breaker:   circuitbreaker.New[string]("payment-processor", circuitbreaker.DefaultConfig()),
		keyID:     keyID,
		keySecret: keySecret,
	}
}

// KeyID is the public key the browser checkout widget needs.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder registers an order for amount minor units and returns the
// processor's order id. Payment is captured automatically.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	id, err := c.breaker.Execute(func() (string, error) {
		var out orderResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(OrderRequest{
				Amount:         amount,
				Currency:       currency,
				Receipt:        receipt,
				PaymentCapture: 1,
			}).
			Post("/v1/orders")
		if err != nil {
			return "", fmt.Errorf("create order: %w", err)
		}
		if resp.StatusCode() >= http.StatusBadRequest && resp.StatusCode() < http.StatusInternalServerError {
			return "", circuitbreaker.ClientError(
				fmt.Errorf("create order: processor rejected request with %d: %s", resp.StatusCode(), resp.String()))
		}
		if !resp.IsSuccess() {
			return "", fmt.Errorf("create order: processor returned %d: %s", resp.StatusCode(), resp.String())
		}
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return "", fmt.Errorf("decode order: %w", err)
		}
		if out.ID == "" {
			return "", errors.New("create order: empty order id")
		}
		return out.ID, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return id, nil
}

func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(c.keySecret, orderID, paymentID, signature)
}
