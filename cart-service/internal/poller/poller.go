package poller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/sanketp1/ecommerce-microservices/pkg/events"
	"github.com/segmentio/kafka-go"
)

// CacheInvalidator drops a user's cached cart.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context, userID string) error
}

// Poller listens for confirmed orders. The payment service clears the cart
// document in the same transaction that creates the order, so all that is
// left to do here is to drop the stale cached copy.
type Poller struct {
	reader *kafka.Reader
	carts  CacheInvalidator
	logger *slog.Logger
}

func NewPoller(carts CacheInvalidator, logger *slog.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    events.TopicOrderConfirmed,
		GroupID:  "cart-service-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{reader: reader, carts: carts, logger: logger}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				p.logger.ErrorContext(ctx, "error reading message", "error", err)
			}
			continue
		}
		p.handle(ctx, m)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Error("error closing reader", "error", err)
	}
}

func (p *Poller) handle(ctx context.Context, m kafka.Message) {
	var event events.OrderConfirmed
	if err := json.Unmarshal(m.Value, &event); err != nil {
		p.logger.ErrorContext(ctx, "error parsing message", "offset", m.Offset, "error", err)
		return
	}
	if event.UserID == "" {
		p.logger.ErrorContext(ctx, "missing user_id in order event", "offset", m.Offset)
		return
	}

	if err := p.carts.InvalidateCache(ctx, event.UserID); err != nil {
		p.logger.ErrorContext(ctx, "failed to invalidate cart cache",
			"user_id", event.UserID, "order_id", event.OrderID, "error", err)
		return
	}
	p.logger.InfoContext(ctx, "cart cache invalidated after order",
		"user_id", event.UserID, "order_id", event.OrderID)
}
