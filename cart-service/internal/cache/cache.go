package cache

import (
	"context"
	"errors"

	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/domain"
)

// CartCache holds the stored cart document, not the priced view: prices are
// always fetched live from the catalog.
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
