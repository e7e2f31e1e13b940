// Package cartcache names the Redis keys that hold cached carts, so a
// service that changes a cart directly in the store can drop the cached
// copy.
package cartcache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func Key(userID string) string {
	return "cart:" + userID
}

type Invalidator struct {
	client redis.UniversalClient
}

func NewInvalidator(client redis.UniversalClient) *Invalidator {
	return &Invalidator{client: client}
}

func (i *Invalidator) Invalidate(ctx context.Context, userID string) error {
	if err := i.client.Del(ctx, Key(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
