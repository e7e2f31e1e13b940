package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/domain"
	"github.com/sanketp1/ecommerce-microservices/pkg/cartcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client), mr
}

func TestGet_Success(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	cart := &domain.Cart{
		UserID: "user123",
		Items: []domain.CartItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 3},
		},
		TotalMinor: 4500,
	}
	data, err := json.Marshal(cart)
	require.NoError(t, err)
	require.NoError(t, mr.Set(cartcache.Key("user123"), string(data)))

	got, err := cache.Get(ctx, "user123")
	require.NoError(t, err)
	assert.Equal(t, "user123", got.UserID)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, int64(4500), got.TotalMinor)
}

func TestGet_Miss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	got, err := cache.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestGet_CorruptedPayload(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cartcache.Key("user123"), "{not json"))

	_, err := cache.Get(context.Background(), "user123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestSet_StoresWithTTL(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	err := cache.Set(ctx, "user123", &domain.Cart{UserID: "user123"})
	require.NoError(t, err)

	assert.True(t, mr.Exists("cart:user123"))
	ttl := mr.TTL("cart:user123")
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.Less(t, ttl, 20*time.Minute)
}

func TestDelete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "user123", &domain.Cart{UserID: "user123"}))
	require.NoError(t, cache.Delete(ctx, "user123"))
	assert.False(t, mr.Exists("cart:user123"))

	// deleting a missing key is not an error
	assert.NoError(t, cache.Delete(ctx, "user123"))
}

func TestRedisDown(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "user123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
