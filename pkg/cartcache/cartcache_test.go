package cartcache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "cart:user-1", Key("user-1"))
}

func TestInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set(Key("user-1"), `{"user_id":"user-1"}`))
	require.NoError(t, mr.Set(Key("user-2"), `{"user_id":"user-2"}`))

	inv := NewInvalidator(client)
	require.NoError(t, inv.Invalidate(context.Background(), "user-1"))

	assert.False(t, mr.Exists(Key("user-1")))
	assert.True(t, mr.Exists(Key("user-2")))

	// deleting an absent key is not an error
	assert.NoError(t, inv.Invalidate(context.Background(), "nobody"))
}

func TestInvalidate_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	assert.Error(t, NewInvalidator(client).Invalidate(context.Background(), "user-1"))
}
