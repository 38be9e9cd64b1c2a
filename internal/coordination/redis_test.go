package coordination_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salimhm/zillow-scraper/internal/coordination"
)

func newTestRedisStore(t *testing.T) (*coordination.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return coordination.NewRedisStoreFromClient(client), mr
}

func TestRedisStoreSetGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, coordination.ErrKeyNotFound)

	require.NoError(t, store.SetWithTTL(ctx, "k", "v", time.Minute))

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}

func TestRedisStoreIncrementSetsTTLOnce(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	count, err := store.Increment(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Half the window elapses before the second request.
	mr.FastForward(30 * time.Second)

	count, err = store.Increment(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	remaining, err := store.TTL(ctx, "counter")
	require.NoError(t, err)
	assert.LessOrEqual(t, remaining, 30*time.Second)
	assert.Positive(t, remaining)
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	require.NoError(t, store.SetWithTTL(ctx, "k", "v", time.Minute))
	mr.FastForward(61 * time.Second)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, coordination.ErrKeyNotFound)
}

func TestRedisStoreDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	require.NoError(t, store.SetWithTTL(ctx, "k", "v", 0))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, coordination.ErrKeyNotFound)
}
