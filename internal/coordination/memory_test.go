package coordination_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salimhm/zillow-scraper/internal/coordination"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := coordination.NewMemoryStore()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, coordination.ErrKeyNotFound)

	require.NoError(t, store.SetWithTTL(ctx, "k", "v", 0))
	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, coordination.ErrKeyNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := coordination.NewMemoryStore()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.SetWithTTL(ctx, "k", "v", time.Minute))

	remaining, err := store.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, remaining)

	// Advance past expiry.
	now = now.Add(61 * time.Second)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, coordination.ErrKeyNotFound)
}

func TestMemoryStoreIncrementKeepsWindowTTL(t *testing.T) {
	ctx := context.Background()
	store := coordination.NewMemoryStore()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	count, err := store.Increment(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	now = now.Add(30 * time.Second)

	count, err = store.Increment(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// The second increment must not extend the original window.
	remaining, err := store.TTL(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, remaining)
}

func TestMemoryStoreConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	store := coordination.NewMemoryStore()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for range goroutines {
		go func() {
			defer wg.Done()
			_, _ = store.Increment(ctx, "counter", time.Minute)
		}()
	}
	wg.Wait()

	value, err := store.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, "50", value)
}
