package proxy_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salimhm/zillow-scraper/internal/coordination"
	"github.com/salimhm/zillow-scraper/internal/logger"
	"github.com/salimhm/zillow-scraper/internal/proxy"
)

func newRotator(endpoints []string) (*proxy.Rotator, *coordination.MemoryStore) {
	store := coordination.NewMemoryStore()
	return proxy.NewRotator(endpoints, store, logger.NewNoOp()), store
}

func TestRotatorRoundRobinWraps(t *testing.T) {
	ctx := context.Background()
	endpoints := []string{"http://p1:8080", "http://p2:8080", "http://p3:8080"}
	r, _ := newRotator(endpoints)

	// N+1 calls over a pool of N visit exactly one endpoint twice.
	seen := make(map[string]int)
	for range len(endpoints) + 1 {
		endpoint, err := r.Get(ctx)
		require.NoError(t, err)
		seen[endpoint]++
	}

	twice := 0
	for _, count := range seen {
		switch count {
		case 1:
		case 2:
			twice++
		default:
			t.Fatalf("endpoint visited %d times", count)
		}
	}
	assert.Equal(t, 1, twice)
}

func TestRotatorSkipsBlacklisted(t *testing.T) {
	ctx := context.Background()
	endpoints := []string{"http://p1:8080", "http://p2:8080"}
	r, _ := newRotator(endpoints)

	r.MarkFailed(ctx, "http://p1:8080")

	for range 4 {
		endpoint, err := r.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "http://p2:8080", endpoint)
	}

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, 1, r.AvailableCount(ctx))
}

func TestRotatorBlacklistExpires(t *testing.T) {
	ctx := context.Background()
	store := coordination.NewMemoryStore()
	now := time.Now()
	store.SetClock(func() time.Time { return now })
	r := proxy.NewRotator([]string{"http://p1:8080", "http://p2:8080"}, store, logger.NewNoOp())

	r.MarkFailed(ctx, "http://p1:8080")
	assert.Equal(t, 1, r.AvailableCount(ctx))

	now = now.Add(proxy.BlacklistWindow + time.Second)
	assert.Equal(t, 2, r.AvailableCount(ctx))

	seen := make(map[string]bool)
	for range 2 {
		endpoint, err := r.Get(ctx)
		require.NoError(t, err)
		seen[endpoint] = true
	}
	assert.True(t, seen["http://p1:8080"])
}

func TestRotatorMarkSuccessClearsBlacklistEarly(t *testing.T) {
	ctx := context.Background()
	r, _ := newRotator([]string{"http://p1:8080", "http://p2:8080"})

	r.MarkFailed(ctx, "http://p1:8080")
	assert.Equal(t, 1, r.AvailableCount(ctx))

	r.MarkSuccess(ctx, "http://p1:8080")
	assert.Equal(t, 2, r.AvailableCount(ctx))
}

func TestRotatorDegradesWhenAllBlacklisted(t *testing.T) {
	ctx := context.Background()
	endpoints := []string{"http://p1:8080", "http://p2:8080"}
	r, _ := newRotator(endpoints)

	for _, e := range endpoints {
		r.MarkFailed(ctx, e)
	}

	endpoint, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Contains(t, endpoints, endpoint)
}

func TestRotatorEmptyPool(t *testing.T) {
	ctx := context.Background()
	r, _ := newRotator(nil)

	endpoint, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, endpoint)
	assert.Zero(t, r.Count())
}
