package identity

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salimhm/zillow-scraper/internal/logger"
)

func TestNextPrefersConfiguredPool(t *testing.T) {
	configured := []string{"AgentOne/1.0", "AgentTwo/2.0"}
	r := NewRotator(configured, "", logger.NewNoOp())

	for range 20 {
		ua := r.Next()
		assert.Contains(t, configured, ua)
	}
}

func TestNextNeverEmpty(t *testing.T) {
	r := NewRotator(nil, "", logger.NewNoOp())

	for range 20 {
		assert.NotEmpty(t, r.Next())
	}
}

func TestNextUsesServiceWhenNoConfiguredPool(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["ServiceAgent/1.0", "ServiceAgent/2.0"]`))
	}))
	defer srv.Close()

	r := NewRotator(nil, srv.URL, logger.NewNoOp())

	for range 10 {
		ua := r.Next()
		assert.True(t, strings.HasPrefix(ua, "ServiceAgent/"))
	}

	// The pool is cached after the first successful query.
	assert.Equal(t, 1, calls)
}

func TestNextFallsBackWhenServiceFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRotator(nil, srv.URL, logger.NewNoOp())

	ua := r.Next()
	assert.NotEmpty(t, ua)
	assert.Contains(t, defaultPool, ua)

	// A failed service is not retried.
	assert.True(t, r.serviceDown)
	assert.NotEmpty(t, r.Next())
}

func TestNextForFiltersByFamily(t *testing.T) {
	configured := []string{
		"Mozilla/5.0 Chrome/120.0 Safari/537.36",
		"Mozilla/5.0 Gecko/20100101 Firefox/121.0",
	}
	r := NewRotator(configured, "", logger.NewNoOp())

	for range 10 {
		require.Contains(t, r.NextFor("firefox"), "Firefox")
	}
}

func TestNextForFallsBackWhenNoMatch(t *testing.T) {
	configured := []string{"CustomAgent/1.0"}
	r := NewRotator(configured, "", logger.NewNoOp())

	assert.Equal(t, "CustomAgent/1.0", r.NextFor("safari"))
}
