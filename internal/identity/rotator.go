// Package identity supplies the request identity (User-Agent string) for
// each outbound fetch. Sources are tried in priority order: the configured
// pool, a lazily queried external generator service, then a built-in
// default pool. The chain never fails; absence of every source still yields
// a usable default.
package identity

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/salimhm/zillow-scraper/internal/logger"
)

// defaultPool is the last-resort identity set, kept loosely current with
// mainstream browser releases.
var defaultPool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
}

const serviceTimeout = 5 * time.Second

// Rotator hands out a User-Agent per request.
type Rotator struct {
	configured []string
	serviceURL string
	httpClient *http.Client
	log        logger.Interface

	mu          sync.Mutex
	servicePool []string
	serviceDown bool
	randFn      func(n int) int
}

// NewRotator creates a rotator. configured may be empty; serviceURL may be
// empty to disable the external generator tier.
func NewRotator(configured []string, serviceURL string, log logger.Interface) *Rotator {
	pool := make([]string, 0, len(configured))
	for _, ua := range configured {
		if trimmed := strings.TrimSpace(ua); trimmed != "" {
			pool = append(pool, trimmed)
		}
	}

	return &Rotator{
		configured: pool,
		serviceURL: serviceURL,
		httpClient: &http.Client{Timeout: serviceTimeout},
		log:        log,
		randFn:     rand.Intn,
	}
}

// Next returns a User-Agent string. Never empty.
func (r *Rotator) Next() string {
	return r.pick(r.activePool())
}

// NextFor returns a User-Agent whose string contains the given browser
// family (case-insensitive substring match, e.g. "Chrome", "Firefox"). When
// no identity in the active pool matches, it falls back to the unfiltered
// chain.
func (r *Rotator) NextFor(family string) string {
	pool := r.activePool()

	matched := make([]string, 0, len(pool))
	needle := strings.ToLower(family)
	for _, ua := range pool {
		if strings.Contains(strings.ToLower(ua), needle) {
			matched = append(matched, ua)
		}
	}

	if len(matched) == 0 {
		return r.pick(pool)
	}
	return r.pick(matched)
}

// activePool resolves the priority chain to the first available source.
func (r *Rotator) activePool() []string {
	if len(r.configured) > 0 {
		return r.configured
	}

	if pool := r.fromService(); len(pool) > 0 {
		return pool
	}

	return defaultPool
}

// pick chooses uniformly at random from pool.
func (r *Rotator) pick(pool []string) string {
	if len(pool) == 0 {
		pool = defaultPool
	}
	return pool[r.randFn(len(pool))]
}

// fromService returns the generator-service pool, querying it lazily on
// first use and caching the result once it works. A failed service is
// remembered and never retried for the life of the rotator.
func (r *Rotator) fromService() []string {
	if r.serviceURL == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.servicePool) > 0 {
		return r.servicePool
	}
	if r.serviceDown {
		return nil
	}

	pool, err := r.queryService()
	if err != nil {
		r.serviceDown = true
		r.log.Warn("user-agent service unavailable, falling back to defaults",
			"url", r.serviceURL,
			"error", err.Error(),
		)
		return nil
	}

	r.servicePool = pool
	r.log.Info("user-agent service pool loaded", "count", len(pool))
	return r.servicePool
}

// queryService fetches a JSON array of user-agent strings.
func (r *Rotator) queryService() ([]string, error) {
	resp, err := r.httpClient.Get(r.serviceURL)
	if err != nil {
		return nil, fmt.Errorf("query user-agent service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user-agent service returned status %d", resp.StatusCode)
	}

	var agents []string
	if decodeErr := json.NewDecoder(resp.Body).Decode(&agents); decodeErr != nil {
		return nil, fmt.Errorf("decode user-agent service response: %w", decodeErr)
	}

	cleaned := make([]string, 0, len(agents))
	for _, ua := range agents {
		if trimmed := strings.TrimSpace(ua); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("user-agent service returned empty pool")
	}
	return cleaned, nil
}
