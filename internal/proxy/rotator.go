package proxy

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"github.com/salimhm/zillow-scraper/internal/coordination"
	"github.com/salimhm/zillow-scraper/internal/logger"
)

const (
	// BlacklistWindow is how long a failed endpoint stays excluded.
	BlacklistWindow = 300 * time.Second

	cursorKey       = "proxy:cursor"
	blacklistPrefix = "proxy:blacklist:"
)

// Rotator cycles through a fixed endpoint pool. The cursor and the failure
// blacklist live in the coordination store so concurrent workers (and
// multiple processes, with the Redis store) share one rotation.
type Rotator struct {
	endpoints []string
	store     coordination.Store
	log       logger.Interface
}

// NewRotator creates a round-robin rotator over the given endpoints.
func NewRotator(endpoints []string, store coordination.Store, log logger.Interface) *Rotator {
	pool := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		if e != "" {
			pool = append(pool, e)
		}
	}
	return &Rotator{endpoints: pool, store: store, log: log}
}

// Get returns the next eligible endpoint, advancing the shared cursor by
// one. Blacklisted endpoints are skipped; if every endpoint is blacklisted
// the rotator degrades to ignoring the blacklist rather than returning
// nothing.
func (r *Rotator) Get(ctx context.Context) (string, error) {
	if len(r.endpoints) == 0 {
		return "", nil
	}

	position, err := r.store.Increment(ctx, cursorKey, 0)
	if err != nil {
		return "", err
	}
	start := int((position - 1) % int64(len(r.endpoints)))

	for offset := range r.endpoints {
		candidate := r.endpoints[(start+offset)%len(r.endpoints)]
		if !r.isBlacklisted(ctx, candidate) {
			return candidate, nil
		}
	}

	// Availability over strict isolation: every endpoint is excluded, so
	// hand out the cursor's pick anyway.
	degraded := r.endpoints[start]
	r.log.Warn("all proxies blacklisted, ignoring blacklist", "endpoint", degraded)
	return degraded, nil
}

// MarkFailed excludes endpoint from rotation for the blacklist window.
func (r *Rotator) MarkFailed(ctx context.Context, endpoint string) {
	if endpoint == "" {
		return
	}
	if err := r.store.SetWithTTL(ctx, blacklistKey(endpoint), "1", BlacklistWindow); err != nil {
		r.log.Error("blacklist proxy failed", "endpoint", endpoint, "error", err.Error())
		return
	}
	r.log.Info("proxy blacklisted", "endpoint", endpoint, "window", BlacklistWindow.String())
}

// MarkSuccess lifts an exclusion early if one is still in effect.
func (r *Rotator) MarkSuccess(ctx context.Context, endpoint string) {
	if endpoint == "" {
		return
	}
	if err := r.store.Delete(ctx, blacklistKey(endpoint)); err != nil {
		r.log.Error("clear proxy blacklist failed", "endpoint", endpoint, "error", err.Error())
	}
}

// Count returns the configured pool size.
func (r *Rotator) Count() int {
	return len(r.endpoints)
}

// AvailableCount returns how many endpoints are currently eligible.
func (r *Rotator) AvailableCount(ctx context.Context) int {
	available := 0
	for _, e := range r.endpoints {
		if !r.isBlacklisted(ctx, e) {
			available++
		}
	}
	return available
}

func (r *Rotator) isBlacklisted(ctx context.Context, endpoint string) bool {
	_, err := r.store.Get(ctx, blacklistKey(endpoint))
	if errors.Is(err, coordination.ErrKeyNotFound) {
		return false
	}
	if err != nil {
		// Store trouble must not stall rotation; treat the endpoint as
		// eligible and let the fetch outcome decide.
		r.log.Error("blacklist lookup failed", "endpoint", endpoint, "error", err.Error())
		return false
	}
	return true
}

// blacklistKey hashes the endpoint so credentials embedded in proxy URLs
// never appear in store keys.
func blacklistKey(endpoint string) string {
	sum := sha1.Sum([]byte(endpoint))
	return blacklistPrefix + hex.EncodeToString(sum[:])
}

var _ Supplier = (*Rotator)(nil)
