// Package ratelimit bounds outbound request volume per caller identity
// using sliding-window counters in the coordination store.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/salimhm/zillow-scraper/internal/coordination"
	"github.com/salimhm/zillow-scraper/internal/logger"
)

// Window lengths. Counters are keyed by floor(now/window) so each bucket is
// a fixed, non-overlapping time slice.
const (
	minuteWindow = time.Minute
	hourWindow   = time.Hour
)

// Default ceilings when the configuration supplies none.
const (
	DefaultPerMinute = 60
	DefaultPerHour   = 500
)

// TimeProvider abstracts the clock for deterministic tests.
type TimeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now() }

// Remaining reports the unused budget per window.
type Remaining struct {
	PerMinute      int `json:"remaining_per_minute"`
	PerHour        int `json:"remaining_per_hour"`
	LimitPerMinute int `json:"limit_per_minute"`
	LimitPerHour   int `json:"limit_per_hour"`
}

// Limiter enforces per-minute and per-hour request ceilings.
type Limiter struct {
	store     coordination.Store
	log       logger.Interface
	clock     TimeProvider
	perMinute int
	perHour   int
}

// NewLimiter creates a limiter with the given ceilings. Non-positive
// ceilings fall back to the defaults.
func NewLimiter(store coordination.Store, log logger.Interface, perMinute, perHour int) *Limiter {
	if perMinute <= 0 {
		perMinute = DefaultPerMinute
	}
	if perHour <= 0 {
		perHour = DefaultPerHour
	}
	return &Limiter{
		store:     store,
		log:       log,
		clock:     realTimeProvider{},
		perMinute: perMinute,
		perHour:   perHour,
	}
}

// SetClock overrides the time source. Test hook.
func (l *Limiter) SetClock(clock TimeProvider) {
	l.clock = clock
}

// Allow checks both windows for identifier. When either ceiling is reached
// it returns false and the time remaining until that window rolls over;
// otherwise it increments both counters and returns true.
func (l *Limiter) Allow(ctx context.Context, identifier string) (bool, time.Duration, error) {
	now := l.clock.Now()

	minuteCount, err := l.count(ctx, windowKey(identifier, "minute", now, minuteWindow))
	if err != nil {
		return false, 0, err
	}
	if minuteCount >= int64(l.perMinute) {
		retryAfter := untilRollover(now, minuteWindow)
		l.log.Warn("rate limit exceeded", "identifier", identifier, "window", "minute")
		return false, retryAfter, nil
	}

	hourCount, err := l.count(ctx, windowKey(identifier, "hour", now, hourWindow))
	if err != nil {
		return false, 0, err
	}
	if hourCount >= int64(l.perHour) {
		retryAfter := untilRollover(now, hourWindow)
		l.log.Warn("rate limit exceeded", "identifier", identifier, "window", "hour")
		return false, retryAfter, nil
	}

	if _, err = l.store.Increment(ctx, windowKey(identifier, "minute", now, minuteWindow), minuteWindow); err != nil {
		return false, 0, err
	}
	if _, err = l.store.Increment(ctx, windowKey(identifier, "hour", now, hourWindow), hourWindow); err != nil {
		return false, 0, err
	}

	return true, 0, nil
}

// Remaining reports the unused budget for identifier without consuming any.
func (l *Limiter) Remaining(ctx context.Context, identifier string) (Remaining, error) {
	now := l.clock.Now()

	minuteCount, err := l.count(ctx, windowKey(identifier, "minute", now, minuteWindow))
	if err != nil {
		return Remaining{}, err
	}
	hourCount, err := l.count(ctx, windowKey(identifier, "hour", now, hourWindow))
	if err != nil {
		return Remaining{}, err
	}

	return Remaining{
		PerMinute:      clampRemaining(l.perMinute, minuteCount),
		PerHour:        clampRemaining(l.perHour, hourCount),
		LimitPerMinute: l.perMinute,
		LimitPerHour:   l.perHour,
	}, nil
}

// Reset clears both current-window counters for identifier.
func (l *Limiter) Reset(ctx context.Context, identifier string) error {
	now := l.clock.Now()

	if err := l.store.Delete(ctx, windowKey(identifier, "minute", now, minuteWindow)); err != nil {
		return err
	}
	if err := l.store.Delete(ctx, windowKey(identifier, "hour", now, hourWindow)); err != nil {
		return err
	}
	l.log.Info("rate limits reset", "identifier", identifier)
	return nil
}

// count reads the current counter value for key; a missing key is zero.
func (l *Limiter) count(ctx context.Context, key string) (int64, error) {
	value, err := l.store.Get(ctx, key)
	if errors.Is(err, coordination.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	parsed, parseErr := strconv.ParseInt(value, 10, 64)
	if parseErr != nil {
		return 0, fmt.Errorf("parse counter %q: %w", key, parseErr)
	}
	return parsed, nil
}

// windowKey derives the store key for an identifier's current window bucket.
func windowKey(identifier, kind string, now time.Time, window time.Duration) string {
	index := now.Unix() / int64(window.Seconds())
	return fmt.Sprintf("rate_limit:%s:%s:%d", identifier, kind, index)
}

// untilRollover returns the time left before the current window bucket ends.
func untilRollover(now time.Time, window time.Duration) time.Duration {
	elapsed := time.Duration(now.Unix()%int64(window.Seconds())) * time.Second
	return window - elapsed
}

func clampRemaining(limit int, used int64) int {
	remaining := limit - int(used)
	if remaining < 0 {
		return 0
	}
	return remaining
}
