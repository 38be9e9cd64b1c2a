package fetch

import (
	"math/rand"
	"time"
)

// Jitter bounds for the delay before a retry attempt.
const (
	DefaultDelayMin = 1 * time.Second
	DefaultDelayMax = 3 * time.Second
)

// backoff sleeps for a uniformly random interval between the configured
// minimum and maximum delay. It is a named, injectable step so tests can
// observe retry pacing without wall-clock sleeps.
func (c *Client) backoff() {
	window := c.cfg.DelayMax - c.cfg.DelayMin
	delay := c.cfg.DelayMin
	if window > 0 {
		delay += time.Duration(c.randFloat() * float64(window))
	}

	c.log.Debug("backing off before retry", "delay", delay.String())
	c.sleep(delay)
}

// defaultRandFloat is the production jitter source.
func defaultRandFloat() float64 {
	return rand.Float64()
}
