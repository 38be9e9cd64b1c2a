// Package proxy supplies the outbound network path for each fetch. Two
// interchangeable designs exist: a pass-through for providers that rotate
// IPs upstream, and a local round-robin rotator with failure-based
// exclusion backed by the coordination store.
package proxy

import "context"

// Supplier hands out proxy endpoints and records their outcomes.
type Supplier interface {
	// Get returns the proxy URL for the next request, or "" when no proxy
	// is configured.
	Get(ctx context.Context) (string, error)

	// MarkFailed records a failed request through endpoint.
	MarkFailed(ctx context.Context, endpoint string)

	// MarkSuccess records a successful request through endpoint.
	MarkSuccess(ctx context.Context, endpoint string)

	// Count returns the size of the configured pool.
	Count() int

	// AvailableCount returns the number of endpoints not currently
	// excluded.
	AvailableCount(ctx context.Context) int
}
