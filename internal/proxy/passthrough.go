package proxy

import "context"

// PassThrough returns a single configured upstream endpoint unchanged.
// Rotating providers (Bright Data, Oxylabs and similar) assign a fresh exit
// IP per request behind one connection string, so failure tracking is a
// no-op here.
type PassThrough struct {
	endpoint string
}

// NewPassThrough creates a pass-through supplier. endpoint may be empty,
// in which case requests go out directly.
func NewPassThrough(endpoint string) *PassThrough {
	return &PassThrough{endpoint: endpoint}
}

// Get returns the configured endpoint.
func (p *PassThrough) Get(_ context.Context) (string, error) {
	return p.endpoint, nil
}

// MarkFailed is a no-op; the provider rotates on its own.
func (p *PassThrough) MarkFailed(_ context.Context, _ string) {}

// MarkSuccess is a no-op.
func (p *PassThrough) MarkSuccess(_ context.Context, _ string) {}

// Count reports 1 when an endpoint is configured, 0 otherwise.
func (p *PassThrough) Count() int {
	if p.endpoint == "" {
		return 0
	}
	return 1
}

// AvailableCount equals Count; pass-through endpoints are never excluded.
func (p *PassThrough) AvailableCount(_ context.Context) int {
	return p.Count()
}

var _ Supplier = (*PassThrough)(nil)
