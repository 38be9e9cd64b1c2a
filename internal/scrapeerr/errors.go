// Package scrapeerr defines the error taxonomy shared by the fetch and
// extraction pipeline. Callers classify failures with errors.Is against the
// sentinel errors; the HTTP layer maps them onto transport status codes.
package scrapeerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for failure classification.
var (
	// ErrValidation marks caller-supplied input as insufficient or invalid.
	// Never retried, no side effects.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a terminal miss: the resource does not exist, or no
	// extractable data remained after every strategy was exhausted.
	ErrNotFound = errors.New("not found")

	// ErrBlocked marks an active rejection by the source (HTTP 403/429 or a
	// detected block page). Retryable up to the configured ceiling.
	ErrBlocked = errors.New("request blocked")

	// ErrTransport marks a network-level failure (reset, timeout, DNS).
	// Retryable up to the configured ceiling.
	ErrTransport = errors.New("transport failure")

	// ErrFetch marks any other non-2xx response. Retryable.
	ErrFetch = errors.New("fetch failed")
)

// Validation wraps msg as a caller-input error.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Validationf formats and wraps a caller-input error.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound wraps msg as a terminal not-found error.
func NotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

// NotFoundf formats and wraps a terminal not-found error.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Blocked wraps msg as a blocked-by-source error.
func Blocked(msg string) error {
	return fmt.Errorf("%w: %s", ErrBlocked, msg)
}

// ScrapeFailed wraps the final cause once the retry ceiling is exhausted.
// It preserves the underlying classification so errors.Is(err, ErrBlocked)
// still matches after wrapping.
type ScrapeFailed struct {
	URL      string
	Attempts int
	Cause    error
}

// Error implements the error interface.
func (e *ScrapeFailed) Error() string {
	return fmt.Sprintf("scrape failed after %d attempts for %s: %v", e.Attempts, e.URL, e.Cause)
}

// Unwrap exposes the last classified failure.
func (e *ScrapeFailed) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether a classified error may be retried.
// Not-found and validation errors are terminal; retrying cannot change
// their outcome.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		return false
	}
	return errors.Is(err, ErrBlocked) || errors.Is(err, ErrTransport) || errors.Is(err, ErrFetch)
}
