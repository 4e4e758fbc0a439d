package provider

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig bounds a bounded attempt loop shared by all three provider
// clients for transient failures (429s, 5xxs). Grounded on
// internal/ignition/client.go's postScan attempt loop, generalized from a
// fixed "attempt*2 seconds" linear backoff to an exponential one with a
// ceiling, since cloud APIs throttle more aggressively than a local
// gateway.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryConfig mirrors a 3-attempt retry loop with a larger
// ceiling appropriate for cloud API throttling.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    8 * time.Second,
}

// Retryable is implemented by an error carrying a hint about whether a
// retry is worth attempting (e.g. an HTTP 429/5xx vs 4xx).
type Retryable interface {
	Retryable() bool
}

// Do runs fn up to cfg.MaxAttempts times, sleeping with exponential
// backoff between attempts, stopping early if fn's error implements
// Retryable and reports false, or if ctx is done. An error that does not
// implement Retryable is retried.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if r, ok := err.(Retryable); ok && !r.Retryable() {
			return err
		}
	}

	return fmt.Errorf("after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
