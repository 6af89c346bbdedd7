// Package retry provides a bounded exponential backoff used for the startup
// database ping and for tally aggregation writes.
package retry

import (
	"context"
	"time"
)

const maxDelay = 5 * time.Second

// DoWithRetry runs fn until it succeeds, attempts are exhausted, or the
// context is canceled. The delay doubles between attempts up to maxDelay.
func DoWithRetry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	delay := baseDelay

	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = fn(); err == nil {
			return nil
		}
		if attempt >= attempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		if delay *= 2; delay > maxDelay {
			delay = maxDelay
		}
	}
}
