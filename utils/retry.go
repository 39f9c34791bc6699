package utils

import (
	"context"
	"fmt"
	"time"
)

// RetryWithBackoff runs fn up to maxAttempts times, doubling the wait
// between attempts starting from initialWait. onFailure runs after every
// failed attempt before the backoff wait, so callers can capture debugging
// artifacts or trigger recovery (screenshot, page reload).
func RetryWithBackoff(ctx context.Context, maxAttempts int, initialWait time.Duration, fn func() error, onFailure func(attempt int, err error)) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	wait := initialWait
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err
			if onFailure != nil {
				onFailure(attempt, err)
			}
			if attempt < maxAttempts {
				timer := time.NewTimer(wait)
				select {
				case <-timer.C:
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				}
				wait *= 2
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("all %d attempts failed, last error: %w", maxAttempts, lastErr)
}
