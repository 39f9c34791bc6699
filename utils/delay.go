package utils

import (
	"context"
	"math/rand"
	"time"
)

// RandomDelay sleeps for a uniform random duration in [min, max] to keep
// request timing irregular. Returns early on context cancellation. The
// chosen delay is returned for logging.
func RandomDelay(ctx context.Context, min, max time.Duration) time.Duration {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}

	delay := min
	if span := max - min; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span) + 1))
	}
	if delay == 0 {
		return 0
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return delay
}
