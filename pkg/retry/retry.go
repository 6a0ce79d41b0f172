// Package retry retries an operation with exponential backoff and jitter.
// Used to wait for Postgres at startup.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Backoff describes how often and how long to retry.
type Backoff struct {
	// Attempts is the total number of calls, including the first one.
	Attempts int

	// Initial is the delay after the first failure; it doubles each time.
	Initial time.Duration

	// Max caps a single delay.
	Max time.Duration

	// Jitter spreads each delay by ±Jitter of itself (0 disables it).
	Jitter float64
}

// Startup is the backoff for reaching backing stores while their
// containers may still be coming up: 5 attempts over roughly 3 seconds.
func Startup() Backoff {
	return Backoff{
		Attempts: 5,
		Initial:  200 * time.Millisecond,
		Max:      5 * time.Second,
		Jitter:   0.1,
	}
}

// OnRetry is called after a failed attempt, before sleeping.
type OnRetry func(attempt int, err error, delay time.Duration)

// Do calls op until it succeeds, the attempts run out or ctx is done.
// Every error is retried. The last error of op is returned; a context
// error is returned only if op never ran.
func (b Backoff) Do(ctx context.Context, op func(context.Context) error, onRetry OnRetry) error {
	attempts := max(b.Attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		delay := b.delay(attempt)
		if onRetry != nil {
			onRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}

// delay is Initial·2^(attempt-1), capped at Max, with jitter applied.
func (b Backoff) delay(attempt int) time.Duration {
	d := float64(b.Initial) * math.Pow(2, float64(attempt-1))
	if b.Max > 0 && d > float64(b.Max) {
		d = float64(b.Max)
	}
	if b.Jitter > 0 {
		d += d * b.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(max(d, 0))
}
