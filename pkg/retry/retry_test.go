package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errDial = errors.New("dial tcp: connection refused")

func fast(attempts int) Backoff {
	return Backoff{Attempts: attempts, Initial: time.Millisecond, Max: time.Millisecond}
}

func TestBackoff_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := fast(5).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errDial
		}
		return nil
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestBackoff_ExhaustsAttempts(t *testing.T) {
	var retried []int
	err := fast(5).Do(context.Background(), func(context.Context) error { return errDial },
		func(attempt int, err error, _ time.Duration) {
			assert.ErrorIs(t, err, errDial)
			retried = append(retried, attempt)
		})

	assert.ErrorIs(t, err, errDial)
	assert.Equal(t, []int{1, 2, 3, 4}, retried)
}

func TestBackoff_ZeroAttemptsStillCallsOnce(t *testing.T) {
	calls := 0
	err := Backoff{}.Do(context.Background(), func(context.Context) error {
		calls++
		return errDial
	}, nil)

	assert.ErrorIs(t, err, errDial)
	assert.Equal(t, 1, calls)
}

func TestBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := fast(3).Do(ctx, func(context.Context) error { called = true; return nil }, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestBackoff_CancelDuringWaitReturnsLastError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := Backoff{Attempts: 3, Initial: time.Hour}

	err := b.Do(ctx, func(context.Context) error { return errDial },
		func(int, error, time.Duration) { cancel() })

	assert.ErrorIs(t, err, errDial)
}

func TestBackoff_Delay(t *testing.T) {
	b := Backoff{Initial: 100 * time.Millisecond, Max: 300 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, b.delay(1))
	assert.Equal(t, 200*time.Millisecond, b.delay(2))
	assert.Equal(t, 300*time.Millisecond, b.delay(3))

	s := Startup()
	assert.Equal(t, 5, s.Attempts)
	for i := 0; i < 20; i++ {
		d := s.delay(1)
		assert.InDelta(t, float64(200*time.Millisecond), float64(d), float64(20*time.Millisecond))
	}
}
