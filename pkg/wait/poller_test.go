package wait

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/waypoint/pkg/browser"
)

func pending(msg string) error {
	return fmt.Errorf("%s: %w", msg, browser.ErrPending)
}

func TestPollReturnsImmediatelyWhenAlreadyTrue(t *testing.T) {
	calls := 0
	start := time.Now()

	value, err := Poll(func() (int, error) {
		calls++
		return 42, nil
	}, Options{Timeout: 5 * time.Second, Interval: time.Second})

	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, 1, calls)
	// No sleep on the fast path, even with a one second interval.
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestPollSucceedsOnceConditionHolds(t *testing.T) {
	const (
		becomesTrue = 80 * time.Millisecond
		interval    = 20 * time.Millisecond
	)
	start := time.Now()
	deadline := start.Add(becomesTrue)

	value, err := Poll(func() (string, error) {
		if time.Now().Before(deadline) {
			return "", pending("not yet")
		}
		return "ready", nil
	}, Options{Timeout: 2 * time.Second, Interval: interval})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "ready", value)
	// Success lands within one interval of the condition turning true.
	assert.GreaterOrEqual(t, elapsed, becomesTrue)
	assert.Less(t, elapsed, becomesTrue+interval+100*time.Millisecond)
}

func TestPollTimeoutElapsedWithinOneInterval(t *testing.T) {
	const (
		timeout  = 150 * time.Millisecond
		interval = 50 * time.Millisecond
	)

	start := time.Now()
	_, err := Poll(func() (int, error) {
		return 0, pending("element missing")
	}, Options{Timeout: timeout, Interval: interval})
	wall := time.Since(start)

	require.Error(t, err)
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)

	assert.Equal(t, timeout, timeoutErr.Budget)
	assert.GreaterOrEqual(t, timeoutErr.Elapsed, timeout)
	// The overshoot is bounded by one interval (plus scheduler slack).
	assert.Less(t, timeoutErr.Elapsed, timeout+interval+100*time.Millisecond)
	assert.GreaterOrEqual(t, wall, timeout)
	assert.Contains(t, timeoutErr.LastState, "element missing")
}

func TestPollRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32

	value, err := Poll(func() (int, error) {
		switch calls.Add(1) {
		case 1:
			return 0, pending("still rendering")
		case 2:
			return 0, fmt.Errorf("node replaced: %w", browser.ErrStale)
		default:
			return 7, nil
		}
	}, Options{Timeout: 2 * time.Second, Interval: 10 * time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, 7, value)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPollAbortsOnNonTransientError(t *testing.T) {
	boom := errors.New("browser crashed")
	calls := 0

	_, err := Poll(func() (int, error) {
		calls++
		return 0, boom
	}, Options{Timeout: 2 * time.Second, Interval: 10 * time.Millisecond})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	var timeoutErr *TimeoutError
	assert.False(t, errors.As(err, &timeoutErr))
}

func TestPollRejectsNonPositiveTimeout(t *testing.T) {
	_, err := Poll(func() (int, error) { return 1, nil }, Options{Timeout: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout must be positive")

	_, err = Poll(func() (int, error) { return 1, nil }, Options{Timeout: -time.Second})
	require.Error(t, err)
}

func TestPollDefaultsIntervalWhenZero(t *testing.T) {
	// With the default 500ms interval a 100ms budget gets exactly one
	// check before the deadline trips.
	calls := 0
	start := time.Now()

	_, err := Poll(func() (int, error) {
		calls++
		return 0, pending("nope")
	}, Options{Timeout: 100 * time.Millisecond})

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 1, calls)
	assert.GreaterOrEqual(t, time.Since(start), DefaultInterval)
}
