// Package wait implements the condition-polling engine that turns
// unreliable, eventually-true page state into reliable blocking calls
// with hard deadlines.
package wait

import (
	"fmt"
	"time"

	"github.com/entrhq/waypoint/pkg/browser"
)

// DefaultInterval is the pause between poll ticks when the caller does
// not override it. Fixed-interval polling is intentional; there is no
// backoff.
const DefaultInterval = 500 * time.Millisecond

// Options controls a single poll loop.
type Options struct {
	// Timeout is the hard deadline. Must be positive.
	Timeout time.Duration

	// Interval is the pause between ticks. Zero means DefaultInterval.
	Interval time.Duration
}

// Check evaluates a readiness predicate once. A nil error means the
// predicate holds and the value is final. Returning an error that
// satisfies browser.IsTransient (pending, stale) asks the poller to
// try again; any other error aborts the poll immediately.
type Check[T any] func() (T, error)

// Poll evaluates check until it succeeds or the deadline elapses.
//
// The check runs immediately, so a predicate that is already true
// returns without sleeping. After each failed tick the poller sleeps
// the interval and then compares elapsed time against the deadline;
// on expiry it returns a *TimeoutError carrying the last observed
// state. Checks must be idempotent: the poller may run them any
// number of times.
func Poll[T any](check Check[T], opts Options) (T, error) {
	var zero T

	if opts.Timeout <= 0 {
		return zero, fmt.Errorf("wait: timeout must be positive, got %v", opts.Timeout)
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	start := time.Now()
	lastState := "never evaluated"
	for {
		value, err := check()
		if err == nil {
			return value, nil
		}
		if !browser.IsTransient(err) {
			return zero, err
		}
		lastState = err.Error()

		time.Sleep(interval)
		if elapsed := time.Since(start); elapsed >= opts.Timeout {
			return zero, &TimeoutError{
				Budget:    opts.Timeout,
				Elapsed:   elapsed,
				LastState: lastState,
			}
		}
	}
}
