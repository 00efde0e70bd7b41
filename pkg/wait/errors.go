package wait

import (
	"fmt"
	"time"

	"github.com/entrhq/waypoint/pkg/browser"
)

// TimeoutError reports that a poll deadline elapsed before the
// condition became true. It carries the last observed state for
// diagnostics. The engine never converts a timeout into a different
// error kind and never retries past its own deadline.
type TimeoutError struct {
	Budget    time.Duration
	Elapsed   time.Duration
	LastState string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("condition not met within %v (elapsed %v, last state: %s)",
		e.Budget, e.Elapsed, e.LastState)
}

// ElementNotReadyError is the typed failure surfaced to the page layer
// when a readiness condition times out for a specific locator.
type ElementNotReadyError struct {
	Locator   browser.Locator
	Condition Condition
	Elapsed   time.Duration

	timeout *TimeoutError
}

func (e *ElementNotReadyError) Error() string {
	return fmt.Sprintf("element %s did not reach %s within %v: %s",
		e.Locator, e.Condition, e.timeout.Budget, e.timeout.LastState)
}

// Unwrap exposes the underlying TimeoutError for errors.As chains.
func (e *ElementNotReadyError) Unwrap() error { return e.timeout }
