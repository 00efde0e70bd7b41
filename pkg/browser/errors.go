package browser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPending signals that a readiness condition was evaluated and does
// not hold yet. Pollers treat it as "keep trying".
var ErrPending = errors.New("condition not yet satisfied")

// ErrStale signals that an element reference no longer corresponds to
// a live node because the page mutated mid-check. Pollers treat it the
// same as ErrPending: the next tick re-locates fresh.
var ErrStale = errors.New("element reference is stale")

// IsTransient reports whether an error from a readiness check should
// be retried rather than propagated.
func IsTransient(err error) bool {
	return errors.Is(err, ErrPending) || errors.Is(err, ErrStale)
}

// InteractionInterceptedError indicates a native click was blocked by
// an overlapping element. The action layer may retry exactly once via
// a script-based click before re-raising.
type InteractionInterceptedError struct {
	Err error
}

func (e *InteractionInterceptedError) Error() string {
	return fmt.Sprintf("click intercepted by another element: %v", e.Err)
}

func (e *InteractionInterceptedError) Unwrap() error { return e.Err }

// classifyElementError maps raw driver errors onto the harness
// taxonomy so that pollers and the action layer can dispatch on type
// instead of message text.
func classifyElementError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "intercepts pointer events"):
		return &InteractionInterceptedError{Err: err}
	case strings.Contains(msg, "not attached to the DOM"),
		strings.Contains(msg, "Execution context was destroyed"),
		strings.Contains(msg, "stale"):
		return fmt.Errorf("%v: %w", err, ErrStale)
	default:
		return err
	}
}
