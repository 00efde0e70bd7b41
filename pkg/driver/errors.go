package driver

import (
	"fmt"

	"github.com/entrhq/waypoint/pkg/browser"
)

// SessionStartError reports that the browser factory could not produce
// a session. It is fatal to the current test; the manager does not
// retry.
type SessionStartError struct {
	Kind browser.Kind
	Err  error
}

func (e *SessionStartError) Error() string {
	return fmt.Sprintf("failed to start %s session: %v", e.Kind, e.Err)
}

func (e *SessionStartError) Unwrap() error { return e.Err }

// NavigationError reports a failed page load. The session remains
// usable; the caller decides whether the test can continue.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// CleanupError reports a failure while closing a session. It is logged
// and swallowed: cleanup must never mask the primary test outcome.
type CleanupError struct {
	Err error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("session cleanup failed: %v", e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }
