package wait

import (
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/waypoint/pkg/browser"
)

// Kind enumerates the closed set of readiness conditions. Adding a
// kind requires handling it in Condition.Check; there is no string
// dispatch to silently fall through.
type Kind int

const (
	// Presence holds when the element exists in the document tree.
	Presence Kind = iota

	// Visibility holds when the element exists, is rendered with a
	// non-zero box, and is not hidden.
	Visibility

	// Clickability holds when the element is visible, enabled, and
	// not obscured by another element at its center point.
	Clickability

	// Invisibility holds when the element is absent from the tree or
	// present but hidden. An element that never existed satisfies it
	// immediately.
	Invisibility

	// TextPresent holds when the element is visible and its rendered
	// text contains the expected substring.
	TextPresent
)

func (k Kind) String() string {
	switch k {
	case Presence:
		return "presence"
	case Visibility:
		return "visibility"
	case Clickability:
		return "clickability"
	case Invisibility:
		return "invisibility"
	case TextPresent:
		return "text present"
	default:
		return fmt.Sprintf("condition(%d)", int(k))
	}
}

// Condition is a named readiness predicate over element state.
// Conditions are immutable values; evaluating one never mutates the
// locator or the condition itself.
type Condition struct {
	Kind Kind

	// Expected is the substring a TextPresent condition looks for.
	Expected string
}

// Present waits for the element to exist in the document tree.
func Present() Condition { return Condition{Kind: Presence} }

// Visible waits for the element to be rendered and visible.
func Visible() Condition { return Condition{Kind: Visibility} }

// Clickable waits for the element to be visible, enabled, and
// unobstructed at its center point.
func Clickable() Condition { return Condition{Kind: Clickability} }

// Gone waits for the element to be absent or hidden.
func Gone() Condition { return Condition{Kind: Invisibility} }

// HasText waits for the element's visible text to contain expected.
func HasText(expected string) Condition {
	return Condition{Kind: TextPresent, Expected: expected}
}

func (c Condition) String() string {
	if c.Kind == TextPresent {
		return fmt.Sprintf("text %q present", c.Expected)
	}
	return c.Kind.String()
}

// Check locates the element fresh and evaluates the condition once.
// A nil error means the condition holds; the returned element is nil
// for Invisibility. A wrapped browser.ErrPending means "not yet".
// Elements are never cached across ticks because the page may have
// replaced the node entirely.
func (c Condition) Check(session browser.Session, loc browser.Locator) (browser.Element, error) {
	el, err := session.Locate(loc)
	if err != nil {
		return nil, err
	}

	switch c.Kind {
	case Presence:
		if el == nil {
			return nil, pendingf("no element matching %s", loc)
		}
		return el, nil

	case Visibility:
		return visible(el, loc)

	case Clickability:
		el, err := visible(el, loc)
		if err != nil {
			return nil, err
		}
		enabled, err := el.Enabled()
		if err != nil {
			return nil, err
		}
		if !enabled {
			return nil, pendingf("element %s is disabled", loc)
		}
		covers, err := el.CoversOwnCenter()
		if err != nil {
			return nil, err
		}
		if !covers {
			return nil, pendingf("element %s is obscured at its center point", loc)
		}
		return el, nil

	case Invisibility:
		if el == nil {
			return nil, nil
		}
		shown, err := el.Displayed()
		if err != nil {
			// Removed mid-check counts as gone.
			if errors.Is(err, browser.ErrStale) {
				return nil, nil
			}
			return nil, err
		}
		if shown {
			return nil, pendingf("element %s is still visible", loc)
		}
		return nil, nil

	case TextPresent:
		el, err := visible(el, loc)
		if err != nil {
			return nil, err
		}
		text, err := el.Text()
		if err != nil {
			return nil, err
		}
		if !strings.Contains(text, c.Expected) {
			return nil, pendingf("element %s text %q does not contain %q", loc, text, c.Expected)
		}
		return el, nil

	default:
		return nil, fmt.Errorf("wait: unknown condition kind %d", c.Kind)
	}
}

// visible applies the Visibility predicate to an already-located
// element: present, displayed, and a non-empty rendered box.
func visible(el browser.Element, loc browser.Locator) (browser.Element, error) {
	if el == nil {
		return nil, pendingf("no element matching %s", loc)
	}
	shown, err := el.Displayed()
	if err != nil {
		return nil, err
	}
	if !shown {
		return nil, pendingf("element %s is present but hidden", loc)
	}
	box, err := el.BoundingBox()
	if err != nil {
		return nil, err
	}
	if box.Empty() {
		return nil, pendingf("element %s has an empty bounding box", loc)
	}
	return el, nil
}

func pendingf(format string, args ...any) error {
	args = append(args, browser.ErrPending)
	return fmt.Errorf(format+": %w", args...)
}

// Await polls the condition against the session until it holds or the
// timeout elapses. Deadline failures are reported as
// *ElementNotReadyError; the element is nil for Invisibility.
func Await(session browser.Session, loc browser.Locator, cond Condition, opts Options) (browser.Element, error) {
	el, err := Poll(func() (browser.Element, error) {
		return cond.Check(session, loc)
	}, opts)
	if err != nil {
		var timeout *TimeoutError
		if errors.As(err, &timeout) {
			return nil, &ElementNotReadyError{
				Locator:   loc,
				Condition: cond,
				Elapsed:   timeout.Elapsed,
				timeout:   timeout,
			}
		}
		return nil, err
	}
	return el, nil
}
