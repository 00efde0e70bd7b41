package browser

import "time"

// Element is a live reference to a located element. It is valid only
// for the duration of one action: the page may replace the underlying
// node at any time, after which state queries return ErrStale. Callers
// that need a fresh reference re-locate through the session.
type Element interface {
	// Displayed reports whether the element is rendered and visible.
	Displayed() (bool, error)

	// Enabled reports whether the element accepts interaction.
	Enabled() (bool, error)

	// Selected reports the checked state of a checkbox or radio input.
	Selected() (bool, error)

	// Text returns the element's rendered text.
	Text() (string, error)

	// Attribute returns the named attribute value. The second return
	// is false when the attribute is absent.
	Attribute(name string) (string, bool, error)

	// BoundingBox returns the element's box in page coordinates. A
	// zero box means the element has no rendered area.
	BoundingBox() (Rect, error)

	// CoversOwnCenter reports whether the topmost element at this
	// element's center point is the element itself or one of its
	// descendants. False means another element obscures it.
	CoversOwnCenter() (bool, error)

	Click() error
	Fill(value string) error
	Clear() error
	Type(text string) error
	Press(key string) error
	Hover() error
	ScrollIntoView() error
	SelectByText(text string) error
	SelectByValue(value string) error
}

// Session is one live browser session. A session is owned by exactly
// one test execution and must never be shared across concurrently
// running tests.
type Session interface {
	// Locate returns the first element matching the locator, or
	// (nil, nil) when no element matches.
	Locate(loc Locator) (Element, error)

	// LocateAll returns every element matching the locator. An empty
	// slice means no matches.
	LocateAll(loc Locator) ([]Element, error)

	// Navigate loads the given URL and waits for the page load to
	// settle, subject to the navigation timeout.
	Navigate(url string) error

	// Reload reloads the current page.
	Reload() error

	// URL returns the current page URL.
	URL() string

	// Title returns the current page title.
	Title() (string, error)

	// ExecuteScript evaluates JavaScript in the page. Arguments of
	// type Element are passed through as live handles.
	ExecuteScript(source string, args ...any) (any, error)

	// SetDefaultTimeout sets the session's implicit wait budget for
	// element operations.
	SetDefaultTimeout(d time.Duration)

	// SetNavigationTimeout sets the page load budget.
	SetNavigationTimeout(d time.Duration)

	// SetViewport resizes the viewport to the given dimensions.
	SetViewport(width, height int) error

	// Close tears down the session and its browser resources. Safe to
	// call once; the owner guarantees it is not called twice.
	Close() error
}

// Factory creates browser sessions. The driver lifecycle manager is
// the only intended caller.
type Factory interface {
	Create(kind Kind, headless bool, opts Options) (Session, error)
}
