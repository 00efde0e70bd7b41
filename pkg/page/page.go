// Package page maps high-level page-object actions onto the correct
// readiness wait before touching the browser. The action-to-condition
// dispatch is a hard contract: reads that only need presence never
// block on visibility, and interactive actions never settle for
// presence alone.
package page

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/waypoint/pkg/browser"
	"github.com/entrhq/waypoint/pkg/wait"
)

// Default wait budgets applied when the page is constructed without
// overrides.
const (
	DefaultTimeout  = 15 * time.Second
	DefaultInterval = wait.DefaultInterval

	// probeTimeout bounds the non-blocking IsDisplayed check.
	probeTimeout = 5 * time.Second
)

// settings holds the effective budgets for one action.
type settings struct {
	timeout  time.Duration
	interval time.Duration
}

// Option overrides a wait budget, either page-wide (passed to New) or
// for a single action.
type Option func(*settings)

// Timeout overrides the wait deadline.
func Timeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// Interval overrides the pause between readiness checks.
func Interval(d time.Duration) Option {
	return func(s *settings) { s.interval = d }
}

// Page exposes high-level actions over one browser session. Page
// objects compose a *Page rather than inheriting from it; each action
// picks the readiness condition required for that interaction and
// locates the element fresh.
type Page struct {
	session  browser.Session
	defaults settings
}

// New creates a page action layer over the session. Options set the
// page-wide default budgets.
func New(session browser.Session, opts ...Option) *Page {
	p := &Page{
		session: session,
		defaults: settings{
			timeout:  DefaultTimeout,
			interval: DefaultInterval,
		},
	}
	for _, opt := range opts {
		opt(&p.defaults)
	}
	return p
}

// Session returns the underlying browser session.
func (p *Page) Session() browser.Session {
	return p.session
}

func (p *Page) resolve(opts []Option) settings {
	s := p.defaults
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (p *Page) await(loc browser.Locator, cond wait.Condition, opts []Option) (browser.Element, error) {
	s := p.resolve(opts)
	return wait.Await(p.session, loc, cond, wait.Options{
		Timeout:  s.timeout,
		Interval: s.interval,
	})
}

// Click waits for the element to be clickable and clicks it. If the
// native click is intercepted by an overlapping element, it retries
// exactly once through a script-based click before propagating the
// interception.
func (p *Page) Click(loc browser.Locator, opts ...Option) error {
	el, err := p.await(loc, wait.Clickable(), opts)
	if err != nil {
		return err
	}

	if err := el.Click(); err != nil {
		var intercepted *browser.InteractionInterceptedError
		if errors.As(err, &intercepted) {
			if _, scriptErr := p.session.ExecuteScript("el => el.click()", el); scriptErr != nil {
				return fmt.Errorf("script click fallback failed after interception: %w", err)
			}
			return nil
		}
		return err
	}
	return nil
}

// Type waits for visibility and sends characters, appending to any
// existing value.
func (p *Page) Type(loc browser.Locator, text string, opts ...Option) error {
	el, err := p.await(loc, wait.Visible(), opts)
	if err != nil {
		return err
	}
	return el.Type(text)
}

// ClearAndType waits for visibility, clears the field, and types the
// text. This is what most form fills want.
func (p *Page) ClearAndType(loc browser.Locator, text string, opts ...Option) error {
	el, err := p.await(loc, wait.Visible(), opts)
	if err != nil {
		return err
	}
	if err := el.Clear(); err != nil {
		return err
	}
	return el.Type(text)
}

// Text waits for visibility and returns the element's trimmed text.
func (p *Page) Text(loc browser.Locator, opts ...Option) (string, error) {
	el, err := p.await(loc, wait.Visible(), opts)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Attribute waits for presence only and returns the attribute value.
// The second return is false when the attribute is absent. Hidden
// elements are fair game here; requiring visibility would make hidden
// fields time out forever.
func (p *Page) Attribute(loc browser.Locator, name string, opts ...Option) (string, bool, error) {
	el, err := p.await(loc, wait.Present(), opts)
	if err != nil {
		return "", false, err
	}
	return el.Attribute(name)
}

// Value returns the element's value attribute; shorthand for input
// fields.
func (p *Page) Value(loc browser.Locator, opts ...Option) (string, error) {
	value, _, err := p.Attribute(loc, "value", opts...)
	return value, err
}

// ScrollIntoView waits for presence and scrolls the element into the
// viewport.
func (p *Page) ScrollIntoView(loc browser.Locator, opts ...Option) error {
	el, err := p.await(loc, wait.Present(), opts)
	if err != nil {
		return err
	}
	return el.ScrollIntoView()
}

// SetChecked waits for clickability and clicks the toggle only when
// its current state differs from the desired one.
func (p *Page) SetChecked(loc browser.Locator, checked bool, opts ...Option) error {
	el, err := p.await(loc, wait.Clickable(), opts)
	if err != nil {
		return err
	}
	current, err := el.Selected()
	if err != nil {
		return err
	}
	if current == checked {
		return nil
	}
	return el.Click()
}

// SelectByText waits for visibility and selects the option with the
// given visible text.
func (p *Page) SelectByText(loc browser.Locator, text string, opts ...Option) error {
	el, err := p.await(loc, wait.Visible(), opts)
	if err != nil {
		return err
	}
	return el.SelectByText(text)
}

// SelectByValue waits for visibility and selects the option with the
// given value attribute.
func (p *Page) SelectByValue(loc browser.Locator, value string, opts ...Option) error {
	el, err := p.await(loc, wait.Visible(), opts)
	if err != nil {
		return err
	}
	return el.SelectByValue(value)
}

// Press waits for visibility and sends a single key, e.g. "Enter" or
// "Tab".
func (p *Page) Press(loc browser.Locator, key string, opts ...Option) error {
	el, err := p.await(loc, wait.Visible(), opts)
	if err != nil {
		return err
	}
	return el.Press(key)
}

// Hover waits for presence and moves the pointer over the element.
func (p *Page) Hover(loc browser.Locator, opts ...Option) error {
	el, err := p.await(loc, wait.Present(), opts)
	if err != nil {
		return err
	}
	return el.Hover()
}

// WaitGone blocks until the element is absent or hidden. A locator
// that never matched anything is satisfied immediately; callers that
// need "was visible, now gone" must assert visibility first.
func (p *Page) WaitGone(loc browser.Locator, opts ...Option) error {
	_, err := p.await(loc, wait.Gone(), opts)
	return err
}

// WaitForText blocks until the element is visible and its text
// contains expected, then returns the matching text trimmed.
func (p *Page) WaitForText(loc browser.Locator, expected string, opts ...Option) (string, error) {
	el, err := p.await(loc, wait.HasText(expected), opts)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// IsDisplayed is a non-blocking probe: it reports whether the element
// becomes visible within a short budget, swallowing the timeout.
func (p *Page) IsDisplayed(loc browser.Locator, opts ...Option) bool {
	merged := append([]Option{Timeout(probeTimeout)}, opts...)
	_, err := p.await(loc, wait.Visible(), merged)
	return err == nil
}

// Count returns the number of elements currently matching the locator
// without waiting.
func (p *Page) Count(loc browser.Locator) (int, error) {
	elements, err := p.session.LocateAll(loc)
	if err != nil {
		return 0, err
	}
	return len(elements), nil
}

// Navigate loads the given URL in the session.
func (p *Page) Navigate(url string) error {
	return p.session.Navigate(url)
}

// Refresh reloads the current page.
func (p *Page) Refresh() error {
	return p.session.Reload()
}

// URL returns the current page URL.
func (p *Page) URL() string {
	return p.session.URL()
}

// Title returns the current page title.
func (p *Page) Title() (string, error) {
	return p.session.Title()
}

// WaitForURLContains blocks until the current URL contains the
// fragment. Useful after navigation and redirects.
func (p *Page) WaitForURLContains(fragment string, opts ...Option) error {
	s := p.resolve(opts)
	_, err := wait.Poll(func() (string, error) {
		current := p.session.URL()
		if strings.Contains(current, fragment) {
			return current, nil
		}
		return "", fmt.Errorf("url %q does not contain %q: %w", current, fragment, browser.ErrPending)
	}, wait.Options{Timeout: s.timeout, Interval: s.interval})
	return err
}

// WaitForTitleContains blocks until the page title contains the
// fragment.
func (p *Page) WaitForTitleContains(fragment string, opts ...Option) error {
	s := p.resolve(opts)
	_, err := wait.Poll(func() (string, error) {
		title, err := p.session.Title()
		if err != nil {
			return "", err
		}
		if strings.Contains(title, fragment) {
			return title, nil
		}
		return "", fmt.Errorf("title %q does not contain %q: %w", title, fragment, browser.ErrPending)
	}, wait.Options{Timeout: s.timeout, Interval: s.interval})
	return err
}
