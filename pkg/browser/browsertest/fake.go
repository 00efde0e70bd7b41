// Package browsertest provides a scripted in-memory Session and
// Element for exercising the wait engine, the page action layer, and
// the driver lifecycle without a live browser. Tests flip element
// state on timers to simulate asynchronous rendering.
package browsertest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/waypoint/pkg/browser"
)

// Element is a synthetic element with directly settable state. All
// setters are safe to call from timer goroutines while a poll loop is
// reading.
type Element struct {
	mu sync.Mutex

	exists    bool
	displayed bool
	enabled   bool
	obscured  bool
	selected  bool
	text      string
	attrs     map[string]string
	box       browser.Rect

	staleNext  bool
	clickQueue []error

	clicks       int
	scriptClicks int
	typed        []string
	pressed      []string
	cleared      int
	hovers       int
	scrolls      int
	selections   []string
}

// Session is a synthetic browser session backed by a locator→element
// map.
type Session struct {
	mu sync.Mutex

	elements map[browser.Locator]*Element
	url      string
	title    string
	navErr   error
	closed   bool
	closeErr error

	implicitWait time.Duration
	pageLoad     time.Duration
	viewportW    int
	viewportH    int

	navigations []string
	scripts     []string
	reloads     int
}

// NewSession creates an empty fake session.
func NewSession() *Session {
	return &Session{
		elements: make(map[browser.Locator]*Element),
		url:      "about:blank",
	}
}

// Add registers an element for the locator. The element starts
// existing, visible, enabled, and unobscured with a 100x20 box; tests
// adjust from there.
func (s *Session) Add(loc browser.Locator) *Element {
	s.mu.Lock()
	defer s.mu.Unlock()

	el := &Element{
		exists:    true,
		displayed: true,
		enabled:   true,
		attrs:     make(map[string]string),
		box:       browser.Rect{X: 10, Y: 10, Width: 100, Height: 20},
	}
	s.elements[loc] = el
	return el
}

// SetURL sets the current URL reported by the session.
func (s *Session) SetURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = url
}

// SetTitle sets the page title.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// FailNavigation makes subsequent Navigate calls return err.
func (s *Session) FailNavigation(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navErr = err
}

// FailClose makes Close return err (after marking the session closed).
func (s *Session) FailClose(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeErr = err
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Navigations returns every URL passed to Navigate.
func (s *Session) Navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigations...)
}

// Scripts returns every script source passed to ExecuteScript.
func (s *Session) Scripts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.scripts...)
}

// ImplicitWait returns the value set through SetDefaultTimeout.
func (s *Session) ImplicitWait() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.implicitWait
}

// PageLoadTimeout returns the value set through SetNavigationTimeout.
func (s *Session) PageLoadTimeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageLoad
}

// Viewport returns the dimensions set through SetViewport.
func (s *Session) Viewport() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewportW, s.viewportH
}

// Locate implements browser.Session.
func (s *Session) Locate(loc browser.Locator) (browser.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.elements[loc]
	if !ok {
		return nil, nil
	}
	el.mu.Lock()
	exists := el.exists
	el.mu.Unlock()
	if !exists {
		return nil, nil
	}
	return el, nil
}

// LocateAll implements browser.Session. The fake maps each locator to
// at most one element.
func (s *Session) LocateAll(loc browser.Locator) ([]browser.Element, error) {
	el, err := s.Locate(loc)
	if err != nil || el == nil {
		return nil, err
	}
	return []browser.Element{el}, nil
}

// Navigate implements browser.Session.
func (s *Session) Navigate(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.navigations = append(s.navigations, url)
	if s.navErr != nil {
		return s.navErr
	}
	s.url = url
	return nil
}

// Reload implements browser.Session.
func (s *Session) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloads++
	return nil
}

// Reloads returns how many times the page was reloaded.
func (s *Session) Reloads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloads
}

// URL implements browser.Session.
func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Title implements browser.Session.
func (s *Session) Title() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title, nil
}

// ExecuteScript implements browser.Session. A script invoked with an
// Element argument whose source mentions click() is treated as a
// script-based click; it always lands, bypassing obstruction.
func (s *Session) ExecuteScript(source string, args ...any) (any, error) {
	s.mu.Lock()
	s.scripts = append(s.scripts, source)
	s.mu.Unlock()

	if len(args) > 0 {
		if el, ok := args[0].(*Element); ok && strings.Contains(source, "click()") {
			el.mu.Lock()
			el.scriptClicks++
			el.mu.Unlock()
		}
	}
	return nil, nil
}

// SetDefaultTimeout implements browser.Session.
func (s *Session) SetDefaultTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.implicitWait = d
}

// SetNavigationTimeout implements browser.Session.
func (s *Session) SetNavigationTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageLoad = d
}

// SetViewport implements browser.Session.
func (s *Session) SetViewport(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewportW = width
	s.viewportH = height
	return nil
}

// Close implements browser.Session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.closeErr
}

// State setters, safe while a poller reads concurrently.

// SetExists controls whether Locate finds the element at all.
func (e *Element) SetExists(v bool) { e.set(func() { e.exists = v }) }

// SetDisplayed controls visibility.
func (e *Element) SetDisplayed(v bool) { e.set(func() { e.displayed = v }) }

// SetEnabled controls the disabled flag.
func (e *Element) SetEnabled(v bool) { e.set(func() { e.enabled = v }) }

// SetObscured simulates another element covering this one's center
// point.
func (e *Element) SetObscured(v bool) { e.set(func() { e.obscured = v }) }

// SetSelected sets the checkbox/radio state.
func (e *Element) SetSelected(v bool) { e.set(func() { e.selected = v }) }

// SetText sets the rendered text.
func (e *Element) SetText(text string) { e.set(func() { e.text = text }) }

// SetAttr sets an attribute value.
func (e *Element) SetAttr(name, value string) { e.set(func() { e.attrs[name] = value }) }

// SetBox sets the bounding box.
func (e *Element) SetBox(box browser.Rect) { e.set(func() { e.box = box }) }

// StaleNext makes the next state query fail with browser.ErrStale,
// simulating a DOM mutation mid-check.
func (e *Element) StaleNext() { e.set(func() { e.staleNext = true }) }

// FailNextClick queues an error for the next native click.
func (e *Element) FailNextClick(err error) {
	e.set(func() { e.clickQueue = append(e.clickQueue, err) })
}

func (e *Element) set(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// Clicks returns the number of native clicks that landed.
func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// ScriptClicks returns the number of script-based clicks.
func (e *Element) ScriptClicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scriptClicks
}

// Typed returns every string typed into the element.
func (e *Element) Typed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.typed...)
}

// Pressed returns every key pressed on the element.
func (e *Element) Pressed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.pressed...)
}

// Cleared returns how many times the element was cleared.
func (e *Element) Cleared() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cleared
}

// Selections returns every option selected on the element.
func (e *Element) Selections() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.selections...)
}

func (e *Element) consumeStale() error {
	if e.staleNext {
		e.staleNext = false
		return fmt.Errorf("node detached: %w", browser.ErrStale)
	}
	return nil
}

// Displayed implements browser.Element.
func (e *Element) Displayed() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.consumeStale(); err != nil {
		return false, err
	}
	return e.displayed, nil
}

// Enabled implements browser.Element.
func (e *Element) Enabled() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.consumeStale(); err != nil {
		return false, err
	}
	return e.enabled, nil
}

// Selected implements browser.Element.
func (e *Element) Selected() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected, nil
}

// Text implements browser.Element.
func (e *Element) Text() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.consumeStale(); err != nil {
		return "", err
	}
	return e.text, nil
}

// Attribute implements browser.Element.
func (e *Element) Attribute(name string) (string, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	value, ok := e.attrs[name]
	return value, ok, nil
}

// BoundingBox implements browser.Element.
func (e *Element) BoundingBox() (browser.Rect, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.displayed {
		return browser.Rect{}, nil
	}
	return e.box, nil
}

// CoversOwnCenter implements browser.Element.
func (e *Element) CoversOwnCenter() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.obscured, nil
}

// Click implements browser.Element.
func (e *Element) Click() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.clickQueue) > 0 {
		err := e.clickQueue[0]
		e.clickQueue = e.clickQueue[1:]
		return err
	}
	e.clicks++
	return nil
}

// Fill implements browser.Element.
func (e *Element) Fill(value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attrs["value"] = value
	return nil
}

// Clear implements browser.Element.
func (e *Element) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cleared++
	e.attrs["value"] = ""
	return nil
}

// Type implements browser.Element.
func (e *Element) Type(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.typed = append(e.typed, text)
	e.attrs["value"] += text
	return nil
}

// Press implements browser.Element.
func (e *Element) Press(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pressed = append(e.pressed, key)
	return nil
}

// Hover implements browser.Element.
func (e *Element) Hover() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hovers++
	return nil
}

// ScrollIntoView implements browser.Element.
func (e *Element) ScrollIntoView() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scrolls++
	return nil
}

// SelectByText implements browser.Element.
func (e *Element) SelectByText(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selections = append(e.selections, "label:"+text)
	return nil
}

// SelectByValue implements browser.Element.
func (e *Element) SelectByValue(value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selections = append(e.selections, "value:"+value)
	return nil
}
