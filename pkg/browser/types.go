package browser

import (
	"fmt"
	"strings"
)

// Strategy identifies how a locator value is interpreted when searching
// the document.
type Strategy int

const (
	// ByID matches on the element's id attribute
	ByID Strategy = iota

	// ByName matches on the element's name attribute
	ByName

	// ByCSS treats the value as a CSS selector
	ByCSS

	// ByXPath treats the value as an XPath expression
	ByXPath

	// ByLinkText matches anchor elements by their exact rendered text
	ByLinkText

	// ByClassName matches on a single CSS class name
	ByClassName
)

// String returns the strategy name used in diagnostics.
func (s Strategy) String() string {
	switch s {
	case ByID:
		return "id"
	case ByName:
		return "name"
	case ByCSS:
		return "css"
	case ByXPath:
		return "xpath"
	case ByLinkText:
		return "link text"
	case ByClassName:
		return "class name"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Locator is an immutable strategy+value pair identifying where to
// search for an element. Two locators with equal strategy and value are
// interchangeable, so Locator is a comparable value type and safe to
// use as a map key.
type Locator struct {
	Strategy Strategy
	Value    string
}

// ID locates by id attribute.
func ID(value string) Locator { return Locator{Strategy: ByID, Value: value} }

// Name locates by name attribute.
func Name(value string) Locator { return Locator{Strategy: ByName, Value: value} }

// CSS locates by CSS selector.
func CSS(value string) Locator { return Locator{Strategy: ByCSS, Value: value} }

// XPath locates by XPath expression.
func XPath(value string) Locator { return Locator{Strategy: ByXPath, Value: value} }

// LinkText locates an anchor by its exact rendered text.
func LinkText(value string) Locator { return Locator{Strategy: ByLinkText, Value: value} }

// ClassName locates by a single CSS class.
func ClassName(value string) Locator { return Locator{Strategy: ByClassName, Value: value} }

// String renders the locator for error messages and logs.
func (l Locator) String() string {
	return fmt.Sprintf("%s=%q", l.Strategy, l.Value)
}

// Selector renders the locator as a Playwright selector string.
func (l Locator) Selector() string {
	switch l.Strategy {
	case ByID:
		return fmt.Sprintf("[id=%q]", l.Value)
	case ByName:
		return fmt.Sprintf("[name=%q]", l.Value)
	case ByCSS:
		return l.Value
	case ByXPath:
		return "xpath=" + l.Value
	case ByLinkText:
		return fmt.Sprintf("a:text-is(%q)", l.Value)
	case ByClassName:
		return "." + l.Value
	default:
		return l.Value
	}
}

// Rect is an element's bounding box in page coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Empty reports whether the box has no rendered area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the center point of the box.
func (r Rect) Center() (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Kind selects which browser engine a factory launches.
type Kind string

const (
	KindChromium Kind = "chromium"
	KindFirefox  Kind = "firefox"
	KindWebKit   Kind = "webkit"
)

// ParseKind normalizes a user-supplied browser name. "chrome" is
// accepted as an alias for chromium.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chromium", "chrome":
		return KindChromium, nil
	case "firefox":
		return KindFirefox, nil
	case "webkit", "safari":
		return KindWebKit, nil
	default:
		return "", fmt.Errorf("unsupported browser: %q (valid options: chromium, firefox, webkit)", name)
	}
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Options configures a new browser session at launch time.
type Options struct {
	// Viewport sets the initial viewport size. Nil means the default.
	Viewport *Viewport

	// Args are extra engine-specific command line arguments.
	Args []string
}

// Default values applied when options are left unset.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)
