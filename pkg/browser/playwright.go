package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// playwrightSession adapts a Playwright browser/context/page triple to
// the Session interface. One session owns one browser process.
type playwrightSession struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

// playwrightElement adapts a Playwright element handle to Element.
type playwrightElement struct {
	handle playwright.ElementHandle
}

func (s *playwrightSession) Locate(loc Locator) (Element, error) {
	handle, err := s.page.QuerySelector(loc.Selector())
	if err != nil {
		return nil, classifyElementError(err)
	}
	if handle == nil {
		return nil, nil
	}
	return &playwrightElement{handle: handle}, nil
}

func (s *playwrightSession) LocateAll(loc Locator) ([]Element, error) {
	handles, err := s.page.QuerySelectorAll(loc.Selector())
	if err != nil {
		return nil, classifyElementError(err)
	}
	elements := make([]Element, 0, len(handles))
	for _, handle := range handles {
		elements = append(elements, &playwrightElement{handle: handle})
	}
	return elements, nil
}

func (s *playwrightSession) Navigate(url string) error {
	if _, err := s.page.Goto(url, playwright.PageGotoOptions{}); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (s *playwrightSession) Reload() error {
	if _, err := s.page.Reload(); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	return nil
}

func (s *playwrightSession) URL() string {
	return s.page.URL()
}

func (s *playwrightSession) Title() (string, error) {
	return s.page.Title()
}

func (s *playwrightSession) ExecuteScript(source string, args ...any) (any, error) {
	// An Element argument pins evaluation to that handle so scripts
	// like "el => el.click()" receive the live node.
	if len(args) > 0 {
		if el, ok := args[0].(*playwrightElement); ok {
			result, err := el.handle.Evaluate(source, args[1:]...)
			return result, classifyElementError(err)
		}
	}
	result, err := s.page.Evaluate(source, args...)
	return result, classifyElementError(err)
}

func (s *playwrightSession) SetDefaultTimeout(d time.Duration) {
	s.page.SetDefaultTimeout(float64(d.Milliseconds()))
}

func (s *playwrightSession) SetNavigationTimeout(d time.Duration) {
	s.page.SetDefaultNavigationTimeout(float64(d.Milliseconds()))
}

func (s *playwrightSession) SetViewport(width, height int) error {
	return s.page.SetViewportSize(width, height)
}

func (s *playwrightSession) Close() error {
	// Continue cleanup past individual failures so the browser
	// process is always released.
	return errors.Join(
		s.page.Close(),
		s.context.Close(),
		s.browser.Close(),
	)
}

func (e *playwrightElement) Displayed() (bool, error) {
	visible, err := e.handle.IsVisible()
	return visible, classifyElementError(err)
}

func (e *playwrightElement) Enabled() (bool, error) {
	enabled, err := e.handle.IsEnabled()
	return enabled, classifyElementError(err)
}

func (e *playwrightElement) Selected() (bool, error) {
	checked, err := e.handle.IsChecked()
	return checked, classifyElementError(err)
}

func (e *playwrightElement) Text() (string, error) {
	text, err := e.handle.InnerText()
	return text, classifyElementError(err)
}

func (e *playwrightElement) Attribute(name string) (string, bool, error) {
	// getAttribute distinguishes an absent attribute (null) from an
	// empty one, which the handle-level getter does not.
	result, err := e.handle.Evaluate("(el, name) => el.getAttribute(name)", name)
	if err != nil {
		return "", false, classifyElementError(err)
	}
	if result == nil {
		return "", false, nil
	}
	value, _ := result.(string)
	return value, true, nil
}

func (e *playwrightElement) BoundingBox() (Rect, error) {
	box, err := e.handle.BoundingBox()
	if err != nil {
		return Rect{}, classifyElementError(err)
	}
	if box == nil {
		return Rect{}, nil
	}
	return Rect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}, nil
}

const coversOwnCenterScript = `el => {
	const r = el.getBoundingClientRect();
	if (r.width <= 0 || r.height <= 0) return false;
	const top = document.elementFromPoint(r.x + r.width / 2, r.y + r.height / 2);
	return top === el || el.contains(top);
}`

func (e *playwrightElement) CoversOwnCenter() (bool, error) {
	result, err := e.handle.Evaluate(coversOwnCenterScript)
	if err != nil {
		return false, classifyElementError(err)
	}
	covered, _ := result.(bool)
	return covered, nil
}

func (e *playwrightElement) Click() error {
	return classifyElementError(e.handle.Click())
}

func (e *playwrightElement) Fill(value string) error {
	return classifyElementError(e.handle.Fill(value))
}

func (e *playwrightElement) Clear() error {
	return classifyElementError(e.handle.Fill(""))
}

func (e *playwrightElement) Type(text string) error {
	return classifyElementError(e.handle.Type(text))
}

func (e *playwrightElement) Press(key string) error {
	return classifyElementError(e.handle.Press(key))
}

func (e *playwrightElement) Hover() error {
	return classifyElementError(e.handle.Hover())
}

func (e *playwrightElement) ScrollIntoView() error {
	return classifyElementError(e.handle.ScrollIntoViewIfNeeded())
}

func (e *playwrightElement) SelectByText(text string) error {
	_, err := e.handle.SelectOption(playwright.SelectOptionValues{
		Labels: &[]string{text},
	})
	return classifyElementError(err)
}

func (e *playwrightElement) SelectByValue(value string) error {
	_, err := e.handle.SelectOption(playwright.SelectOptionValues{
		Values: &[]string{value},
	})
	return classifyElementError(err)
}
