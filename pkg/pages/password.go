package pages

import (
	"github.com/entrhq/waypoint/pkg/browser"
	"github.com/entrhq/waypoint/pkg/page"
)

// PasswordURLFragment appears in the URL on the change-password page.
const PasswordURLFragment = "account/password"

var (
	newPasswordField  = browser.ID("input-password")
	confirmField      = browser.ID("input-confirm")
	continueButton    = browser.CSS("input[value='Continue']")
	confirmationError = browser.CSS(".text-danger")
)

// PasswordPage drives the change-password form.
type PasswordPage struct {
	p *page.Page
}

// NewPasswordPage wraps the action layer for the change-password form.
func NewPasswordPage(p *page.Page) *PasswordPage {
	return &PasswordPage{p: p}
}

// WaitLoaded blocks until the URL shows the change-password route.
func (c *PasswordPage) WaitLoaded(opts ...page.Option) error {
	return c.p.WaitForURLContains(PasswordURLFragment, opts...)
}

// ChangePassword fills both password fields and submits. On success
// the application returns to the account dashboard.
func (c *PasswordPage) ChangePassword(password, confirm string) (*AccountPage, error) {
	if err := c.p.ClearAndType(newPasswordField, password); err != nil {
		return nil, err
	}
	if err := c.p.ClearAndType(confirmField, confirm); err != nil {
		return nil, err
	}
	if err := c.p.Click(continueButton); err != nil {
		return nil, err
	}
	return NewAccountPage(c.p), nil
}

// ConfirmationErrorDisplayed reports whether the mismatch error
// becomes visible within the probe budget.
func (c *PasswordPage) ConfirmationErrorDisplayed(opts ...page.Option) bool {
	return c.p.IsDisplayed(confirmationError, opts...)
}

// ConfirmationError waits for the mismatch error and returns its text.
func (c *PasswordPage) ConfirmationError() (string, error) {
	return c.p.Text(confirmationError)
}

// URL returns the current page URL.
func (c *PasswordPage) URL() string {
	return c.p.URL()
}
