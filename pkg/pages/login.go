// Package pages contains the page objects for the storefront under
// test. Each page composes the action layer rather than inheriting
// from it, and successful submissions return the page the application
// navigates to.
package pages

import (
	"strings"

	"github.com/entrhq/waypoint/pkg/browser"
	"github.com/entrhq/waypoint/pkg/page"
)

// LoginPath is the route of the account login page, relative to the
// environment base URL.
const LoginPath = "index.php?route=account/login"

var (
	emailField    = browser.ID("input-email")
	passwordField = browser.ID("input-password")
	loginButton   = browser.CSS("input[value='Login']")
	warningAlert  = browser.CSS(".alert.alert-danger")
)

// LoginPage drives the account login form.
type LoginPage struct {
	p *page.Page
}

// NewLoginPage wraps the action layer for the login form.
func NewLoginPage(p *page.Page) *LoginPage {
	return &LoginPage{p: p}
}

// Open navigates to the login route under the given base URL.
func (l *LoginPage) Open(baseURL string) error {
	return l.p.Navigate(joinPath(baseURL, LoginPath))
}

// SetEmail fills the email field, replacing any existing value.
func (l *LoginPage) SetEmail(email string) error {
	return l.p.ClearAndType(emailField, email)
}

// SetPassword fills the password field, replacing any existing value.
func (l *LoginPage) SetPassword(password string) error {
	return l.p.ClearAndType(passwordField, password)
}

// Submit clicks the login button and returns the account page the
// application lands on. Callers asserting a failed login should use
// WarningMessage instead of the returned page.
func (l *LoginPage) Submit() (*AccountPage, error) {
	if err := l.p.Click(loginButton); err != nil {
		return nil, err
	}
	return NewAccountPage(l.p), nil
}

// LogIn fills both credential fields and submits.
func (l *LoginPage) LogIn(email, password string) (*AccountPage, error) {
	if err := l.SetEmail(email); err != nil {
		return nil, err
	}
	if err := l.SetPassword(password); err != nil {
		return nil, err
	}
	return l.Submit()
}

// WarningDisplayed reports whether the credentials warning banner
// becomes visible within the probe budget.
func (l *LoginPage) WarningDisplayed(opts ...page.Option) bool {
	return l.p.IsDisplayed(warningAlert, opts...)
}

// WarningMessage waits for the warning banner and returns its text.
func (l *LoginPage) WarningMessage() (string, error) {
	return l.p.Text(warningAlert)
}

// URL returns the current page URL.
func (l *LoginPage) URL() string {
	return l.p.URL()
}

func joinPath(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + path
}
