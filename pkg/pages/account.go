package pages

import (
	"fmt"

	"github.com/entrhq/waypoint/pkg/browser"
	"github.com/entrhq/waypoint/pkg/page"
)

// AccountURLFragment appears in the URL once the account dashboard has
// loaded.
const AccountURLFragment = "account/account"

// RightMenu drives the sidebar navigation that appears on every
// account page. The leading space in the link text is part of the
// actual markup.
type RightMenu struct {
	p *page.Page
}

func (m *RightMenu) itemLocator(name string) browser.Locator {
	return browser.XPath(fmt.Sprintf("//aside[@id='column-right']//a[text()=' %s']", name))
}

// ClickItem clicks the named sidebar entry.
func (m *RightMenu) ClickItem(name string) error {
	return m.p.Click(m.itemLocator(name))
}

// ItemDisplayed reports whether the named sidebar entry is visible.
func (m *RightMenu) ItemDisplayed(name string) bool {
	return m.p.IsDisplayed(m.itemLocator(name))
}

// ItemText returns the trimmed text of the named sidebar entry.
func (m *RightMenu) ItemText(name string) (string, error) {
	return m.p.Text(m.itemLocator(name))
}

// AccountPage is the dashboard shown after a successful login.
type AccountPage struct {
	p *page.Page

	// RightMenu navigates between account sections.
	RightMenu RightMenu
}

// NewAccountPage wraps the action layer for the account dashboard.
func NewAccountPage(p *page.Page) *AccountPage {
	return &AccountPage{p: p, RightMenu: RightMenu{p: p}}
}

// WaitLoaded blocks until the URL shows the account dashboard route.
func (a *AccountPage) WaitLoaded(opts ...page.Option) error {
	return a.p.WaitForURLContains(AccountURLFragment, opts...)
}

// OpenPasswordPage navigates to the change-password section through
// the sidebar.
func (a *AccountPage) OpenPasswordPage() (*PasswordPage, error) {
	if err := a.RightMenu.ClickItem("Password"); err != nil {
		return nil, err
	}
	return NewPasswordPage(a.p), nil
}

// Title returns the current page title.
func (a *AccountPage) Title() (string, error) {
	return a.p.Title()
}

// URL returns the current page URL.
func (a *AccountPage) URL() string {
	return a.p.URL()
}
