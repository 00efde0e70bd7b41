package pages

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/waypoint/pkg/browser"
	"github.com/entrhq/waypoint/pkg/browser/browsertest"
	"github.com/entrhq/waypoint/pkg/page"
)

func newFixture(t *testing.T) (*browsertest.Session, *page.Page) {
	t.Helper()
	session := browsertest.NewSession()
	p := page.New(session,
		page.Timeout(300*time.Millisecond),
		page.Interval(20*time.Millisecond),
	)
	return session, p
}

func TestLoginPageOpen(t *testing.T) {
	session, p := newFixture(t)

	login := NewLoginPage(p)
	require.NoError(t, login.Open("https://dev.shop.test/"))
	assert.Equal(t, []string{"https://dev.shop.test/index.php?route=account/login"}, session.Navigations())
}

func TestLoginFillsFieldsAndSubmits(t *testing.T) {
	session, p := newFixture(t)
	email := session.Add(emailField)
	password := session.Add(passwordField)
	button := session.Add(loginButton)

	login := NewLoginPage(p)
	account, err := login.LogIn("jess@example.com", "hunter2!")
	require.NoError(t, err)
	require.NotNil(t, account)

	assert.Equal(t, []string{"jess@example.com"}, email.Typed())
	assert.Equal(t, []string{"hunter2!"}, password.Typed())
	assert.Equal(t, 1, email.Cleared())
	assert.Equal(t, 1, button.Clicks())
}

func TestLoginWaitsForDisabledButton(t *testing.T) {
	session, p := newFixture(t)
	session.Add(emailField)
	session.Add(passwordField)
	button := session.Add(loginButton)
	button.SetEnabled(false)

	timer := time.AfterFunc(80*time.Millisecond, func() { button.SetEnabled(true) })
	defer timer.Stop()

	login := NewLoginPage(p)
	_, err := login.LogIn("jess@example.com", "hunter2!")
	require.NoError(t, err)
	assert.Equal(t, 1, button.Clicks())
}

func TestLoginWarning(t *testing.T) {
	session, p := newFixture(t)
	session.Add(emailField)
	session.Add(passwordField)
	session.Add(loginButton)

	login := NewLoginPage(p)
	_, err := login.LogIn("wrong@example.com", "bad")
	require.NoError(t, err)

	// Warning banner renders shortly after the rejected submission.
	timer := time.AfterFunc(60*time.Millisecond, func() {
		session.Add(warningAlert).SetText(" Warning: No match for E-Mail Address and/or Password. ")
	})
	defer timer.Stop()

	assert.True(t, login.WarningDisplayed(page.Timeout(500*time.Millisecond)))
	msg, err := login.WarningMessage()
	require.NoError(t, err)
	assert.Contains(t, msg, "Warning")
	assert.Equal(t, "Warning: No match for E-Mail Address and/or Password.", msg)
}

func TestLoginWarningAbsent(t *testing.T) {
	session, p := newFixture(t)
	session.Add(emailField)
	session.Add(passwordField)
	session.Add(loginButton)

	login := NewLoginPage(p)
	assert.False(t, login.WarningDisplayed(page.Timeout(100*time.Millisecond)))
}

func TestAccountWaitLoaded(t *testing.T) {
	session, p := newFixture(t)
	session.SetURL("https://dev.shop.test/index.php?route=account/login")

	timer := time.AfterFunc(60*time.Millisecond, func() {
		session.SetURL("https://dev.shop.test/index.php?route=account/account")
	})
	defer timer.Stop()

	account := NewAccountPage(p)
	require.NoError(t, account.WaitLoaded())
	assert.Contains(t, account.URL(), AccountURLFragment)
}

func TestRightMenuNavigation(t *testing.T) {
	session, p := newFixture(t)

	account := NewAccountPage(p)
	item := session.Add(account.RightMenu.itemLocator("Password"))
	item.SetText(" Password ")

	assert.True(t, account.RightMenu.ItemDisplayed("Password"))
	text, err := account.RightMenu.ItemText("Password")
	require.NoError(t, err)
	assert.Equal(t, "Password", text)

	passwordPage, err := account.OpenPasswordPage()
	require.NoError(t, err)
	require.NotNil(t, passwordPage)
	assert.Equal(t, 1, item.Clicks())
}

func TestChangePasswordMismatch(t *testing.T) {
	session, p := newFixture(t)
	newField := session.Add(newPasswordField)
	confirm := session.Add(confirmField)
	cont := session.Add(continueButton)

	passwordPage := NewPasswordPage(p)
	_, err := passwordPage.ChangePassword("NewPassword123!", "DifferentPassword456!")
	require.NoError(t, err)

	assert.Equal(t, []string{"NewPassword123!"}, newField.Typed())
	assert.Equal(t, []string{"DifferentPassword456!"}, confirm.Typed())
	assert.Equal(t, 1, cont.Clicks())

	session.Add(confirmationError).SetText("Password confirmation does not match password!")

	assert.True(t, passwordPage.ConfirmationErrorDisplayed())
	msg, err := passwordPage.ConfirmationError()
	require.NoError(t, err)
	assert.Equal(t, "Password confirmation does not match password!", msg)
}

func TestPasswordWaitLoaded(t *testing.T) {
	session, p := newFixture(t)
	session.SetURL("https://dev.shop.test/index.php?route=account/password")

	passwordPage := NewPasswordPage(p)
	require.NoError(t, passwordPage.WaitLoaded())
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "https://a.test/x", joinPath("https://a.test", "x"))
	assert.Equal(t, "https://a.test/x", joinPath("https://a.test/", "x"))
}

func TestRightMenuLocatorKeepsLeadingSpace(t *testing.T) {
	m := RightMenu{}
	loc := m.itemLocator("Address Book")
	assert.Equal(t, browser.ByXPath, loc.Strategy)
	assert.Equal(t, "//aside[@id='column-right']//a[text()=' Address Book']", loc.Value)
}
