package driver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/waypoint/pkg/browser"
	"github.com/entrhq/waypoint/pkg/browser/browsertest"
	"github.com/entrhq/waypoint/pkg/config"
)

// fakeFactory hands out a prepared fake session, or fails.
type fakeFactory struct {
	session  *browsertest.Session
	err      error
	created  int
	kind     browser.Kind
	headless bool
	opts     browser.Options
}

func (f *fakeFactory) Create(kind browser.Kind, headless bool, opts browser.Options) (browser.Session, error) {
	f.created++
	f.kind = kind
	f.headless = headless
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func testEnv() *config.Environment {
	return &config.Environment{
		Name:            "dev",
		BaseURL:         "https://dev.shop.test",
		Credentials:     config.Credentials{Email: "dev@shop.test", Password: "secret"},
		ImplicitWait:    10 * time.Second,
		PageLoadTimeout: 30 * time.Second,
		ExplicitWait:    15 * time.Second,
		PollInterval:    500 * time.Millisecond,
	}
}

// restrictedEnv resolves an environment whose allow-list only admits
// *.shop.test hosts.
func restrictedEnv(t *testing.T) *config.Environment {
	t.Helper()
	path := filepath.Join(t.TempDir(), "environments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environments:
  dev:
    base_url: https://dev.shop.test
    email: dev@shop.test
    password: secret
    allowed_hosts:
      - dev.shop.test
      - "*.shop.test"
`), 0o644))

	env, err := config.NewResolver(path).Resolve("dev")
	require.NoError(t, err)
	return env
}

func TestStartConfiguresSessionInOrder(t *testing.T) {
	session := browsertest.NewSession()
	factory := &fakeFactory{session: session}
	m := NewManager(factory, testEnv(), browser.KindChromium, true)

	assert.Equal(t, Uninitialized, m.State())

	got, err := m.Start()
	require.NoError(t, err)
	assert.Same(t, browser.Session(session), got)
	assert.Equal(t, Ready, m.State())

	assert.Equal(t, 1, factory.created)
	assert.Equal(t, browser.KindChromium, factory.kind)
	assert.True(t, factory.headless)

	assert.Equal(t, 10*time.Second, session.ImplicitWait())
	assert.Equal(t, 30*time.Second, session.PageLoadTimeout())
	assert.Equal(t, []string{"https://dev.shop.test"}, session.Navigations())

	w, h := session.Viewport()
	assert.Equal(t, browser.DefaultViewportWidth, w)
	assert.Equal(t, browser.DefaultViewportHeight, h)
}

func TestStartFailureIsFatal(t *testing.T) {
	boom := errors.New("no browser binary")
	m := NewManager(&fakeFactory{err: boom}, testEnv(), browser.KindFirefox, true)

	_, err := m.Start()

	var startErr *SessionStartError
	require.ErrorAs(t, err, &startErr)
	assert.Equal(t, browser.KindFirefox, startErr.Kind)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Closed, m.State())

	_, err = m.Session()
	require.Error(t, err)
}

func TestStartNavigationFailureLeavesSessionUsable(t *testing.T) {
	session := browsertest.NewSession()
	session.FailNavigation(errors.New("connection refused"))
	m := NewManager(&fakeFactory{session: session}, testEnv(), browser.KindChromium, true)

	got, err := m.Start()

	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, "https://dev.shop.test", navErr.URL)

	// The session handle is valid and the manager stays Ready.
	require.NotNil(t, got)
	assert.Equal(t, Ready, m.State())

	live, sessionErr := m.Session()
	require.NoError(t, sessionErr)
	assert.Same(t, browser.Session(session), live)

	m.Stop()
	assert.True(t, session.Closed())
	assert.Equal(t, Closed, m.State())
}

func TestStartTwiceFails(t *testing.T) {
	m := NewManager(&fakeFactory{session: browsertest.NewSession()}, testEnv(), browser.KindChromium, true)

	_, err := m.Start()
	require.NoError(t, err)

	_, err = m.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")
}

func TestNavigateBlocksDisallowedHosts(t *testing.T) {
	session := browsertest.NewSession()
	m := NewManager(&fakeFactory{session: session}, restrictedEnv(t), browser.KindChromium, true)

	_, err := m.Start()
	require.NoError(t, err)

	require.NoError(t, m.Navigate("https://admin.shop.test/login"))

	err = m.Navigate("https://tracker.ads.test/pixel")
	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Contains(t, err.Error(), "allowed_hosts")

	// The blocked URL never reached the browser.
	assert.Equal(t, []string{
		"https://dev.shop.test",
		"https://admin.shop.test/login",
	}, session.Navigations())
}

func TestNavigateRequiresLiveSession(t *testing.T) {
	m := NewManager(&fakeFactory{session: browsertest.NewSession()}, testEnv(), browser.KindChromium, true)

	err := m.Navigate("https://dev.shop.test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no live session")
}

func TestStopIsIdempotentAndSwallowsCloseErrors(t *testing.T) {
	session := browsertest.NewSession()
	session.FailClose(errors.New("context already gone"))
	m := NewManager(&fakeFactory{session: session}, testEnv(), browser.KindChromium, true)

	_, err := m.Start()
	require.NoError(t, err)

	m.Stop()
	assert.Equal(t, Closed, m.State())
	assert.True(t, session.Closed())

	// A second Stop is a no-op, not a double close.
	m.Stop()
	assert.Equal(t, Closed, m.State())
}

func TestStopBeforeStart(t *testing.T) {
	m := NewManager(&fakeFactory{session: browsertest.NewSession()}, testEnv(), browser.KindChromium, true)

	m.Stop()
	assert.Equal(t, Closed, m.State())
}

func TestRunTearsDownOnEveryPath(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		session := browsertest.NewSession()
		m := NewManager(&fakeFactory{session: session}, testEnv(), browser.KindChromium, true)

		err := m.Run(func(s browser.Session) error {
			assert.Same(t, browser.Session(session), s)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, session.Closed())
	})

	t.Run("test failure", func(t *testing.T) {
		session := browsertest.NewSession()
		m := NewManager(&fakeFactory{session: session}, testEnv(), browser.KindChromium, true)

		boom := errors.New("assertion failed")
		err := m.Run(func(browser.Session) error { return boom })
		require.ErrorIs(t, err, boom)
		assert.True(t, session.Closed())
	})

	t.Run("start failure", func(t *testing.T) {
		m := NewManager(&fakeFactory{err: errors.New("launch failed")}, testEnv(), browser.KindChromium, true)

		invoked := false
		err := m.Run(func(browser.Session) error {
			invoked = true
			return nil
		})

		var startErr *SessionStartError
		require.ErrorAs(t, err, &startErr)
		assert.False(t, invoked)
		assert.Equal(t, Closed, m.State())
	})

	t.Run("navigation failure skips the test body", func(t *testing.T) {
		session := browsertest.NewSession()
		session.FailNavigation(errors.New("dns failure"))
		m := NewManager(&fakeFactory{session: session}, testEnv(), browser.KindChromium, true)

		invoked := false
		err := m.Run(func(browser.Session) error {
			invoked = true
			return nil
		})

		var navErr *NavigationError
		require.ErrorAs(t, err, &navErr)
		assert.False(t, invoked)
		assert.True(t, session.Closed())
	})
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "starting", Starting.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "closing", Closing.String())
	assert.Equal(t, "closed", Closed.String())
}
