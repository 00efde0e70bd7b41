// Package driver owns the lifecycle of one browser session per test
// execution: creation through a factory, environment configuration,
// initial navigation, and guaranteed teardown.
package driver

import (
	"fmt"
	"net/url"

	"github.com/entrhq/waypoint/pkg/browser"
	"github.com/entrhq/waypoint/pkg/config"
	"github.com/entrhq/waypoint/pkg/logging"
)

// State tracks where a Manager is in its lifecycle. Transitions are
// strictly forward: Uninitialized → Starting → Ready → Closing →
// Closed.
type State int

const (
	Uninitialized State = iota
	Starting
	Ready
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Starting:
		return "starting"
	case Ready:
		return "ready"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Manager owns exactly one browser session. Managers are never shared
// between concurrently running tests; each test execution constructs
// its own.
type Manager struct {
	factory  browser.Factory
	env      *config.Environment
	kind     browser.Kind
	headless bool
	opts     browser.Options
	log      *logging.Logger

	session browser.Session
	state   State
}

// NewManager creates a manager for one test execution. The session is
// not created until Start.
func NewManager(factory browser.Factory, env *config.Environment, kind browser.Kind, headless bool) *Manager {
	log, _ := logging.NewLogger("driver")
	return &Manager{
		factory:  factory,
		env:      env,
		kind:     kind,
		headless: headless,
		log:      log,
	}
}

// SetOptions overrides the launch options used by Start. Must be
// called before Start.
func (m *Manager) SetOptions(opts browser.Options) {
	m.opts = opts
}

// State returns the manager's current lifecycle state.
func (m *Manager) State() State {
	return m.state
}

// Session returns the live session. It is an error to call before
// Start or after Stop.
func (m *Manager) Session() (browser.Session, error) {
	if m.state != Ready || m.session == nil {
		return nil, fmt.Errorf("driver: no live session (state %s)", m.state)
	}
	return m.session, nil
}

// Start creates and configures the session:
//
//  1. create the browser via the factory (failure is a fatal
//     *SessionStartError; the manager does not retry)
//  2. apply the environment's implicit-wait and page-load budgets
//  3. navigate to the environment's base URL
//  4. normalize the viewport
//
// A navigation failure is returned as *NavigationError together with
// the session itself: the session is valid and Ready, and Stop still
// tears it down. Start may be called once per manager.
func (m *Manager) Start() (browser.Session, error) {
	if m.state != Uninitialized {
		return nil, fmt.Errorf("driver: manager already started (state %s)", m.state)
	}

	m.state = Starting
	m.log.Infof("starting %s session (headless=%v, env=%s)", m.kind, m.headless, m.env.Name)

	session, err := m.factory.Create(m.kind, m.headless, m.opts)
	if err != nil {
		m.state = Closed
		m.log.Errorf("session start failed: %v", err)
		return nil, &SessionStartError{Kind: m.kind, Err: err}
	}

	m.session = session
	m.state = Ready

	session.SetDefaultTimeout(m.env.ImplicitWait)
	session.SetNavigationTimeout(m.env.PageLoadTimeout)

	if err := m.Navigate(m.env.BaseURL); err != nil {
		// The session handle is valid; the caller decides whether the
		// test can proceed. Teardown still happens through Stop.
		return session, err
	}

	if err := session.SetViewport(browser.DefaultViewportWidth, browser.DefaultViewportHeight); err != nil {
		m.log.Warnf("viewport normalization failed: %v", err)
	}

	m.log.Infof("session ready at %s", session.URL())
	return session, nil
}

// Navigate loads a URL in the managed session after checking it
// against the environment's host allow-list. Failures are reported as
// *NavigationError; the session remains usable.
func (m *Manager) Navigate(rawURL string) error {
	if m.state != Ready || m.session == nil {
		return fmt.Errorf("driver: no live session (state %s)", m.state)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return &NavigationError{URL: rawURL, Err: err}
	}
	if !m.env.AllowsHost(parsed.Hostname()) {
		return &NavigationError{
			URL: rawURL,
			Err: fmt.Errorf("host %q is not in the environment's allowed_hosts", parsed.Hostname()),
		}
	}

	if err := m.session.Navigate(rawURL); err != nil {
		m.log.Warnf("navigation to %s failed: %v", rawURL, err)
		return &NavigationError{URL: rawURL, Err: err}
	}
	return nil
}

// Stop closes the session. It runs on every exit path, is idempotent,
// and never fails: close errors are logged and swallowed so cleanup
// cannot mask the test outcome. The handle is cleared to prevent a
// double close.
func (m *Manager) Stop() {
	if m.session == nil {
		m.state = Closed
		return
	}

	m.state = Closing
	if err := m.session.Close(); err != nil {
		cleanup := &CleanupError{Err: err}
		m.log.Warnf("%v", cleanup)
	}
	m.session = nil
	m.state = Closed
	m.log.Infof("session closed")
}

// Run starts a session, invokes fn with it, and guarantees teardown on
// every exit path, including failures during startup. Start errors
// (fatal or navigation) are returned without invoking fn.
func (m *Manager) Run(fn func(browser.Session) error) error {
	session, err := m.Start()
	defer m.Stop()
	if err != nil {
		return err
	}
	return fn(session)
}
