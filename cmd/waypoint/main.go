// Package main provides the waypoint acceptance runner. It resolves an
// environment, starts one browser session per scenario, and reports a
// styled pass/fail summary.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/waypoint/pkg/browser"
	"github.com/entrhq/waypoint/pkg/config"
	"github.com/entrhq/waypoint/pkg/driver"
	"github.com/entrhq/waypoint/pkg/logging"
	"github.com/entrhq/waypoint/pkg/page"
	"github.com/entrhq/waypoint/pkg/pages"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	Browser     string
	Environment string
	ConfigFile  string
	Headed      bool
	Timeout     time.Duration
	Filter      string
	ShowVersion bool
}

func parseFlags() CLIConfig {
	var cfg CLIConfig

	flag.StringVar(&cfg.Browser, "browser", "chromium", "Browser engine: chromium, firefox, or webkit")
	flag.StringVar(&cfg.Environment, "env", "", "Environment name (default: WAYPOINT_ENV, then dev)")
	flag.StringVar(&cfg.ConfigFile, "config", "environments.yaml", "Path to the environments file")
	flag.BoolVar(&cfg.Headed, "headed", false, "Run with a visible browser window")
	flag.DurationVar(&cfg.Timeout, "timeout", 0, "Override the explicit wait budget (0 uses the environment's value)")
	flag.StringVar(&cfg.Filter, "run", "", "Only run scenarios whose name contains this substring")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Waypoint v%s - browser acceptance runner\n\n", version)
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()
	return cfg
}

// scenario is one end-to-end flow executed in its own browser session.
type scenario struct {
	name string
	run  func(p *page.Page, env *config.Environment) error
}

var scenarios = []scenario{
	{name: "login with valid credentials", run: validLogin},
	{name: "login with invalid credentials shows warning", run: invalidLogin},
	{name: "password confirmation mismatch shows error", run: passwordMismatch},
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("Waypoint v%s\n", version)
		return
	}

	if err := run(cfg); err != nil {
		if !errors.Is(err, errScenariosFailed) {
			fmt.Fprintf(os.Stderr, "%s %v\n", failBadge.Render("ERROR"), err)
		}
		os.Exit(1)
	}
}

// errScenariosFailed signals a clean run with failing scenarios; the
// summary already reported the details.
var errScenariosFailed = errors.New("scenarios failed")

var (
	passBadge    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failBadge    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

type result struct {
	scenario scenario
	err      error
	elapsed  time.Duration
}

func run(cfg CLIConfig) error {
	kind, err := browser.ParseKind(cfg.Browser)
	if err != nil {
		return err
	}

	env, err := config.NewResolver(cfg.ConfigFile).Resolve(cfg.Environment)
	if err != nil {
		return err
	}
	explicitWait := env.ExplicitWait
	if cfg.Timeout > 0 {
		explicitWait = cfg.Timeout
	}

	log, err := logging.NewLogger("runner")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging unavailable: %v\n", err)
	}
	defer log.Close()

	fmt.Println(headerStyle.Render(fmt.Sprintf("Waypoint v%s", version)))
	fmt.Println(subtleStyle.Render(fmt.Sprintf("env=%s browser=%s base=%s log=%s",
		env.Name, kind, env.BaseURL, log.LogPath())))
	fmt.Println()

	factory, err := browser.NewPlaywrightFactory()
	if err != nil {
		return fmt.Errorf("failed to initialize browser factory: %w", err)
	}
	defer factory.Close()

	var results []result
	for _, sc := range scenarios {
		if cfg.Filter != "" && !strings.Contains(sc.name, cfg.Filter) {
			continue
		}

		log.Infof("scenario start: %s", sc.name)
		start := time.Now()

		m := driver.NewManager(factory, env, kind, !cfg.Headed)
		err := m.Run(func(session browser.Session) error {
			p := page.New(session,
				page.Timeout(explicitWait),
				page.Interval(env.PollInterval),
			)
			return sc.run(p, env)
		})

		r := result{scenario: sc, err: err, elapsed: time.Since(start)}
		results = append(results, r)
		printResult(r)
		if err != nil {
			log.Errorf("scenario failed: %s: %v", sc.name, err)
		} else {
			log.Infof("scenario passed: %s (%v)", sc.name, r.elapsed.Round(time.Millisecond))
		}
	}

	if len(results) == 0 {
		return fmt.Errorf("no scenarios match -run %q", cfg.Filter)
	}

	if failed := printSummary(results); failed > 0 {
		return errScenariosFailed
	}
	return nil
}

func printResult(r result) {
	badge := passBadge.Render("PASS")
	if r.err != nil {
		badge = failBadge.Render("FAIL")
	}
	fmt.Printf("%s %s %s\n", badge, r.scenario.name,
		subtleStyle.Render(r.elapsed.Round(time.Millisecond).String()))
	if r.err != nil {
		fmt.Printf("     %v\n", r.err)
	}
}

func printSummary(results []result) int {
	passed, failed := 0, 0
	var total time.Duration
	for _, r := range results {
		total += r.elapsed
		if r.err != nil {
			failed++
		} else {
			passed++
		}
	}

	line := fmt.Sprintf("%d passed, %d failed in %v", passed, failed, total.Round(time.Millisecond))
	if failed > 0 {
		line = failBadge.Render(line)
	} else {
		line = passBadge.Render(line)
	}
	fmt.Println()
	fmt.Println(summaryStyle.Render(line))
	return failed
}

// validLogin signs in with the environment's credentials and verifies
// the account dashboard loads.
func validLogin(p *page.Page, env *config.Environment) error {
	login := pages.NewLoginPage(p)
	if err := login.Open(env.BaseURL); err != nil {
		return err
	}

	account, err := login.LogIn(env.Credentials.Email, env.Credentials.Password)
	if err != nil {
		return err
	}
	if err := account.WaitLoaded(); err != nil {
		return err
	}

	title, err := account.Title()
	if err != nil {
		return err
	}
	if title != "My Account" {
		return fmt.Errorf("expected title %q, got %q", "My Account", title)
	}
	return nil
}

// invalidLogin submits bogus credentials and verifies the warning
// banner appears while the user stays on the login page.
func invalidLogin(p *page.Page, env *config.Environment) error {
	login := pages.NewLoginPage(p)
	if err := login.Open(env.BaseURL); err != nil {
		return err
	}

	if _, err := login.LogIn("invalid_email@notexist.com", "WrongPassword123!"); err != nil {
		return err
	}

	msg, err := login.WarningMessage()
	if err != nil {
		return err
	}
	if !strings.Contains(msg, "Warning") {
		return fmt.Errorf("expected warning banner, got %q", msg)
	}
	if !strings.Contains(login.URL(), "account/login") {
		return fmt.Errorf("expected to remain on the login page, got %s", login.URL())
	}
	return nil
}

// passwordMismatch navigates to the change-password form through the
// sidebar and verifies the confirmation mismatch error.
func passwordMismatch(p *page.Page, env *config.Environment) error {
	login := pages.NewLoginPage(p)
	if err := login.Open(env.BaseURL); err != nil {
		return err
	}

	account, err := login.LogIn(env.Credentials.Email, env.Credentials.Password)
	if err != nil {
		return err
	}
	if err := account.WaitLoaded(); err != nil {
		return err
	}

	passwordPage, err := account.OpenPasswordPage()
	if err != nil {
		return err
	}
	if err := passwordPage.WaitLoaded(); err != nil {
		return err
	}

	if _, err := passwordPage.ChangePassword("NewPassword123!", "DifferentPassword456!"); err != nil {
		return err
	}

	const expected = "Password confirmation does not match password!"
	actual, err := passwordPage.ConfirmationError()
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("expected error %q, got %q", expected, actual)
	}
	if !strings.Contains(passwordPage.URL(), pages.PasswordURLFragment) {
		return fmt.Errorf("expected to remain on the password page, got %s", passwordPage.URL())
	}
	return nil
}
