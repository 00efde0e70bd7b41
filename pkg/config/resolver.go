package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// rawEnvironment is the YAML shape of one environment entry. Wait
// budgets are expressed in seconds (the poll interval in milliseconds)
// so the file stays readable.
type rawEnvironment struct {
	BaseURL            string   `yaml:"base_url"`
	Email              string   `yaml:"email"`
	Password           string   `yaml:"password"`
	ImplicitWaitSec    int      `yaml:"implicit_wait"`
	PageLoadTimeoutSec int      `yaml:"page_load_timeout"`
	ExplicitWaitSec    int      `yaml:"explicit_wait"`
	PollIntervalMs     int      `yaml:"poll_interval_ms"`
	AllowedHosts       []string `yaml:"allowed_hosts"`
}

// environmentsFile is the top-level YAML document: optional defaults
// merged under every named environment.
type environmentsFile struct {
	Defaults     rawEnvironment            `yaml:"defaults"`
	Environments map[string]rawEnvironment `yaml:"environments"`
}

// Resolver loads the environments file and resolves named
// environments. Resolution is memoized: the same name yields the same
// *Environment for the lifetime of the resolver, so config is shared
// by reference across tests.
type Resolver struct {
	path string

	mu    sync.Mutex
	file  *environmentsFile
	cache map[string]*Environment
}

// NewResolver creates a resolver for the given environments file. The
// file is read lazily on first resolve.
func NewResolver(path string) *Resolver {
	return &Resolver{
		path:  path,
		cache: make(map[string]*Environment),
	}
}

// Resolve returns the configuration for the named environment. An
// empty name falls back to WAYPOINT_ENV, then to "dev". Credentials
// and base URL may be overridden per environment through
// WAYPOINT_<ENV>_EMAIL, WAYPOINT_<ENV>_PASSWORD, and
// WAYPOINT_<ENV>_BASE_URL.
func (r *Resolver) Resolve(name string) (*Environment, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(os.Getenv("WAYPOINT_ENV")))
	}
	if name == "" {
		name = DefaultEnvironment
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if env, ok := r.cache[name]; ok {
		return env, nil
	}

	if err := r.load(); err != nil {
		return nil, err
	}

	raw, ok := r.file.Environments[name]
	if !ok {
		known := make([]string, 0, len(r.file.Environments))
		for k := range r.file.Environments {
			known = append(known, k)
		}
		return nil, fmt.Errorf("unknown environment %q (configured: %s)", name, strings.Join(known, ", "))
	}

	env, err := r.build(name, merge(r.file.Defaults, raw))
	if err != nil {
		return nil, err
	}

	r.cache[name] = env
	return env, nil
}

func (r *Resolver) load() error {
	if r.file != nil {
		return nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("failed to read environments file: %w", err)
	}

	var file environmentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse environments file %s: %w", r.path, err)
	}
	if len(file.Environments) == 0 {
		return fmt.Errorf("environments file %s defines no environments", r.path)
	}

	r.file = &file
	return nil
}

// merge overlays env-specific values on the file-level defaults.
func merge(defaults, env rawEnvironment) rawEnvironment {
	out := defaults
	if env.BaseURL != "" {
		out.BaseURL = env.BaseURL
	}
	if env.Email != "" {
		out.Email = env.Email
	}
	if env.Password != "" {
		out.Password = env.Password
	}
	if env.ImplicitWaitSec > 0 {
		out.ImplicitWaitSec = env.ImplicitWaitSec
	}
	if env.PageLoadTimeoutSec > 0 {
		out.PageLoadTimeoutSec = env.PageLoadTimeoutSec
	}
	if env.ExplicitWaitSec > 0 {
		out.ExplicitWaitSec = env.ExplicitWaitSec
	}
	if env.PollIntervalMs > 0 {
		out.PollIntervalMs = env.PollIntervalMs
	}
	if len(env.AllowedHosts) > 0 {
		out.AllowedHosts = env.AllowedHosts
	}
	return out
}

func (r *Resolver) build(name string, raw rawEnvironment) (*Environment, error) {
	baseURL := overlay(name, "BASE_URL", raw.BaseURL)
	email := overlay(name, "EMAIL", raw.Email)
	password := overlay(name, "PASSWORD", raw.Password)

	// Report every missing value at once, like a .env checker would.
	var missing []string
	if baseURL == "" {
		missing = append(missing, envVar(name, "BASE_URL"))
	}
	if email == "" {
		missing = append(missing, envVar(name, "EMAIL"))
	}
	if password == "" {
		missing = append(missing, envVar(name, "PASSWORD"))
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required settings for environment %q: %s (set them in %s or via environment variables)",
			name, strings.Join(missing, ", "), r.path)
	}

	env := &Environment{
		Name:            name,
		BaseURL:         baseURL,
		Credentials:     Credentials{Email: email, Password: password},
		ImplicitWait:    DefaultImplicitWait,
		PageLoadTimeout: DefaultPageLoadTimeout,
		ExplicitWait:    DefaultExplicitWait,
		PollInterval:    DefaultPollInterval,
		AllowedHosts:    raw.AllowedHosts,
	}
	if raw.ImplicitWaitSec > 0 {
		env.ImplicitWait = time.Duration(raw.ImplicitWaitSec) * time.Second
	}
	if raw.PageLoadTimeoutSec > 0 {
		env.PageLoadTimeout = time.Duration(raw.PageLoadTimeoutSec) * time.Second
	}
	if raw.ExplicitWaitSec > 0 {
		env.ExplicitWait = time.Duration(raw.ExplicitWaitSec) * time.Second
	}
	if raw.PollIntervalMs > 0 {
		env.PollInterval = time.Duration(raw.PollIntervalMs) * time.Millisecond
	}

	for _, pattern := range raw.AllowedHosts {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed_hosts pattern %q for environment %q: %w", pattern, name, err)
		}
		env.allowed = append(env.allowed, compiled)
	}

	return env, nil
}
