// Package config resolves per-environment settings for a test run:
// base URL, credentials, timeout budgets, and navigation allow-lists.
// An environment is resolved once and shared read-only across every
// test in the run.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// Global defaults shared by all environments unless a value is set in
// the environments file.
const (
	// DefaultImplicitWait is the session-level budget for element
	// operations.
	DefaultImplicitWait = 10 * time.Second

	// DefaultPageLoadTimeout is the budget for a page to finish
	// loading.
	DefaultPageLoadTimeout = 30 * time.Second

	// DefaultExplicitWait is the budget applied to readiness waits
	// when a caller does not override it.
	DefaultExplicitWait = 15 * time.Second

	// DefaultPollInterval is the pause between readiness checks.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultEnvironment is used when no environment is named on the
	// command line or in WAYPOINT_ENV.
	DefaultEnvironment = "dev"
)

// Credentials is the test account for an environment.
type Credentials struct {
	Email    string
	Password string
}

// Environment is the immutable configuration resolved for one named
// environment. It is read-only after construction and safely shared by
// reference across all tests in a run.
type Environment struct {
	Name            string
	BaseURL         string
	Credentials     Credentials
	ImplicitWait    time.Duration
	PageLoadTimeout time.Duration
	ExplicitWait    time.Duration
	PollInterval    time.Duration

	// AllowedHosts are glob patterns for hosts the driver may
	// navigate to. Empty means any host.
	AllowedHosts []string

	allowed []glob.Glob
}

// AllowsHost reports whether navigation to the given host is permitted
// by the environment's allow-list.
func (e *Environment) AllowsHost(host string) bool {
	if len(e.allowed) == 0 {
		return true
	}
	for _, pattern := range e.allowed {
		if pattern.Match(host) {
			return true
		}
	}
	return false
}

// envVar builds the override variable name for a field, e.g.
// WAYPOINT_STAGING_EMAIL.
func envVar(envName, field string) string {
	return fmt.Sprintf("WAYPOINT_%s_%s", strings.ToUpper(envName), field)
}

// overlay replaces value with the override variable when it is set.
func overlay(envName, field, value string) string {
	if v := os.Getenv(envVar(envName, field)); v != "" {
		return v
	}
	return value
}
