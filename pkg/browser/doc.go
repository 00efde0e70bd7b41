// Package browser defines the opaque browser-session capability the
// harness is built on, together with its Playwright-backed
// implementation.
//
// The package is built around three core concepts:
//
//  1. Locator: an immutable strategy+value pair identifying where to
//     search for an element
//  2. Session: one live browser session exposing locate, navigate,
//     script execution, and timeout configuration
//  3. Element: an ephemeral reference to a located element with
//     primitive state queries and interactions
//
// Sessions are created through a Factory. The live factory launches
// browsers through Playwright; tests substitute the scripted fake in
// the browsertest subpackage.
//
// # Ownership
//
// A Session is owned by exactly one test execution, created at test
// start and destroyed at test end. Sessions are never shared between
// concurrently running tests; parallelism happens at the process or
// worker level, each worker owning its own session.
//
// # Staleness
//
// An Element becomes stale once the underlying page mutates. The
// harness does not track staleness across calls: state queries on a
// stale handle return ErrStale, which the wait engine treats as a
// retry signal, and every higher-level action re-locates fresh.
package browser
