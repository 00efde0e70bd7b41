package browser

import (
	"fmt"
	"io"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightFactory creates live browser sessions through the
// Playwright driver. One factory serves a whole test run; each Create
// call launches an isolated browser process.
type PlaywrightFactory struct {
	pw *playwright.Playwright
}

// NewPlaywrightFactory installs browser binaries if needed and starts
// the Playwright driver. Driver output is discarded so it cannot
// interleave with test reporting.
func NewPlaywrightFactory() (*PlaywrightFactory, error) {
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	return &PlaywrightFactory{pw: pw}, nil
}

// Create launches a browser of the given kind and returns a session
// wrapping a fresh context and page.
func (f *PlaywrightFactory) Create(kind Kind, headless bool, opts Options) (Session, error) {
	var browserType playwright.BrowserType
	switch kind {
	case KindChromium:
		browserType = f.pw.Chromium
	case KindFirefox:
		browserType = f.pw.Firefox
	case KindWebKit:
		browserType = f.pw.WebKit
	default:
		return nil, fmt.Errorf("unsupported browser kind: %q", kind)
	}

	viewport := opts.Viewport
	if viewport == nil {
		viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}

	launched, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &headless,
		Args:     opts.Args,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", kind, err)
	}

	context, err := launched.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  viewport.Width,
			Height: viewport.Height,
		},
	})
	if err != nil {
		launched.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		launched.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &playwrightSession{
		browser: launched,
		context: context,
		page:    page,
	}, nil
}

// Close stops the Playwright driver. Sessions must be closed first.
func (f *PlaywrightFactory) Close() error {
	if err := f.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}
