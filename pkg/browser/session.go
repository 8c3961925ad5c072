// Package browser owns the single live page session the feed loop drives.
//
// The session is launched with a persistent profile directory so a manual
// login survives restarts, and with automation hardening so the page behaves
// like a regular browser. Everything above this package treats the session as
// an opaque capability set: navigate, scroll, click, read.
package browser

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/feedwise/feedwise/pkg/logging"
)

// Options configures the browser session.
type Options struct {
	// ProfileDir is the persistent user-data directory. Created if missing.
	ProfileDir string

	// Headless controls whether the browser runs without a visible window.
	// Manual login requires a visible window.
	Headless bool

	// Timeout is the default timeout for page operations in milliseconds.
	Timeout float64
}

// DefaultTimeout is the default page-operation timeout in milliseconds.
const DefaultTimeout = 30000.0

// launchArgs keeps the browser from advertising itself as automated.
var launchArgs = []string{
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
	"--disable-blink-features=AutomationControlled",
}

// hideWebdriverScript masks the webdriver flag before any page script runs.
const hideWebdriverScript = "Object.defineProperty(navigator, 'webdriver', {get: () => undefined})"

// Session is an active browser session with its associated resources.
type Session struct {
	pw      *playwright.Playwright
	context playwright.BrowserContext
	page    playwright.Page
	logger  *logging.Logger
}

// NewSession installs the playwright driver if needed and launches a
// persistent-profile Chromium session.
func NewSession(opts Options, logger *logging.Logger) (*Session, error) {
	if opts.ProfileDir == "" {
		return nil, fmt.Errorf("profile directory is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	if err := os.MkdirAll(opts.ProfileDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}

	// Discard driver output so it does not interleave with our own.
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browserCtx, err := pw.Chromium.LaunchPersistentContext(opts.ProfileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     launchArgs,
		Viewport: &playwright.Size{Width: 1280, Height: 720},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	if err := browserCtx.AddInitScript(playwright.Script{
		Content: playwright.String(hideWebdriverScript),
	}); err != nil {
		browserCtx.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to add init script: %w", err)
	}

	var page playwright.Page
	if pages := browserCtx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = browserCtx.NewPage()
		if err != nil {
			browserCtx.Close()
			pw.Stop()
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
	}
	page.SetDefaultTimeout(opts.Timeout)

	logger.Infof("browser session started (profile=%s headless=%v)", opts.ProfileDir, opts.Headless)

	return &Session{
		pw:      pw,
		context: browserCtx,
		page:    page,
		logger:  logger,
	}, nil
}

// Page returns the live page handle.
func (s *Session) Page() playwright.Page {
	return s.page
}

// Navigate navigates the page to the specified URL and waits for the DOM to
// be ready.
func (s *Session) Navigate(url string) error {
	waitUntil := playwright.WaitUntilState("domcontentloaded")
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: &waitUntil,
	})
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// ScrollToBottom scrolls the page to the bottom of the currently loaded
// content, triggering the feed to load more items.
func (s *Session) ScrollToBottom() error {
	_, err := s.page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
	if err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

// GoBack navigates back in page history.
func (s *Session) GoBack() error {
	_, err := s.page.GoBack()
	if err != nil {
		return fmt.Errorf("history back failed: %w", err)
	}
	return nil
}

// loginIndicators are elements only present for a signed-in account.
var loginIndicators = []string{
	"button[aria-label*='Account menu']",
	"#avatar-btn",
	"ytd-topbar-menu-button-renderer",
}

// IsLoggedIn reports whether the page shows a signed-in account.
func (s *Session) IsLoggedIn() bool {
	state := playwright.WaitForSelectorState("attached")
	for _, selector := range loginIndicators {
		element, err := s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
			State:   &state,
			Timeout: playwright.Float(3000),
		})
		if err == nil && element != nil {
			return true
		}
	}
	return false
}

// WaitForReady blocks until the session is usable for feed processing.
//
// If the profile already carries a valid login, it returns immediately.
// Otherwise it waits for the external confirmation signal (a human completing
// the manual login flow) or context cancellation. This is the single
// suspension point of the INIT state.
func (s *Session) WaitForReady(ctx context.Context, confirm <-chan struct{}) error {
	if s.IsLoggedIn() {
		s.logger.Infof("already logged in")
		return nil
	}

	if confirm == nil {
		return fmt.Errorf("not logged in and no confirmation signal provided")
	}

	s.logger.Infof("waiting for manual login confirmation")
	select {
	case <-confirm:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Settle sleeps for d or until ctx is cancelled, giving the page time to
// render after a mutation.
func (s *Session) Settle(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the browser context and stops the driver.
func (s *Session) Close() error {
	s.logger.Infof("closing browser session")

	var errs []error
	if err := s.context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing session: %v", errs)
	}
	return nil
}
