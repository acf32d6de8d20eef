package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"price-hunter/internal/types"
)

// hideWebdriver runs before any page script so the session does not announce automation
const hideWebdriver = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

const navigationPollInterval = 100 * time.Millisecond

// blockedResourceTypes are not needed to read product cards
var blockedResourceTypes = map[network.ResourceType]bool{
	network.ResourceTypeImage: true,
	network.ResourceTypeFont:  true,
	network.ResourceTypeMedia: true,
}

// SearchScript describes a human-like search on a store front:
// open LandingURL, type Query into InputSelector, press Enter, wait for the page
// to move off LandingURL and then for ResultsSelector.
type SearchScript struct {
	LandingURL      string
	InputSelector   string
	ResultsSelector string
	Query           string
}

// RenderedPage is the document captured after the search finished
type RenderedPage struct {
	URL          string
	Title        string
	HTML         string
	ResultsFound bool // false when ResultsSelector never appeared in time
}

// BrowserClient provides headless browser sessions
type BrowserClient struct {
	config *types.Config
	logger types.Logger
}

// NewBrowserClient creates a new browser client
func NewBrowserClient(config *types.Config, logger types.Logger) *BrowserClient {
	return &BrowserClient{
		config: config,
		logger: logger,
	}
}

// RunSearch performs script in a fresh, isolated browser and returns the rendered results page.
// The browser is torn down before RunSearch returns, whatever the outcome.
func (b *BrowserClient) RunSearch(ctx context.Context, script SearchScript) (*RenderedPage, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.Timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(b.logger.Debugf),
		chromedp.WithErrorf(b.logger.Debugf),
	)
	defer cancelBrowser()

	// The first Run starts the browser and binds it to browserCtx
	if err := chromedp.Run(browserCtx, b.prepareSession(browserCtx)...); err != nil {
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	b.logger.Debugf("Opening landing page %s", script.LandingURL)
	err := runStep(browserCtx, b.config.NavigationTimeout,
		chromedp.Navigate(script.LandingURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load landing page: %w", err)
	}

	if err := chromedp.Run(browserCtx, chromedp.Sleep(b.config.LandingPause)); err != nil {
		return nil, fmt.Errorf("session interrupted: %w", err)
	}

	b.logger.Debugf("Typing query %q", script.Query)
	err = runStep(browserCtx, b.config.SelectorTimeout,
		chromedp.WaitVisible(script.InputSelector, chromedp.ByQuery),
		chromedp.Click(script.InputSelector, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("search input %s not found: %w", script.InputSelector, err)
	}

	typingBudget := b.config.SelectorTimeout + time.Duration(len(script.Query))*b.config.TypingDelay
	err = runStep(browserCtx, typingBudget,
		typeLikeHuman(script.InputSelector, script.Query, b.config.TypingDelay),
		chromedp.SendKeys(script.InputSelector, kb.Enter, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to submit search: %w", err)
	}

	err = runStep(browserCtx, b.config.NavigationTimeout,
		waitForNavigation(script.LandingURL, navigationPollInterval),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("search results page did not load: %w", err)
	}

	rendered := &RenderedPage{ResultsFound: true}
	err = runStep(browserCtx, b.config.ResultsTimeout,
		chromedp.WaitVisible(script.ResultsSelector, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("session timed out: %w", ctx.Err())
		}
		// Not fatal: the page may still hold results under a different markup
		b.logger.Warnf("Timeout waiting for %s, extracting whatever rendered", script.ResultsSelector)
		rendered.ResultsFound = false
	}

	err = chromedp.Run(browserCtx,
		chromedp.Location(&rendered.URL),
		chromedp.Title(&rendered.Title),
		chromedp.OuterHTML("html", &rendered.HTML, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture results page: %w", err)
	}

	b.logger.Debugf("Captured %s (%d bytes)", rendered.URL, len(rendered.HTML))
	return rendered, nil
}

func (b *BrowserClient) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.config.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(b.config.UserAgent),
	)

	if b.config.ProxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(b.config.ProxyServer))
	}

	return opts
}

// prepareSession sets the browser identity and installs request interception when needed
func (b *BrowserClient) prepareSession(ctx context.Context) []chromedp.Action {
	actions := []chromedp.Action{
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": b.config.AcceptLanguage}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriver).Do(ctx)
			return err
		}),
	}

	withAuth := b.config.ProxyServer != "" && b.config.ProxyUsername != ""
	if !b.config.BlockAssets && !withAuth {
		return actions
	}

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *fetch.EventRequestPaused:
			go func() {
				execCtx := cdp.WithExecutor(ctx, chromedp.FromContext(ctx).Target)
				if b.config.BlockAssets && blockedResourceTypes[ev.ResourceType] {
					_ = fetch.FailRequest(ev.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx)
					return
				}
				_ = fetch.ContinueRequest(ev.RequestID).Do(execCtx)
			}()
		case *fetch.EventAuthRequired:
			go func() {
				execCtx := cdp.WithExecutor(ctx, chromedp.FromContext(ctx).Target)
				_ = fetch.ContinueWithAuth(ev.RequestID, &fetch.AuthChallengeResponse{
					Response: fetch.AuthChallengeResponseResponseProvideCredentials,
					Username: b.config.ProxyUsername,
					Password: b.config.ProxyPassword,
				}).Do(execCtx)
			}()
		}
	})

	return append(actions, fetch.Enable().WithHandleAuthRequests(withAuth))
}

// runStep runs actions with their own deadline; the browser outlives a step timeout
func runStep(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := chromedp.Run(stepCtx, actions...)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("step timed out after %v", timeout)
	}
	return err
}

// typeLikeHuman sends text one key at a time with delay between keys
func typeLikeHuman(selector, text string, delay time.Duration) chromedp.Tasks {
	var tasks chromedp.Tasks
	for _, r := range text {
		tasks = append(tasks, chromedp.SendKeys(selector, string(r), chromedp.ByQuery))
		if delay > 0 {
			tasks = append(tasks, chromedp.Sleep(delay))
		}
	}
	return tasks
}

// waitForNavigation blocks until the page URL differs from from.
// Location errors while the old document unloads are retried.
func waitForNavigation(from string, interval time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			var current string
			if err := chromedp.Location(&current).Do(ctx); err == nil && navigatedAway(from, current) {
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}
}

func navigatedAway(from, current string) bool {
	if current == "" || current == "about:blank" {
		return false
	}
	return strings.TrimSuffix(current, "/") != strings.TrimSuffix(from, "/")
}
