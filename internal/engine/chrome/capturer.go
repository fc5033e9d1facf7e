// Package chrome captures pages with a local headless Chrome through chromedp.
package chrome

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/vision-researcher/internal/engine"
	"github.com/law-makers/vision-researcher/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultQuality is the JPEG quality of full-page screenshots
const DefaultQuality = 90

// Options configures a Capturer
type Options struct {
	ExecPath  string
	UserAgent string
	Proxy     string
	Quality   int
	Timeout   time.Duration
	Headers   map[string]string
	Logger    *zerolog.Logger
}

// Capturer implements engine.Capturer with one browser shared across pages
type Capturer struct {
	opts   Options
	logger zerolog.Logger

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// New creates a Capturer. The browser starts on the first capture.
func New(opts Options) *Capturer {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	if opts.ExecPath == "" {
		opts.ExecPath = FindChrome()
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Capturer{opts: opts, logger: logger}
}

// Name returns the name of this capture backend
func (c *Capturer) Name() string {
	return "chrome"
}

func (c *Capturer) allocatorOptions() []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("force-color-profile", "srgb"),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("window-size", "1920,1080"),
	}
	if c.opts.ExecPath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(c.opts.ExecPath)}, allocOpts...)
	}
	if c.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(c.opts.UserAgent))
	}
	if c.opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(c.opts.Proxy))
	}
	return allocOpts
}

// browser returns the shared browser context, starting Chrome if needed
func (c *Capturer) browser() (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browserCtx != nil {
		return c.browserCtx, nil
	}

	start := time.Now()
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), c.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	c.allocCancel = allocCancel
	c.browserCtx = browserCtx
	c.browserCancel = browserCancel

	c.logger.Debug().
		Str("exec", c.opts.ExecPath).
		Dur("duration", time.Since(start)).
		Msg("Browser started")

	return browserCtx, nil
}

// Capture navigates to pageURL in a fresh tab and returns a full-page JPEG
// screenshot together with the document's outer HTML
func (c *Capturer) Capture(ctx context.Context, pageURL string) (*models.PageContent, error) {
	start := time.Now()

	browserCtx, err := c.browser()
	if err != nil {
		return nil, engine.NewError(engine.ErrCodeFetchFailed, "browser unavailable", err).
			WithDetail("url", pageURL)
	}

	tabCtx, cancel := chromedp.NewContext(browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if c.opts.Timeout > 0 {
		var timeoutCancel context.CancelFunc
		tabCtx, timeoutCancel = context.WithTimeout(tabCtx, c.opts.Timeout)
		defer timeoutCancel()
	}

	var status atomic.Int64
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok && resp.Type == network.ResourceTypeDocument {
			status.CompareAndSwap(0, resp.Response.Status)
		}
	})

	c.logger.Info().Str("url", pageURL).Msg("Taking screenshot")

	var shot []byte
	var html string
	tasks := chromedp.Tasks{network.Enable()}
	if len(c.opts.Headers) > 0 {
		headers := network.Headers{}
		for k, v := range c.opts.Headers {
			headers[k] = v
		}
		tasks = append(tasks, network.SetExtraHTTPHeaders(headers))
	}
	tasks = append(tasks,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.FullScreenshot(&shot, c.opts.Quality),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	if err := chromedp.Run(tabCtx, tasks); err != nil {
		return nil, engine.NewError(engine.ErrCodeFetchFailed, "page render failed", err).
			WithDetail("url", pageURL)
	}

	// Error pages are rendered and analyzed like any other page
	code := int(status.Load())
	if code >= 400 {
		c.logger.Warn().Str("url", pageURL).Int("status", code).Msg("Page returned an error status")
	}
	if len(shot) == 0 || html == "" {
		return nil, engine.NewError(engine.ErrCodeIncompletePage, "empty screenshot or HTML", nil).
			WithDetail("url", pageURL)
	}

	content := &models.PageContent{
		URL:        pageURL,
		Screenshot: &models.Screenshot{Data: shot, ContentType: "image/jpeg"},
		HTML:       html,
		StatusCode: code,
		CapturedAt: time.Now(),
		Duration:   time.Since(start),
	}

	c.logger.Info().
		Str("url", pageURL).
		Int("screenshot_bytes", len(shot)).
		Int("html_bytes", len(html)).
		Dur("duration", content.Duration).
		Msg("Screenshot taken")

	return content, nil
}

// Close shuts the browser down. It is safe to call when it never started.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browserCancel != nil {
		c.browserCancel()
		c.allocCancel()
		c.browserCtx = nil
		c.browserCancel = nil
		c.allocCancel = nil
	}
	return nil
}
