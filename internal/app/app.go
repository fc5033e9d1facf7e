// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/law-makers/vision-researcher/internal/config"
	"github.com/law-makers/vision-researcher/internal/crawl"
	"github.com/law-makers/vision-researcher/internal/engine"
	"github.com/law-makers/vision-researcher/internal/engine/chrome"
	"github.com/law-makers/vision-researcher/internal/engine/links"
	"github.com/law-makers/vision-researcher/internal/engine/screenshotone"
	"github.com/law-makers/vision-researcher/internal/engine/vision"
	"github.com/law-makers/vision-researcher/internal/fetcher"
	"github.com/law-makers/vision-researcher/internal/proxy"
	"github.com/law-makers/vision-researcher/internal/ratelimit"
	"github.com/law-makers/vision-researcher/internal/utils/headers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	RateLimiter ratelimit.RateLimiter
	HTTPClient  *http.Client
	Fetcher     *fetcher.Fetcher
	Proxies     *proxy.Pool
	Screenshots *screenshotone.Client
	Chrome      *chrome.Capturer
	Capturer    engine.Capturer
	Vision      *vision.OpenAIClient
	Analyzer    *vision.Analyzer
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// Nothing here touches the network: the browser starts on first capture and
// the API clients connect on first request. Secrets are not checked here
// either; commands call Config.RequireSecrets for what they need.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := newLogger(cfg, os.Stderr)
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Str("config_file", cfg.ConfigFile).
		Msg("Logger initialized")

	rateLimiter := ratelimit.NewHostLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	// Per-request deadlines come from contexts; the client timeout only
	// bounds the slowest of them.
	httpClient := &http.Client{
		Timeout: maxDuration(cfg.HTTPTimeout, cfg.CaptureTimeout, cfg.VisionTimeout),
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	f := fetcher.New(httpClient, fetcher.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
		Limiter:   rateLimiter,
	})

	proxies := proxy.NewPool(cfg.Proxies)

	screenshots := screenshotone.New(httpClient, f, screenshotone.Options{
		APIURL:    cfg.ScreenshotAPIURL,
		AccessKey: cfg.ScreenshotOneKey,
		Timeout:   cfg.CaptureTimeout,
		Limiter:   rateLimiter,
		Proxies:   proxies,
		Logger:    &logger,
	})

	a := &Application{
		Config:      cfg,
		Logger:      &logger,
		RateLimiter: rateLimiter,
		HTTPClient:  httpClient,
		Fetcher:     f,
		Proxies:     proxies,
		Screenshots: screenshots,
		Capturer:    screenshots,
		startTime:   time.Now(),
	}

	if cfg.Backend == config.BackendChrome {
		var firstProxy string
		if len(cfg.Proxies) > 0 {
			firstProxy = cfg.Proxies[0]
		}
		// validated during config load
		extra, _ := headers.Parse(cfg.Headers)
		a.Chrome = chrome.New(chrome.Options{
			Headers:   extra,
			ExecPath:  cfg.ChromePath,
			UserAgent: cfg.UserAgent,
			Proxy:     firstProxy,
			Quality:   cfg.JPEGQuality,
			Timeout:   cfg.CaptureTimeout,
			Logger:    &logger,
		})
		a.Capturer = a.Chrome
	}

	a.Vision = vision.NewOpenAIClient(httpClient, rateLimiter, vision.OpenAIConfig{
		APIURL:    cfg.VisionAPIURL,
		APIKey:    cfg.OpenAIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.VisionTimeout,
	})
	a.Analyzer = vision.New(f, a.Vision, vision.Options{
		BandHeight:  cfg.BandHeight,
		JPEGQuality: cfg.JPEGQuality,
		Logger:      &logger,
	})

	logger.Debug().
		Str("backend", a.Capturer.Name()).
		Str("model", a.Vision.Model()).
		Int("proxies", proxies.Len()).
		Msg("Application initialized")

	return a, nil
}

// NewController wires a crawl controller to the configured backends
func (a *Application) NewController(onPage crawl.PageHook) *crawl.Controller {
	return crawl.New(a.Capturer, a.Analyzer, links.Extractor, crawl.Options{
		Logger: a.Logger,
		OnPage: onPage,
	})
}

// Close gracefully shuts down the application and all its resources.
// Errors are logged and do not stop the remaining steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	if a.Chrome != nil {
		if err := a.Chrome.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing browser")
		}
	}

	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	case "trace":
		level = zerolog.TraceLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.JSONLog {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func maxDuration(ds ...time.Duration) time.Duration {
	var m time.Duration
	for _, d := range ds {
		if d > m {
			m = d
		}
	}
	return m
}
