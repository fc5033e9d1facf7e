package config

import "time"

// Default constants for application configuration
const (
	AppName = "vision-researcher"

	DefaultLogLevel       = "info"
	DefaultJSONLog        = false
	DefaultUserAgent      = "VisionResearcher/1.0 (https://github.com/law-makers/vision-researcher)"
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultCaptureTimeout = 90 * time.Second
	DefaultVisionTimeout  = 60 * time.Second
	DefaultRateLimitRPS   = 2.0
	DefaultRateLimitBurst = 4
	DefaultBackend        = BackendScreenshotOne
	DefaultModel          = "gpt-4o-mini"
	DefaultMaxTokens      = 300
	DefaultBandHeight     = 1000
	DefaultJPEGQuality    = 90
	DefaultEnvFile        = ".env"
	DefaultScreenshotAPI  = "https://api.screenshotone.com"
	DefaultVisionAPI      = "https://api.openai.com/v1"
)

// Capture backends
const (
	BackendScreenshotOne = "screenshotone"
	BackendChrome        = "chrome"
)
