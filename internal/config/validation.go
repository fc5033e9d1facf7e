package config

import (
	"fmt"

	"github.com/law-makers/vision-researcher/internal/utils/headers"
)

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.CaptureTimeout <= 0 {
		return fmt.Errorf("capture timeout must be > 0")
	}
	if c.VisionTimeout <= 0 {
		return fmt.Errorf("vision timeout must be > 0")
	}
	if c.Backend != BackendScreenshotOne && c.Backend != BackendChrome {
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendScreenshotOne, BackendChrome)
	}
	if c.BandHeight <= 0 {
		return fmt.Errorf("band height must be > 0")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be > 0")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be between 1 and 100")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be > 0")
	}
	if _, err := headers.Parse(c.Headers); err != nil {
		return err
	}
	return nil
}
