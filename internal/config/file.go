package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the configuration file does not exist
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file. Zero values leave the default alone.
type File struct {
	LogLevel       string        `yaml:"log_level"`
	JSONLog        bool          `yaml:"json_log"`
	Timeout        time.Duration `yaml:"timeout"`
	CaptureTimeout time.Duration `yaml:"capture_timeout"`
	VisionTimeout  time.Duration `yaml:"vision_timeout"`
	UserAgent      string        `yaml:"user_agent"`
	Proxies        []string      `yaml:"proxies"`
	Headers        []string      `yaml:"headers"`
	Backend        string        `yaml:"backend"`
	ChromePath     string        `yaml:"chrome_path"`
	Model          string        `yaml:"model"`
	MaxTokens      int           `yaml:"max_tokens"`
	BandHeight     int           `yaml:"band_height"`
	JPEGQuality    int           `yaml:"jpeg_quality"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
	ScreenshotAPI  string        `yaml:"screenshot_api_url"`
	VisionAPI      string        `yaml:"vision_api_url"`

	ScreenshotOneKey string `yaml:"screenshotone_api_key"`
	OpenAIKey        string `yaml:"openai_api_key"`
}

// DefaultConfigPath returns the XDG location of the configuration file
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// LoadFile reads a YAML configuration file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) apply(c *Config) {
	setString(&c.LogLevel, f.LogLevel)
	if f.JSONLog {
		c.JSONLog = true
	}
	setDuration(&c.HTTPTimeout, f.Timeout)
	setDuration(&c.CaptureTimeout, f.CaptureTimeout)
	setDuration(&c.VisionTimeout, f.VisionTimeout)
	setString(&c.UserAgent, f.UserAgent)
	if len(f.Proxies) > 0 {
		c.Proxies = f.Proxies
	}
	if len(f.Headers) > 0 {
		c.Headers = f.Headers
	}
	setString(&c.Backend, f.Backend)
	setString(&c.ChromePath, f.ChromePath)
	setString(&c.Model, f.Model)
	setInt(&c.MaxTokens, f.MaxTokens)
	setInt(&c.BandHeight, f.BandHeight)
	setInt(&c.JPEGQuality, f.JPEGQuality)
	if f.RateLimitRPS > 0 {
		c.RateLimitRPS = f.RateLimitRPS
	}
	setInt(&c.RateLimitBurst, f.RateLimitBurst)
	setString(&c.ScreenshotAPIURL, f.ScreenshotAPI)
	setString(&c.VisionAPIURL, f.VisionAPI)
	setString(&c.ScreenshotOneKey, f.ScreenshotOneKey)
	setString(&c.OpenAIKey, f.OpenAIKey)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
