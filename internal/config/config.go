package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool
	Quiet    bool

	// Timeouts
	HTTPTimeout    time.Duration
	CaptureTimeout time.Duration
	VisionTimeout  time.Duration

	// HTTP
	UserAgent      string
	Proxies        []string
	Headers        []string
	RateLimitRPS   float64
	RateLimitBurst int

	// Capture
	Backend          string
	ChromePath       string
	ScreenshotAPIURL string

	// Vision
	VisionAPIURL string
	Model        string
	MaxTokens    int
	BandHeight   int
	JPEGQuality  int

	// Report
	OutputFile string

	// Secrets
	ScreenshotOneKey string
	OpenAIKey        string

	// ConfigFile is the file actually loaded, if any
	ConfigFile string
}

// New returns a Config populated with defaults
func New() *Config {
	return &Config{
		LogLevel:         DefaultLogLevel,
		JSONLog:          DefaultJSONLog,
		HTTPTimeout:      DefaultHTTPTimeout,
		CaptureTimeout:   DefaultCaptureTimeout,
		VisionTimeout:    DefaultVisionTimeout,
		UserAgent:        DefaultUserAgent,
		RateLimitRPS:     DefaultRateLimitRPS,
		RateLimitBurst:   DefaultRateLimitBurst,
		Backend:          DefaultBackend,
		ScreenshotAPIURL: DefaultScreenshotAPI,
		VisionAPIURL:     DefaultVisionAPI,
		Model:            DefaultModel,
		MaxTokens:        DefaultMaxTokens,
		BandHeight:       DefaultBandHeight,
		JPEGQuality:      DefaultJPEGQuality,
	}
}

// Load builds a Config by layering defaults, the config file, dotenv files,
// environment variables and CLI flags, in that order. Secrets still missing
// afterwards are looked up in the OS keyring.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := New()

	// Config file: explicit --config must exist, the XDG default may not
	path := flagString(cmd, "config")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	file, err := LoadFile(path)
	switch {
	case err == nil:
		file.apply(cfg)
		cfg.ConfigFile = path
	case errors.Is(err, ErrConfigNotFound) && !explicit:
	default:
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	envFile := DefaultEnvFile
	if cmd != nil {
		if f := cmd.Flags().Lookup("env-file"); f != nil {
			envFile = f.Value.String()
		}
	}
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, cmd); err != nil {
		return nil, err
	}

	if cfg.ScreenshotOneKey == "" {
		cfg.ScreenshotOneKey = lookupSecret(SecretScreenshotOne)
	}
	if cfg.OpenAIKey == "" {
		cfg.OpenAIKey = lookupSecret(SecretOpenAI)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.LogLevel, os.Getenv("VISION_LOG_LEVEL"))
	setString(&cfg.UserAgent, os.Getenv("VISION_USER_AGENT"))
	setString(&cfg.Backend, os.Getenv("VISION_BACKEND"))
	setString(&cfg.Model, os.Getenv("VISION_MODEL"))
	setString(&cfg.ChromePath, os.Getenv("VISION_CHROME_PATH"))
	setString(&cfg.ScreenshotAPIURL, os.Getenv("VISION_SCREENSHOT_API_URL"))
	setString(&cfg.VisionAPIURL, os.Getenv("VISION_API_URL"))

	if v := os.Getenv("VISION_PROXY"); v != "" {
		cfg.Proxies = splitList(v)
	}
	if v := os.Getenv("VISION_BAND_HEIGHT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VISION_BAND_HEIGHT: %w", err)
		}
		cfg.BandHeight = n
	}

	setString(&cfg.ScreenshotOneKey, strings.TrimSpace(os.Getenv(EnvScreenshotOneKey)))
	setString(&cfg.OpenAIKey, strings.TrimSpace(os.Getenv(EnvOpenAIKey)))
	return nil
}

// applyFlags copies flags the user actually set onto cfg
func applyFlags(cfg *Config, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	for _, d := range []struct {
		name string
		dst  *time.Duration
	}{
		{"timeout", &cfg.HTTPTimeout},
		{"capture-timeout", &cfg.CaptureTimeout},
		{"vision-timeout", &cfg.VisionTimeout},
	} {
		if !changed(d.name) {
			continue
		}
		v, err := time.ParseDuration(flags.Lookup(d.name).Value.String())
		if err != nil {
			return fmt.Errorf("--%s: %w", d.name, err)
		}
		*d.dst = v
	}

	if changed("user-agent") {
		cfg.UserAgent = flags.Lookup("user-agent").Value.String()
	}
	if changed("proxy") {
		proxies, err := flags.GetStringArray("proxy")
		if err != nil {
			return err
		}
		cfg.Proxies = proxies
	}
	if changed("header") {
		hs, err := flags.GetStringArray("header")
		if err != nil {
			return err
		}
		cfg.Headers = hs
	}
	if changed("backend") {
		cfg.Backend = flags.Lookup("backend").Value.String()
	}
	if changed("model") {
		cfg.Model = flags.Lookup("model").Value.String()
	}
	for _, n := range []struct {
		name string
		dst  *int
	}{
		{"max-tokens", &cfg.MaxTokens},
		{"band-height", &cfg.BandHeight},
	} {
		if !changed(n.name) {
			continue
		}
		v, err := flags.GetInt(n.name)
		if err != nil {
			return err
		}
		*n.dst = v
	}
	if f := flags.Lookup("output"); f != nil {
		setString(&cfg.OutputFile, f.Value.String())
	}

	if v, _ := flags.GetBool("json"); v {
		cfg.JSONLog = true
	}
	if v, _ := flags.GetBool("verbose"); v {
		cfg.LogLevel = "debug"
	}
	if v, _ := flags.GetBool("quiet"); v {
		cfg.Quiet = true
		cfg.LogLevel = "error"
	}
	return nil
}

func flagString(cmd *cobra.Command, name string) string {
	if cmd == nil {
		return ""
	}
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
