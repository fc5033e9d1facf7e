// Package screenshotone captures pages through the ScreenshotOne rendering API.
package screenshotone

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/law-makers/vision-researcher/internal/engine"
	"github.com/law-makers/vision-researcher/internal/fetcher"
	"github.com/law-makers/vision-researcher/internal/proxy"
	"github.com/law-makers/vision-researcher/internal/ratelimit"
	"github.com/law-makers/vision-researcher/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultAPIURL is the public ScreenshotOne endpoint
const DefaultAPIURL = "https://api.screenshotone.com"

// takeResponse is the JSON body of a take request with response_type=json
type takeResponse struct {
	CacheURL string `json:"cache_url"`
	Content  struct {
		URL string `json:"url"`
	} `json:"content"`
}

// Options configures a Client
type Options struct {
	APIURL    string
	AccessKey string
	Timeout   time.Duration
	Limiter   ratelimit.RateLimiter
	Proxies   *proxy.Pool
	Logger    *zerolog.Logger
}

// Client implements engine.Capturer on top of the ScreenshotOne API
type Client struct {
	http      *http.Client
	fetcher   *fetcher.Fetcher
	limiter   ratelimit.RateLimiter
	proxies   *proxy.Pool
	apiURL    string
	accessKey string
	timeout   time.Duration
	logger    zerolog.Logger
}

// New creates a Client. The fetcher retrieves the rendered HTML the service points at.
func New(httpClient *http.Client, f *fetcher.Fetcher, opts Options) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Unlimited{}
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Client{
		http:      httpClient,
		fetcher:   f,
		limiter:   opts.Limiter,
		proxies:   opts.Proxies,
		apiURL:    strings.TrimRight(opts.APIURL, "/"),
		accessKey: opts.AccessKey,
		timeout:   opts.Timeout,
		logger:    logger,
	}
}

// Name returns the name of this capture backend
func (c *Client) Name() string {
	return "screenshotone"
}

// Capture requests a cached full-page JPEG render of pageURL together with the
// rendered HTML, then retrieves that HTML.
func (c *Client) Capture(ctx context.Context, pageURL string) (*models.PageContent, error) {
	start := time.Now()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Info().Str("url", pageURL).Msg("Taking screenshot")

	proxyURL := c.proxies.Next()
	taken, err := c.take(ctx, pageURL, proxyURL)
	if err != nil {
		c.proxies.MarkFailed(proxyURL)
		return nil, err
	}
	c.proxies.MarkHealthy(proxyURL)

	content := &models.PageContent{
		URL:        pageURL,
		HTMLURL:    taken.Content.URL,
		CapturedAt: time.Now(),
	}

	if taken.CacheURL == "" {
		return nil, engine.NewError(engine.ErrCodeIncompletePage, "no screenshot URL in response", nil).
			WithDetail("url", pageURL)
	}
	content.Screenshot = &models.Screenshot{URL: taken.CacheURL, ContentType: "image/jpeg"}

	html, err := c.fetchHTML(ctx, taken.Content.URL)
	if err != nil {
		return nil, engine.NewError(engine.ErrCodeIncompletePage, "no HTML content fetched", err).
			WithDetail("url", pageURL)
	}
	content.HTML = html
	content.Duration = time.Since(start)

	c.logger.Info().
		Str("url", pageURL).
		Str("screenshot", taken.CacheURL).
		Int("html_bytes", len(html)).
		Dur("duration", content.Duration).
		Msg("Screenshot taken")

	return content, nil
}

func (c *Client) take(ctx context.Context, pageURL, proxyURL string) (*takeResponse, error) {
	params := url.Values{}
	params.Set("access_key", c.accessKey)
	params.Set("url", pageURL)
	params.Set("full_page", "true")
	params.Set("format", "jpg")
	params.Set("cache", "true")
	params.Set("response_type", "json")
	params.Set("metadata_content", "true")
	if proxyURL != "" {
		params.Set("proxy", proxyURL)
	}

	body, err := c.get(ctx, "/take", params)
	if err != nil {
		return nil, engine.NewError(engine.ErrCodeFetchFailed, "screenshot request failed", err).
			WithDetail("url", pageURL)
	}

	var taken takeResponse
	if err := json.Unmarshal(body, &taken); err != nil {
		return nil, engine.NewError(engine.ErrCodeFetchFailed, "failed to decode screenshot response", err).
			WithDetail("url", pageURL)
	}
	return &taken, nil
}

func (c *Client) fetchHTML(ctx context.Context, htmlURL string) (string, error) {
	if htmlURL == "" {
		return "", fmt.Errorf("response has no content URL")
	}
	result, err := c.fetcher.Fetch(ctx, htmlURL)
	if err != nil {
		return "", err
	}
	if len(result.Body) == 0 {
		return "", fmt.Errorf("content URL returned an empty document")
	}
	return string(result.Body), nil
}

// get issues an authenticated GET against the API and returns the body of a
// 200 response. Other statuses become a *fetcher.HTTPError with the payload.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.apiURL + path
	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", redact(err, c.accessKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fetcher.NewHTTPError(resp.StatusCode, resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// redact removes the access key from errors that echo the request URL
func redact(err error, secret string) error {
	if secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), secret, "***"))
}
