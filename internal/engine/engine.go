package engine

import (
	"context"

	"github.com/law-makers/vision-researcher/pkg/models"
)

// Capturer renders a URL into a screenshot plus the raw HTML of the page
type Capturer interface {
	// Capture renders the page. A failure carries ErrCodeFetchFailed or ErrCodeIncompletePage.
	Capture(ctx context.Context, url string) (*models.PageContent, error)

	// Name returns the name of the capture backend
	Name() string
}

// Analyzer answers a prompt about a screenshot of arbitrary height
type Analyzer interface {
	Analyze(ctx context.Context, shot *models.Screenshot, prompt string) (*models.Report, error)
}

// LinkExtractor returns the same-host absolute links of an HTML document
type LinkExtractor interface {
	Extract(html, baseURL string) ([]string, error)
}

// LinkExtractorFunc adapts a plain function to LinkExtractor
type LinkExtractorFunc func(html, baseURL string) ([]string, error)

// Extract calls f(html, baseURL)
func (f LinkExtractorFunc) Extract(html, baseURL string) ([]string, error) {
	return f(html, baseURL)
}
