// Package links extracts same-host hyperlinks from rendered HTML.
package links

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/vision-researcher/internal/engine"
	urlutil "github.com/law-makers/vision-researcher/internal/utils/url"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// hyperlinkSelector matches every element whose href navigates somewhere
const hyperlinkSelector = "a[href], area[href]"

// Extract returns the deduplicated absolute links in htmlText whose host equals
// the host of baseURL, in document order.
//
// Links that fail to parse are skipped. A base URL or document that cannot be
// parsed yields an empty result and an ErrCodeExtractionError.
func Extract(htmlText, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return []string{}, engine.NewError(engine.ErrCodeExtractionError, "invalid base URL", err).
			WithDetail("base_url", baseURL)
	}

	root, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return []string{}, engine.NewError(engine.ErrCodeExtractionError, "failed to parse HTML", err).
			WithDetail("base_url", baseURL)
	}
	doc := goquery.NewDocumentFromNode(root)

	seen := make(map[string]struct{})
	result := make([]string, 0)
	skipped := 0

	doc.Find(hyperlinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		resolved, err := urlutil.Resolve(base, strings.TrimSpace(href))
		if err != nil {
			skipped++
			return
		}
		if !urlutil.SameHost(base, resolved) {
			return
		}

		abs := resolved.String()
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		result = append(result, abs)
	})

	log.Debug().
		Str("base_url", baseURL).
		Int("links", len(result)).
		Int("malformed", skipped).
		Msg("Links extracted")

	return result, nil
}

// Extractor is the engine.LinkExtractor backed by Extract
var Extractor engine.LinkExtractor = engine.LinkExtractorFunc(Extract)
