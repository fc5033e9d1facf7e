package output

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/law-makers/vision-researcher/internal/utils/url"
)

// noise is everything a captured page carries that has no readable content
const noise = "script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, canvas"

// keptAttrs lists the attributes that survive cleaning, per element.
// Elements not listed lose all attributes.
var keptAttrs = map[string]map[string]bool{
	"a":   {"href": true, "title": true},
	"img": {"src": true, "alt": true, "title": true},
}

// urlAttrs are rewritten to absolute URLs so a saved capture still links
// back to the audited site
var urlAttrs = map[string]bool{"href": true, "src": true}

// CleanHTML strips noise elements and most attributes from a captured page,
// leaving its readable structure. Links and image sources are resolved
// against pageURL; an unparseable pageURL leaves them untouched.
func CleanHTML(htmlContent, pageURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}
	base, _ := url.Parse(pageURL)

	doc.Find(noise).Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if node == nil {
			return
		}
		allowed := keptAttrs[node.Data]
		attrs := node.Attr[:0]
		for _, attr := range node.Attr {
			if !allowed[attr.Key] {
				continue
			}
			if urlAttrs[attr.Key] && base != nil && base.IsAbs() {
				if abs, err := urlutil.Resolve(base, attr.Val); err == nil {
					attr.Val = abs.String()
				}
			}
			attrs = append(attrs, attr)
		}
		node.Attr = attrs
	})

	out, err := doc.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
