package discovery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractLinks pulls anchor hrefs from a page, resolves them against the
// page URL, and normalizes each. Host filtering happens when the crawl
// dequeues a link, not here.
func extractLinks(html, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		normalized, ok := Normalize(href)
		if !ok {
			return
		}
		ref, err := url.Parse(normalized)
		if err != nil {
			return
		}
		absolute, ok := Normalize(base.ResolveReference(ref).String())
		if !ok || seen[absolute] {
			return
		}
		seen[absolute] = true
		links = append(links, absolute)
	})
	return links
}
