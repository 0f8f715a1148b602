package discovery

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"
)

// sitemapURLs fetches /sitemap.xml and returns all <loc> entries, assets
// excluded, capped at the URL ceiling. Any fetch or parse failure returns
// nil so the caller falls through to the next tier.
func (e *Engine) sitemapURLs(ctx context.Context, baseURL string) []string {
	sitemapURL := strings.TrimRight(baseURL, "/") + "/sitemap.xml"

	body, ok := e.fetch.FetchStatic(ctx, sitemapURL)
	if !ok {
		return nil
	}

	urls, err := parseSitemapLocs(body, e.opts.MaxURLs)
	if err != nil {
		zap.L().Debug("discovery: sitemap parse failed",
			zap.String("url", sitemapURL),
			zap.Error(err),
		)
		return nil
	}
	return urls
}

// parseSitemapLocs walks the XML token stream collecting the text of
// every <loc> element regardless of namespace, so both plain urlsets and
// namespaced sitemap-protocol documents parse the same way.
func parseSitemapLocs(body string, limit int) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(body))

	var urls []string
	inLoc := false
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// Tolerate trailing garbage once at least one loc was parsed.
			if len(urls) > 0 {
				break
			}
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "loc" {
				inLoc = true
				text.Reset()
			}
		case xml.CharData:
			if inLoc {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "loc" {
				inLoc = false
				loc := strings.TrimSpace(text.String())
				if loc == "" || IsAsset(loc) {
					continue
				}
				urls = append(urls, loc)
				if len(urls) >= limit {
					return urls, nil
				}
			}
		}
	}
	return urls, nil
}
