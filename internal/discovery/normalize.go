package discovery

import (
	"net/url"
	"regexp"
	"strings"
)

// assetRe matches URLs pointing at binary or document resources that are
// never useful crawl candidates. Query strings are deliberately not part
// of the match: "/page.pdf?x" is still an asset, "/page?file=x.pdf" is not.
var assetRe = regexp.MustCompile(`(?i)\.(?:pdf|jpe?g|png|gif|svg|webp|zip|rar|7z|xml)$`)

// Normalize canonicalizes a discovered URL: trims whitespace, strips the
// fragment, and rejects mailto:/tel: and other non-http(s) schemes.
// Query strings are kept intact since some sites route content through
// query parameters. Returns false when the URL is unusable.
func Normalize(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if idx := strings.Index(raw, "#"); idx >= 0 {
		raw = raw[:idx]
	}
	if raw == "" {
		return "", false
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", false
		}
	}
	return raw, true
}

// IsAsset reports whether the URL points at a known non-HTML resource.
func IsAsset(rawURL string) bool {
	base := rawURL
	if idx := strings.IndexAny(base, "?#"); idx >= 0 {
		base = base[:idx]
	}
	return assetRe.MatchString(base)
}

// Host returns the lowercase network authority of the URL, or "" when it
// cannot be parsed. An empty host never matches any other host.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
