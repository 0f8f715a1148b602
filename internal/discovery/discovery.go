// Package discovery finds candidate contact pages on a business website
// using a tiered strategy: sitemap.xml, conventional contact paths, and
// finally a bounded breadth-first crawl.
package discovery

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Tier identifies which discovery strategy produced a candidate.
type Tier string

const (
	TierSitemap    Tier = "sitemap"
	TierCommonPath Tier = "common-path"
	TierCrawl      Tier = "crawl"
)

// Candidate is a URL produced by discovery, not yet confirmed relevant.
// The URL is absolute and fragment-free.
type Candidate struct {
	URL   string
	Depth int
	Tier  Tier
}

// Fetcher is the subset of the scrape fetcher the engine needs.
type Fetcher interface {
	FetchStatic(ctx context.Context, url string) (string, bool)
	ProbeHead(ctx context.Context, url string) bool
}

// Options bounds the discovery engine.
type Options struct {
	MaxURLs  int // global candidate ceiling, default 200
	MaxDepth int // crawl tier hop limit, default 2
}

// Engine runs tiered URL discovery for a single site. Each Discover call
// owns its own queue and visited set; engines hold no crawl state and a
// fresh engine per worker keeps fetchers unshared.
type Engine struct {
	fetch Fetcher
	opts  Options
}

// NewEngine creates an Engine with defaults applied.
func NewEngine(fetch Fetcher, opts Options) *Engine {
	if opts.MaxURLs <= 0 {
		opts.MaxURLs = 200
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 2
	}
	return &Engine{fetch: fetch, opts: opts}
}

// commonContactPaths are conventional contact/about/team path suffixes,
// multilingual (German/Italian/English/French) to match the target market.
var commonContactPaths = []string{
	"/team", "/kontakt", "/contact", "/contatti", "/impressum",
	"/about", "/about-us", "/chi-siamo", "/ueber-uns",
	"/mitarbeiter", "/staff", "/people", "/equipe",
	"/praxisteam", "/aerzte", "/doctors", "/azienda",
	"/unternehmen", "/company",
}

// Discover returns candidate URLs for the site at baseURL. Tiers are
// mutually exclusive fallbacks tried in priority order; the first tier
// yielding at least one URL wins and later tiers are never invoked.
func (e *Engine) Discover(ctx context.Context, baseURL string) []Candidate {
	log := zap.L().With(zap.String("site", baseURL))

	if urls := e.sitemapURLs(ctx, baseURL); len(urls) > 0 {
		log.Info("discovery: urls from sitemap", zap.Int("count", len(urls)))
		return tagged(urls, TierSitemap)
	}

	if urls := e.probeCommonPaths(ctx, baseURL); len(urls) > 0 {
		log.Info("discovery: urls from common paths", zap.Int("count", len(urls)))
		return tagged(urls, TierCommonPath)
	}

	log.Debug("discovery: falling back to crawl")
	return e.crawl(ctx, baseURL)
}

// probeCommonPaths HEAD-probes the conventional path list and returns the
// URLs that respond below 400.
func (e *Engine) probeCommonPaths(ctx context.Context, baseURL string) []string {
	base := strings.TrimRight(baseURL, "/")
	var found []string
	for _, path := range commonContactPaths {
		if e.fetch.ProbeHead(ctx, base+path) {
			found = append(found, base+path)
		}
	}
	return found
}

// crawl performs a bounded breadth-first traversal starting at baseURL:
// depth-limited, candidate-limited, same-host only, assets excluded,
// visited-set deduplicated. A fetch failure simply ends that branch.
func (e *Engine) crawl(ctx context.Context, baseURL string) []Candidate {
	baseHost := Host(baseURL)

	type item struct {
		url   string
		depth int
	}
	queue := []item{{url: baseURL, depth: 0}}
	seen := make(map[string]bool)
	var out []Candidate

	for len(queue) > 0 && len(out) < e.opts.MaxURLs {
		it := queue[0]
		queue = queue[1:]

		u, ok := Normalize(it.url)
		if !ok || seen[u] {
			continue
		}
		if IsAsset(u) {
			continue
		}
		if baseHost != "" && Host(u) != baseHost {
			continue
		}

		seen[u] = true
		out = append(out, Candidate{URL: u, Depth: it.depth, Tier: TierCrawl})

		if it.depth >= e.opts.MaxDepth {
			continue
		}

		html, ok := e.fetch.FetchStatic(ctx, u)
		if !ok {
			continue
		}
		for _, link := range extractLinks(html, u) {
			if !seen[link] {
				queue = append(queue, item{url: link, depth: it.depth + 1})
			}
		}
	}

	return out
}

func tagged(urls []string, tier Tier) []Candidate {
	out := make([]Candidate, 0, len(urls))
	for _, u := range urls {
		out = append(out, Candidate{URL: u, Tier: tier})
	}
	return out
}
