package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mymedia/leadgen-cli/internal/discovery"
	"github.com/mymedia/leadgen-cli/internal/model"
	"github.com/mymedia/leadgen-cli/internal/scrape"
)

// EnricherOptions tunes per-business budgets and per-page thresholds.
type EnricherOptions struct {
	// MaxPages bounds how many pages are fetched per business,
	// homepage included.
	MaxPages int
	// MinTextLength is the cleaned-text size below which a static fetch
	// is considered empty and the headless renderer is tried.
	MinTextLength int
	// MaxPageChars caps the cleaned text kept per page.
	MaxPageChars int
	// MaxPromptChars caps the combined page text per extraction request.
	MaxPromptChars int
}

// DefaultEnricherOptions returns the production thresholds.
func DefaultEnricherOptions() EnricherOptions {
	return EnricherOptions{
		MaxPages:       defaultMaxPages,
		MinTextLength:  50,
		MaxPageChars:   50000,
		MaxPromptChars: defaultMaxPromptChars,
	}
}

// Enricher runs the full per-business pipeline: discover URLs on the
// website, select the promising ones, pull their text and extract contact
// persons. Each orchestrator worker owns one Enricher, and with it one
// Fetcher and at most one headless browser session.
type Enricher struct {
	fetcher *scrape.Fetcher
	engine  *discovery.Engine
	oracle  Oracle
	opts    EnricherOptions
}

// NewEnricher wires an Enricher from its parts.
func NewEnricher(fetcher *scrape.Fetcher, oracle Oracle, discoveryOpts discovery.Options, opts EnricherOptions) *Enricher {
	defaults := DefaultEnricherOptions()
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaults.MaxPages
	}
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = defaults.MinTextLength
	}
	if opts.MaxPageChars <= 0 {
		opts.MaxPageChars = defaults.MaxPageChars
	}
	if opts.MaxPromptChars <= 0 {
		opts.MaxPromptChars = defaults.MaxPromptChars
	}
	return &Enricher{
		fetcher: fetcher,
		engine:  discovery.NewEngine(fetcher, discoveryOpts),
		oracle:  oracle,
		opts:    opts,
	}
}

// Close releases the fetcher's browser session, if one was started.
func (e *Enricher) Close() {
	e.fetcher.Close()
}

// Enrich returns the business with contact persons and harvested company
// emails filled in. A business without a website is returned unchanged.
func (e *Enricher) Enrich(ctx context.Context, business model.Business) (model.Business, error) {
	if business.Website == "" {
		zap.L().Debug("enrich: no website, skipping", zap.String("business", business.Name))
		return business, nil
	}

	base := normalizeBase(business.Website)
	candidates := e.engine.Discover(ctx, base)
	urls := selectPages(ctx, e.oracle, candidates, base, e.opts.MaxPages)

	var pages []Page
	var signals scrape.Signals
	for _, pageURL := range urls {
		if err := ctx.Err(); err != nil {
			return business, eris.Wrap(err, "enrich: canceled")
		}

		rawHTML, text := e.fetchPage(ctx, pageURL)
		if rawHTML != "" {
			signals.Merge(scrape.DirectSignals(rawHTML))
		}
		if len(text) < e.opts.MinTextLength {
			continue
		}
		pages = append(pages, Page{
			URL:   pageURL,
			Label: pageLabel(pageURL, base),
			Text:  scrape.Truncate(text, e.opts.MaxPageChars),
		})
	}

	for _, email := range signals.Emails {
		business.AddCompanyEmail(email)
	}

	contacts := extractContacts(ctx, e.oracle, business.Name, pages, signals, e.opts.MaxPromptChars)
	business.SetContacts(contacts)

	zap.L().Info("business enriched",
		zap.String("business", business.Name),
		zap.Int("pages", len(pages)),
		zap.Int("contacts", len(contacts)),
	)
	return business, nil
}

// fetchPage returns the raw HTML and cleaned text of a page, falling back
// to the headless renderer when the static fetch comes back empty or as a
// JavaScript shell.
func (e *Enricher) fetchPage(ctx context.Context, pageURL string) (rawHTML, text string) {
	rawHTML, ok := e.fetcher.FetchStatic(ctx, pageURL)
	if ok {
		text = scrape.Clean(scrape.ToText(rawHTML))
	}
	if !ok || len(text) < e.opts.MinTextLength {
		if rendered, renderOK := e.fetcher.Render(ctx, pageURL); renderOK {
			renderedText := scrape.Clean(scrape.ToText(rendered))
			if len(renderedText) > len(text) {
				rawHTML, text = rendered, renderedText
			}
		}
	}
	return rawHTML, text
}

// normalizeBase turns a directory-listed website field into a fetchable
// base URL.
func normalizeBase(website string) string {
	base := strings.TrimSpace(website)
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return strings.TrimRight(base, "/")
}

// pageLabel names a page for the extraction prompt: "homepage" for the
// site root, otherwise the last path segment.
func pageLabel(pageURL, baseURL string) string {
	if pageURL == baseURL || pageURL == baseURL+"/" {
		return "homepage"
	}
	trimmed := strings.TrimRight(pageURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 && idx+1 < len(trimmed) {
		return "/" + trimmed[idx+1:]
	}
	return pageURL
}
