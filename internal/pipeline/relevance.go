package pipeline

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/mymedia/leadgen-cli/internal/discovery"
)

// defaultMaxPages bounds how many pages are fetched and fed to the
// extractor per business, homepage included.
const defaultMaxPages = 5

const relevanceSystemPrompt = `You select web pages that are likely to list the people behind a business: owners, doctors, partners, staff, or their contact details. Respond with a JSON array of URLs chosen from the candidate list, best candidates first, at most 4. Respond with the JSON array only.`

// relevanceKeywords is the deterministic fallback when the oracle cannot
// rank candidates: URLs whose path contains any of these substrings are
// picked in candidate order.
var relevanceKeywords = []string{
	"kontakt", "contact", "contatti", "impressum", "team", "about",
	"chi-siamo", "about-us", "people", "staff", "mitarbeiter", "praxis",
	"equipe", "azienda", "unternehmen",
}

// selectPages picks up to maxPages URLs to fetch for a business. The
// homepage always comes first; the remaining slots are filled by the
// oracle's ranking of the discovered candidates, or by keyword matching
// when the oracle fails or returns garbage.
func selectPages(ctx context.Context, oracle Oracle, candidates []discovery.Candidate, baseURL string, maxPages int) []string {
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	selected := []string{baseURL}
	if len(candidates) == 0 {
		return selected
	}

	ranked := rankByOracle(ctx, oracle, candidates)
	if ranked == nil {
		ranked = rankByKeywords(candidates, maxPages)
	}

	seen := map[string]bool{baseURL: true}
	for _, u := range ranked {
		if len(selected) >= maxPages {
			break
		}
		if seen[u] {
			continue
		}
		seen[u] = true
		selected = append(selected, u)
	}
	return selected
}

// rankByOracle asks the oracle for the best candidates. Returns nil when
// the response is unusable so the caller can fall back.
func rankByOracle(ctx context.Context, oracle Oracle, candidates []discovery.Candidate) []string {
	var b strings.Builder
	b.WriteString("Candidate URLs:\n")
	for _, c := range candidates {
		b.WriteString(c.URL)
		b.WriteByte('\n')
	}

	reply, err := oracle.Complete(ctx, relevanceSystemPrompt, b.String())
	if err != nil {
		zap.L().Warn("relevance: oracle failed, using keyword fallback", zap.Error(err))
		return nil
	}

	var urls []string
	if err := json.Unmarshal([]byte(cleanJSON(reply, '[', ']')), &urls); err != nil {
		zap.L().Warn("relevance: unparseable oracle reply, using keyword fallback", zap.Error(err))
		return nil
	}
	if len(urls) == 0 {
		return nil
	}

	// Keep only URLs that were actually offered.
	offered := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		offered[c.URL] = true
	}
	picked := urls[:0]
	for _, u := range urls {
		if offered[u] {
			picked = append(picked, u)
		}
	}
	if len(picked) == 0 {
		return nil
	}
	return picked
}

func rankByKeywords(candidates []discovery.Candidate, maxPages int) []string {
	var picked []string
	for _, c := range candidates {
		// Match on the path only: a keyword in the hostname
		// ("praxis-weiss.example") would select every candidate.
		lower := strings.ToLower(candidatePath(c.URL))
		for _, kw := range relevanceKeywords {
			if strings.Contains(lower, kw) {
				picked = append(picked, c.URL)
				break
			}
		}
		if len(picked) >= maxPages {
			break
		}
	}
	return picked
}

func candidatePath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
