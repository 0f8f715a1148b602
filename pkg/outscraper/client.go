// Package outscraper wraps the Outscraper Google Maps search API, the
// directory source that seeds the enrichment pipeline.
package outscraper

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mymedia/leadgen-cli/internal/model"
)

const defaultBaseURL = "https://api.outscraper.cloud"

// Client performs Outscraper directory searches.
type Client interface {
	Search(ctx context.Context, query model.SearchQuery) ([]model.Business, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithLanguage sets the result language for directory searches.
func WithLanguage(lang string) Option {
	return func(c *httpClient) {
		c.language = lang
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey     string
	baseURL    string
	language   string
	http       *http.Client
	maxRetries int
}

// NewClient creates an Outscraper API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		language: "de",
		http: &http.Client{
			// Synchronous Maps searches can run for a while server-side.
			Timeout: 120 * time.Second,
		},
		maxRetries: 3,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// place mirrors the fields we consume from the Outscraper Maps response.
type place struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	FullAddress string  `json:"full_address"`
	City        string  `json:"city"`
	Phone       string  `json:"phone"`
	Site        string  `json:"site"`
	Rating      float64 `json:"rating"`
	Reviews     int     `json:"reviews"`
	Email1      string  `json:"email_1"`
	Email2      string  `json:"email_2"`
	Email3      string  `json:"email_3"`
}

// searchResponse wraps the data payload: one result array per submitted
// query. We always submit exactly one.
type searchResponse struct {
	Data [][]place `json:"data"`
}

func (c *httpClient) Search(ctx context.Context, query model.SearchQuery) ([]model.Business, error) {
	params := url.Values{}
	params.Set("query", query.MapsQuery())
	params.Set("limit", strconv.Itoa(query.Limit))
	params.Set("language", c.language)
	params.Set("region", query.Country)
	params.Set("enrichment", "domains_service")
	params.Set("async", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/maps/search-v3?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "outscraper: create request")
	}
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "outscraper: search")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "outscraper: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("outscraper: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result searchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "outscraper: unmarshal response")
	}

	var businesses []model.Business
	for _, group := range result.Data {
		for _, p := range group {
			businesses = append(businesses, toBusiness(p))
		}
	}

	zap.L().Info("directory search complete",
		zap.String("query", query.MapsQuery()),
		zap.Int("results", len(businesses)),
	)
	return businesses, nil
}

func toBusiness(p place) model.Business {
	b := model.Business{
		Name:     p.Name,
		Category: p.Type,
		Address:  p.FullAddress,
		City:     p.City,
		Phone:    p.Phone,
		Website:  p.Site,
	}
	if p.Rating > 0 {
		rating := p.Rating
		b.GoogleRating = &rating
	}
	if p.Reviews > 0 {
		reviews := p.Reviews
		b.ReviewCount = &reviews
	}
	for _, email := range []string{p.Email1, p.Email2, p.Email3} {
		if email != "" {
			b.AddCompanyEmail(email)
		}
	}
	return b
}

// doWithRetry retries transient failures (network errors, 429, 5xx) with
// exponential backoff and jitter.
func (c *httpClient) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := range c.maxRetries {
		cloned := req.Clone(ctx)
		resp, err := c.http.Do(cloned)
		if err != nil {
			lastErr = err
			zap.L().Warn("outscraper request failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("outscraper: http %d", resp.StatusCode)
			zap.L().Warn("outscraper transient status, retrying",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			c.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}

	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func (c *httpClient) backoff(ctx context.Context, attempt int) {
	base := time.Second
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(d) / 2))
	d = d + jitter

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
