// Package scrape retrieves and normalizes website content: static HTTP
// fetching with a lazy headless-render fallback, HTML-to-text conversion,
// boilerplate stripping, and direct mailto:/tel: signal harvesting.
package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// browserUserAgent is sent on every request. Many small-business sites
// serve reduced or blocked content to obvious bot agents.
const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 2 * 1024 * 1024

// Options configures a Fetcher.
type Options struct {
	FetchTimeout  time.Duration // GET timeout, default 20s
	ProbeTimeout  time.Duration // HEAD timeout, default 5s
	RenderTimeout time.Duration // headless navigation timeout, default 30s
	RenderEnabled bool
}

// Fetcher retrieves pages over HTTP with an optional headless-render
// fallback. A Fetcher is owned by exactly one orchestrator worker; it is
// not safe for uncoordinated concurrent use because the render session
// is stateful.
type Fetcher struct {
	client   *http.Client
	probe    *http.Client
	renderer *renderer
	opts     Options
}

// NewFetcher creates a Fetcher with defaults applied. The headless
// browser is not started until the first Render call.
func NewFetcher(opts Options) *Fetcher {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 20 * time.Second
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 5 * time.Second
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = 30 * time.Second
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 10 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConnsPerHost: 4,
	}

	f := &Fetcher{
		client: &http.Client{Timeout: opts.FetchTimeout, Transport: transport},
		probe:  &http.Client{Timeout: opts.ProbeTimeout, Transport: transport},
		opts:   opts,
	}
	if opts.RenderEnabled {
		f.renderer = newRenderer(opts.RenderTimeout)
	}
	return f
}

// Close releases the headless-render session if one was ever started.
// Safe to call when rendering never happened, and safe to call twice.
func (f *Fetcher) Close() {
	if f.renderer != nil {
		f.renderer.close()
	}
}

// FetchStatic GETs a URL and returns the body. Transport errors and
// status >= 400 yield absent; nothing is raised to the caller.
func (f *Fetcher) FetchStatic(ctx context.Context, url string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		zap.L().Debug("scrape: static fetch failed", zap.String("url", url), zap.Error(err))
		return "", false
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		zap.L().Debug("scrape: read body failed", zap.String("url", url), zap.Error(err))
		return "", false
	}
	return string(body), true
}

// ProbeHead HEAD-probes a URL. Any error or status >= 400 is false.
func (f *Fetcher) ProbeHead(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.probe.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode < 400
}

// Render loads a URL in the headless browser and returns the rendered
// DOM. Absent when rendering is disabled, the browser cannot start, or
// navigation fails or times out.
func (f *Fetcher) Render(ctx context.Context, url string) (string, bool) {
	if f.renderer == nil {
		return "", false
	}
	html, err := f.renderer.render(ctx, url)
	if err != nil {
		zap.L().Debug("scrape: render failed", zap.String("url", url), zap.Error(err))
		return "", false
	}
	return html, true
}
