package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// renderer wraps one headless Chrome allocator, started lazily on the
// first render and reused for every later call. The browser is a scarce
// external resource: close releases it even when a render errored.
type renderer struct {
	navTimeout time.Duration

	mu          sync.Mutex
	started     bool
	startErr    error
	allocator   context.Context
	allocCancel context.CancelFunc
}

func newRenderer(navTimeout time.Duration) *renderer {
	return &renderer{navTimeout: navTimeout}
}

// start launches the exec allocator once. A failed start is remembered so
// later renders fail fast instead of retrying the browser launch.
func (r *renderer) start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return r.startErr
	}
	r.started = true

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	r.allocator, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)

	// Probe the allocator with a throwaway tab so an unavailable Chrome
	// binary surfaces here rather than on every render.
	probeCtx, probeCancel := chromedp.NewContext(r.allocator)
	defer probeCancel()
	probeCtx, cancel := context.WithTimeout(probeCtx, 15*time.Second)
	defer cancel()
	if err := chromedp.Run(probeCtx); err != nil {
		r.startErr = eris.Wrap(err, "render: start browser")
		r.allocCancel()
		r.allocator = nil
		zap.L().Debug("scrape: headless browser unavailable", zap.Error(err))
	}
	return r.startErr
}

// render navigates to the URL in a fresh tab and returns the DOM after
// the body is ready.
func (r *renderer) render(ctx context.Context, url string) (string, error) {
	if err := r.start(); err != nil {
		return "", err
	}

	taskCtx, taskCancel := chromedp.NewContext(r.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, r.navTimeout)
	defer cancel()

	// Honor caller cancellation without tying tab lifetime to ctx.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			taskCancel()
		case <-done:
		}
	}()

	var html string
	err := chromedp.Run(taskCtx,
		emulation.SetUserAgentOverride(browserUserAgent),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", eris.Wrapf(err, "render: navigate %s", url)
	}
	return html, nil
}

// close cancels the allocator. Safe when start never ran or failed, and
// safe to call more than once.
func (r *renderer) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.allocCancel != nil {
		r.allocCancel()
		r.allocCancel = nil
		r.allocator = nil
	}
}
