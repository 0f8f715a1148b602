package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mymedia/leadgen-cli/internal/model"
	"github.com/mymedia/leadgen-cli/internal/store"
)

// DefaultWorkers is the orchestrator's default pool size.
const DefaultWorkers = 4

// EnricherFactory builds a worker's private Enricher. Called once per
// worker so browser sessions are never shared.
type EnricherFactory func() (*Enricher, error)

// ProgressFunc receives completed/total counts as businesses finish, in
// completion order.
type ProgressFunc func(done, total int)

// Orchestrator fans a batch of businesses out over a fixed worker pool.
type Orchestrator struct {
	workers  int
	cache    *store.Cache
	factory  EnricherFactory
	progress ProgressFunc
}

// NewOrchestrator creates an orchestrator. cache may be nil to disable
// caching; workers <= 0 falls back to DefaultWorkers.
func NewOrchestrator(workers int, cache *store.Cache, factory EnricherFactory) *Orchestrator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Orchestrator{
		workers: workers,
		cache:   cache,
		factory: factory,
	}
}

// OnProgress registers a progress callback. Must be set before Run.
func (o *Orchestrator) OnProgress(fn ProgressFunc) {
	o.progress = fn
}

// Run enriches every business and returns the results in input order.
// A failed item keeps its original record; the batch always completes
// unless the context is canceled or a worker cannot be constructed.
func (o *Orchestrator) Run(ctx context.Context, businesses []model.Business) ([]model.Business, error) {
	results := make([]model.Business, len(businesses))

	jobs := make(chan int, len(businesses))
	for i := range businesses {
		jobs <- i
	}
	close(jobs)

	var mu sync.Mutex
	done := 0
	// The callback runs under the lock so counts arrive in order.
	reportDone := func() {
		mu.Lock()
		defer mu.Unlock()
		done++
		if o.progress != nil {
			o.progress(done, len(businesses))
		}
	}

	workers := o.workers
	if workers > len(businesses) && len(businesses) > 0 {
		workers = len(businesses)
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			enricher, err := o.factory()
			if err != nil {
				return eris.Wrap(err, "orchestrator: build enricher")
			}
			defer enricher.Close()

			for idx := range jobs {
				if err := gctx.Err(); err != nil {
					return eris.Wrap(err, "orchestrator: canceled")
				}
				results[idx] = o.enrichOne(gctx, enricher, businesses[idx])
				reportDone()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// enrichOne serves one business from cache or the enricher. Failures are
// isolated: the original record is kept and the batch moves on.
func (o *Orchestrator) enrichOne(ctx context.Context, enricher *Enricher, business model.Business) model.Business {
	if o.cache != nil && business.Website != "" {
		if cached := o.cache.GetEnrichment(ctx, business.Name, business.Website); cached != nil {
			zap.L().Debug("enrichment cache hit", zap.String("business", business.Name))
			return *cached
		}
	}

	enriched, err := enricher.Enrich(ctx, business)
	if err != nil {
		zap.L().Warn("enrichment failed, keeping original record",
			zap.String("business", business.Name),
			zap.Error(err),
		)
		return business
	}

	if o.cache != nil && business.Website != "" {
		o.cache.SetEnrichment(ctx, enriched)
	}
	return enriched
}
