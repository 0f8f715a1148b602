package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/mymedia/leadgen-cli/internal/config"
	"github.com/mymedia/leadgen-cli/internal/discovery"
	"github.com/mymedia/leadgen-cli/internal/pipeline"
	"github.com/mymedia/leadgen-cli/internal/scrape"
	"github.com/mymedia/leadgen-cli/internal/store"
	"github.com/mymedia/leadgen-cli/pkg/anthropic"
)

// initStore opens the configured cache backend and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour

	var st store.Store
	var err error
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.Path, ttl)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, ttl)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "init %s store", cfg.Store.Driver)
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// newOrchestrator builds the worker pool. Every worker gets its own
// Fetcher (and render session) and its own paced oracle through the
// factory; the Anthropic client is shared.
func newOrchestrator(cache *store.Cache) *pipeline.Orchestrator {
	client := anthropic.NewClient(cfg.Anthropic.Key)
	factory := func() (*pipeline.Enricher, error) {
		oracle := pipeline.NewAnthropicOracle(
			client,
			cfg.Anthropic.Model,
			int64(cfg.Anthropic.MaxTokens),
			time.Duration(cfg.Oracle.PaceMs)*time.Millisecond,
		)
		fetcher := scrape.NewFetcher(scrapeOptions(cfg.Scrape))
		return pipeline.NewEnricher(fetcher, oracle, discoveryOptions(cfg.Discovery), enricherOptions(cfg)), nil
	}
	return pipeline.NewOrchestrator(cfg.Enrich.Workers, cache, factory)
}

func scrapeOptions(c config.ScrapeConfig) scrape.Options {
	return scrape.Options{
		FetchTimeout:  time.Duration(c.FetchTimeoutSecs) * time.Second,
		ProbeTimeout:  time.Duration(c.ProbeTimeoutSecs) * time.Second,
		RenderTimeout: time.Duration(c.RenderTimeoutSecs) * time.Second,
		RenderEnabled: c.RenderEnabled,
	}
}

func discoveryOptions(c config.DiscoveryConfig) discovery.Options {
	return discovery.Options{
		MaxURLs:  c.MaxURLs,
		MaxDepth: c.MaxDepth,
	}
}

func enricherOptions(c *config.Config) pipeline.EnricherOptions {
	return pipeline.EnricherOptions{
		MaxPages:       c.Scrape.MaxPages,
		MinTextLength:  c.Scrape.MinTextLength,
		MaxPageChars:   c.Scrape.MaxPageChars,
		MaxPromptChars: c.Extract.MaxPromptChars,
	}
}
