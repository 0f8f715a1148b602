package store

import (
	"context"
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"github.com/mymedia/leadgen-cli/internal/model"
)

// Cache is the typed façade over a Store used by the pipeline. Caching is
// a performance optimization, never a correctness dependency: every
// storage error is swallowed, debug-logged, and treated as a miss.
type Cache struct {
	store Store
}

// NewCache wraps a Store.
func NewCache(store Store) *Cache {
	return &Cache{store: store}
}

func searchKey(q model.SearchQuery) string {
	return Key("search", q.BusinessType, q.City, q.Country, strconv.Itoa(q.Limit))
}

func enrichmentKey(name, website string) string {
	return Key("enrichment", name, website)
}

// GetSearch returns cached directory-search results, or nil on miss.
func (c *Cache) GetSearch(ctx context.Context, q model.SearchQuery) []model.Business {
	data, err := c.store.Get(ctx, searchKey(q))
	if err != nil {
		zap.L().Debug("cache: search read failed", zap.Error(err))
		return nil
	}
	if data == nil {
		return nil
	}

	var businesses []model.Business
	if err := json.Unmarshal(data, &businesses); err != nil {
		zap.L().Debug("cache: search entry corrupt", zap.Error(err))
		return nil
	}
	return businesses
}

// SetSearch stores directory-search results.
func (c *Cache) SetSearch(ctx context.Context, q model.SearchQuery, businesses []model.Business) {
	data, err := json.Marshal(businesses)
	if err != nil {
		zap.L().Debug("cache: marshal search results failed", zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, searchKey(q), data); err != nil {
		zap.L().Debug("cache: search write failed", zap.Error(err))
	}
}

// GetEnrichment returns the cached enriched record for a business, keyed
// by (name, website), or nil on miss.
func (c *Cache) GetEnrichment(ctx context.Context, name, website string) *model.Business {
	data, err := c.store.Get(ctx, enrichmentKey(name, website))
	if err != nil {
		zap.L().Debug("cache: enrichment read failed", zap.Error(err))
		return nil
	}
	if data == nil {
		return nil
	}

	var business model.Business
	if err := json.Unmarshal(data, &business); err != nil {
		zap.L().Debug("cache: enrichment entry corrupt", zap.Error(err))
		return nil
	}
	return &business
}

// SetEnrichment stores an enriched business keyed by (name, website).
func (c *Cache) SetEnrichment(ctx context.Context, business model.Business) {
	data, err := json.Marshal(business)
	if err != nil {
		zap.L().Debug("cache: marshal enrichment failed", zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, enrichmentKey(business.Name, business.Website), data); err != nil {
		zap.L().Debug("cache: enrichment write failed", zap.Error(err))
	}
}
