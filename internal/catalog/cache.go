package catalog

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scheme-mitra/backend/internal/metrics"
	"github.com/scheme-mitra/backend/internal/processor"
	"github.com/scheme-mitra/backend/internal/scheme"
	"github.com/scheme-mitra/backend/pkg/logger"
)

// Cache owns the processed entity table. The table is rebuilt
// wholesale from the loader when the TTL expires and swapped in
// atomically; concurrent refresh triggers are idempotent, last
// writer wins.
type Cache struct {
	loader Loader
	ttl    time.Duration

	mu       sync.RWMutex
	entities []scheme.Entity
	loadedAt time.Time

	refreshMu sync.Mutex
}

func NewCache(loader Loader, ttl time.Duration) *Cache {
	return &Cache{loader: loader, ttl: ttl}
}

// Entities returns the current entity table, refreshing it first if
// the TTL has lapsed. When a refresh fails the previous table is
// served and the failure logged; an empty table is only possible
// before the first successful load.
func (c *Cache) Entities() []scheme.Entity {
	if c.expired() {
		if err := c.Refresh(); err != nil {
			logger.Warn("Catalog refresh failed, serving previous table", zap.Error(err))
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entities
}

// Refresh rebuilds the entity table from the loader and swaps it in.
// Only one rebuild runs at a time; callers that lose the race simply
// observe the winner's table.
func (c *Cache) Refresh() error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if !c.expired() {
		return nil
	}

	raw, err := c.loader()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	entities := processor.ProcessCatalog(raw)

	c.mu.Lock()
	c.entities = entities
	c.loadedAt = time.Now()
	c.mu.Unlock()

	metrics.CatalogEntities.Set(float64(len(entities)))
	metrics.CatalogRefreshes.Inc()
	logger.Info("Catalog refreshed", zap.Int("entities", len(entities)))
	return nil
}

// ForceRefresh rebuilds regardless of TTL, for the admin endpoint.
func (c *Cache) ForceRefresh() error {
	c.mu.Lock()
	c.loadedAt = time.Time{}
	c.mu.Unlock()
	return c.Refresh()
}

func (c *Cache) expired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt.IsZero() || time.Since(c.loadedAt) > c.ttl
}
