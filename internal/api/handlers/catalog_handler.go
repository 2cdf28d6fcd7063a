package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	redisc "github.com/scheme-mitra/backend/internal/cache/redis"
	"github.com/scheme-mitra/backend/internal/catalog"
	"github.com/scheme-mitra/backend/internal/ranker"
	"github.com/scheme-mitra/backend/pkg/logger"
)

type CatalogHandler struct {
	catalog *catalog.Cache
	cache   *redisc.Client
}

// NewCatalogHandler exposes the processed catalog over HTTP. cache may
// be nil when the reply cache is disabled.
func NewCatalogHandler(cat *catalog.Cache, cache *redisc.Client) *CatalogHandler {
	return &CatalogHandler{
		catalog: cat,
		cache:   cache,
	}
}

// ListSchemes returns the catalog, optionally filtered and ordered by
// relevance to ?q=.
func (h *CatalogHandler) ListSchemes(c *fiber.Ctx) error {
	entities := h.catalog.Entities()

	if q := c.Query("q"); q != "" {
		entities = ranker.Rank(entities, q, nil, nil)
	}

	limit := c.QueryInt("limit", 20)
	if limit > 0 && limit < len(entities) {
		entities = entities[:limit]
	}

	return c.JSON(fiber.Map{
		"count":   len(entities),
		"schemes": schemeRefs(entities),
	})
}

// RefreshCatalog reloads the catalog from its source and drops cached
// replies, which may reference stale scheme data.
func (h *CatalogHandler) RefreshCatalog(c *fiber.Ctx) error {
	if err := h.catalog.ForceRefresh(); err != nil {
		logger.Error("Catalog refresh failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Catalog refresh failed",
		})
	}

	if h.cache != nil {
		if err := h.cache.InvalidateReplies(c.Context()); err != nil {
			logger.Warn("Failed to invalidate cached replies", zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{
		"refreshed": true,
		"count":     len(h.catalog.Entities()),
	})
}
