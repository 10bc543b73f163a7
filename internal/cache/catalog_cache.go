package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
)

const catalogKey = "catalog:snapshot"

// CatalogCache stores the latest catalog snapshot, msgpack-encoded.
type CatalogCache struct {
	kv  KV
	ttl time.Duration
}

// NewCatalogCache creates a new CatalogCache.
func NewCatalogCache(kv KV, ttl time.Duration) *CatalogCache {
	return &CatalogCache{kv: kv, ttl: ttl}
}

// Get returns the cached snapshot or ErrCacheMiss.
func (c *CatalogCache) Get(ctx context.Context) (*models.Catalog, error) {
	raw, err := c.kv.Get(ctx, catalogKey)
	if err != nil {
		return nil, err
	}
	var catalog models.Catalog
	if err := msgpack.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	return &catalog, nil
}

// Set replaces the cached snapshot.
func (c *CatalogCache) Set(ctx context.Context, catalog *models.Catalog) error {
	raw, err := msgpack.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := c.kv.Set(ctx, catalogKey, raw, c.ttl); err != nil {
		return fmt.Errorf("failed to cache catalog: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.kv.Delete(ctx, catalogKey)
}
