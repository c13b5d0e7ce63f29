// Package catalog serves product lookups for the storefront's read-mostly
// browsing surfaces. Reads go through a stampede-protected read-through
// cache: concurrent lookups for the same product collapse into one source
// fetch, and hot entries refresh in the background when configured. The
// cart and checkout paths do not use this package; they read through the
// document façade, whose explicit TTL cache they control.
package catalog

import (
	"context"

	"github.com/iraklijanashvili/Ecommerce-sub000/cache"
)

// Product is one catalog entry.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
}

// Source is the catalog's source of truth.
type Source interface {
	Product(ctx context.Context, id string) (Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]Product, error)
}

const keyPrefix = "catalog"

// Repository is a cache-fronted catalog reader.
type Repository struct {
	source Source
	cache  cache.CacheService
	keys   cache.KeySerializer
}

// NewRepository fronts source with service. A nil serializer uses the
// default one.
func NewRepository(source Source, service cache.CacheService, keys cache.KeySerializer) *Repository {
	if keys == nil {
		keys = cache.NewDefaultKeySerializer()
	}
	return &Repository{source: source, cache: service, keys: keys}
}

// Product returns one product, from cache when warm.
func (r *Repository) Product(ctx context.Context, id string) (Product, error) {
	key := r.keys.SerializeKey(keyPrefix+".product", id)
	return cache.GetOrFetch(ctx, r.cache, key, func(ctx context.Context) (Product, error) {
		return r.source.Product(ctx, id)
	})
}

// ProductsByCategory returns the products in category, cached per category.
func (r *Repository) ProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	key := r.keys.SerializeKey(keyPrefix+".category", category)
	return cache.GetOrFetch(ctx, r.cache, key, func(ctx context.Context) ([]Product, error) {
		return r.source.ProductsByCategory(ctx, category)
	})
}

// InvalidateProduct evicts one product's cache entry.
func (r *Repository) InvalidateProduct(ctx context.Context, id string) error {
	return r.cache.Delete(ctx, r.keys.SerializeKey(keyPrefix+".product", id))
}

// InvalidateAll evicts every catalog cache entry, product and category
// listings alike.
func (r *Repository) InvalidateAll(ctx context.Context) error {
	return r.cache.DeleteByPrefix(ctx, keyPrefix)
}
