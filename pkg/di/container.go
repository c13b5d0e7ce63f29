// Package di wires the storefront data core. The container owns every
// shared instance: the document cache and store, the catalog's read-through
// cache, the resource cache, and the logger. Nothing in the module holds
// package-level singletons; consumers construct one container at startup
// and pass it down.
package di

import (
	"go.uber.org/zap"

	"github.com/iraklijanashvili/Ecommerce-sub000/cache"
	"github.com/iraklijanashvili/Ecommerce-sub000/cart"
	"github.com/iraklijanashvili/Ecommerce-sub000/catalog"
	"github.com/iraklijanashvili/Ecommerce-sub000/docstore"
	"github.com/iraklijanashvili/Ecommerce-sub000/internal/cacheinfra"
	"github.com/iraklijanashvili/Ecommerce-sub000/internal/identity"
	"github.com/iraklijanashvili/Ecommerce-sub000/resourcecache"
)

// Config collects the tunables of every component the container builds.
type Config struct {
	// Documents configures the document store façade.
	Documents docstore.Config

	// Catalog configures the catalog's read-through cache. A zero value
	// uses cacheinfra.DefaultConfig.
	Catalog cacheinfra.Config

	// Resources configures the binary resource cache. A zero value uses
	// resourcecache.DefaultConfig over plain HTTP.
	Resources resourcecache.Config

	// Logger is shared by every component. Nil disables logging.
	Logger *zap.Logger
}

// DefaultConfig returns the configuration a storefront typically runs with.
func DefaultConfig() Config {
	return Config{
		Catalog:   cacheinfra.DefaultConfig(),
		Resources: resourcecache.DefaultConfig(&resourcecache.HTTPFetcher{}),
	}
}

// Container holds the shared instances of the data core.
type Container struct {
	config     Config
	log        *zap.Logger
	remote     docstore.Remote
	principals identity.Provider

	documentCache  *cacheinfra.MemoryStore
	store          *docstore.Store
	keySerializer  cache.KeySerializer
	catalogService cache.CacheService
	catalog        *catalog.Repository
	resources      *resourcecache.Cache
}

// NewContainer builds the data core on the given remote and principal
// provider. The remote is injected rather than constructed here so tests
// and tools can run the full stack against an in-memory one.
func NewContainer(remote docstore.Remote, principals identity.Provider, cfg Config) (*Container, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Documents.Logger == nil {
		cfg.Documents.Logger = log
	}
	if cfg.Catalog.Capacity == 0 {
		cfg.Catalog = cacheinfra.DefaultConfig()
	}
	if cfg.Resources.Fetcher == nil {
		fetcher := resourcecache.Fetcher(&resourcecache.HTTPFetcher{})
		if cfg.Resources.MaxEntries == 0 {
			cfg.Resources = resourcecache.DefaultConfig(fetcher)
		} else {
			cfg.Resources.Fetcher = fetcher
		}
	}
	if cfg.Resources.Logger == nil {
		cfg.Resources.Logger = log
	}

	documentCache := cacheinfra.NewMemoryStore()
	store := docstore.New(remote, documentCache, cfg.Documents)

	catalogService, err := cacheinfra.NewSturdycService(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	keySerializer := cache.NewDefaultKeySerializer()
	catalogRepo := catalog.NewRepository(
		catalog.NewRemoteSource(remote, cfg.Documents.Retry),
		catalogService,
		keySerializer,
	)

	resources, err := resourcecache.New(cfg.Resources)
	if err != nil {
		return nil, err
	}

	return &Container{
		config:         cfg,
		log:            log,
		remote:         remote,
		principals:     principals,
		documentCache:  documentCache,
		store:          store,
		keySerializer:  keySerializer,
		catalogService: catalogService,
		catalog:        catalogRepo,
		resources:      resources,
	}, nil
}

// NewContainerWithDefaults builds the data core with default configuration.
func NewContainerWithDefaults(remote docstore.Remote, principals identity.Provider) (*Container, error) {
	return NewContainer(remote, principals, DefaultConfig())
}

// Logger returns the shared logger.
func (c *Container) Logger() *zap.Logger { return c.log }

// DocumentStore returns the singleton document store façade.
func (c *Container) DocumentStore() *docstore.Store { return c.store }

// DocumentCache returns the TTL cache behind the document store, for
// callers that need direct eviction control.
func (c *Container) DocumentCache() *cacheinfra.MemoryStore { return c.documentCache }

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer { return c.keySerializer }

// CatalogService returns the catalog's read-through cache service.
func (c *Container) CatalogService() cache.CacheService { return c.catalogService }

// Catalog returns the cache-fronted catalog repository.
func (c *Container) Catalog() *catalog.Repository { return c.catalog }

// Resources returns the binary resource cache.
func (c *Container) Resources() *resourcecache.Cache { return c.resources }

// Principals returns the principal provider the container was built with.
func (c *Container) Principals() identity.Provider { return c.principals }

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() Config { return c.config }

// NewCartRepository creates a cart repository bound to the container's
// store and principal provider. Each caller owns the returned repository's
// Start/Stop lifecycle; the container deliberately does not cache it.
func (c *Container) NewCartRepository() (*cart.Repository, error) {
	return cart.New(cart.Config{
		Store:      c.store,
		Principals: c.principals,
		Logger:     c.log,
	})
}

// Close releases resources held by the container.
func (c *Container) Close() {
	c.resources.Close()
}
