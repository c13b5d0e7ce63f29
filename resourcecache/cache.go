package resourcecache

import (
	"context"
	"sync"

	"github.com/dgraph-io/ristretto"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
)

// Config tunes one resource cache. Both caps are configuration, not
// constants: size them for the surface the cache backs.
type Config struct {
	// MaxEntries caps how many resources stay cached.
	MaxEntries int64

	// MaxTotalCost caps the aggregate cost in bytes across all entries.
	MaxTotalCost int64

	// Fetcher performs the underlying resource fetch.
	Fetcher Fetcher

	// Logger records fetch failures at debug level. Nil disables.
	Logger *zap.Logger
}

// DefaultConfig suits a product-grid image cache: a couple hundred photos,
// fifty megabytes.
func DefaultConfig(fetcher Fetcher) Config {
	return Config{
		MaxEntries:   200,
		MaxTotalCost: 50 << 20,
		Fetcher:      fetcher,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MaxEntries, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.MaxTotalCost, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.Fetcher, validation.Required),
	)
}

// flight is the shared result of one in-flight fetch. data and ok are
// written once before done closes and read only after.
type flight struct {
	done      chan struct{}
	data      []byte
	ok        bool
	cancel    context.CancelFunc
	cancelled bool
}

// Cache is the resource fetch coalescer. Safe for concurrent use.
type Cache struct {
	store     *ristretto.Cache
	fetcher   Fetcher
	costFloor int64
	log       *zap.Logger

	mu       sync.Mutex
	inflight map[string]*flight
}

// New creates a resource cache.
func New(cfg Config) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.MaxEntries * 10,
		MaxCost:     cfg.MaxTotalCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		store: store,
		// Charging at least MaxTotalCost/MaxEntries per entry keeps the
		// entry count within MaxEntries while the cost cap bounds memory.
		costFloor: cfg.MaxTotalCost / cfg.MaxEntries,
		fetcher:   cfg.Fetcher,
		log:       log,
		inflight:  make(map[string]*flight),
	}, nil
}

// Load returns the resource for address, or false when it cannot be had:
// fetch failure, cancellation via Invalidate, or ctx expiring while
// waiting. A cache hit returns immediately with no I/O. On a miss, callers
// for the same address share one in-flight fetch.
//
// ctx bounds only this caller's wait. The underlying fetch runs on its own
// context so one impatient caller cannot fail the resource for the others;
// only Invalidate cancels the fetch itself.
func (c *Cache) Load(ctx context.Context, address string) ([]byte, bool) {
	if v, ok := c.store.Get(address); ok {
		if data, ok := v.([]byte); ok {
			return data, true
		}
		// Unexpected entry shape; drop it and refetch.
		c.store.Del(address)
	}

	c.mu.Lock()
	f, ok := c.inflight[address]
	if !ok {
		fetchCtx, cancel := context.WithCancel(context.Background())
		f = &flight{done: make(chan struct{}), cancel: cancel}
		c.inflight[address] = f
		go c.fetch(fetchCtx, address, f)
	}
	c.mu.Unlock()

	select {
	case <-f.done:
		return f.data, f.ok
	case <-ctx.Done():
		return nil, false
	}
}

// Invalidate cancels any in-flight fetch for address and evicts any cached
// entry. A later completion of the cancelled fetch is discarded; it never
// repopulates the cache.
func (c *Cache) Invalidate(address string) {
	c.mu.Lock()
	if f, ok := c.inflight[address]; ok {
		f.cancelled = true
		f.cancel()
		delete(c.inflight, address)
	}
	c.mu.Unlock()
	c.store.Del(address)
}

// Close releases the underlying cache. In-flight fetches are abandoned.
func (c *Cache) Close() {
	c.mu.Lock()
	for address, f := range c.inflight {
		f.cancelled = true
		f.cancel()
		delete(c.inflight, address)
	}
	c.mu.Unlock()
	c.store.Close()
}

func (c *Cache) fetch(ctx context.Context, address string, f *flight) {
	data, err := c.fetcher.Fetch(ctx, address)

	c.mu.Lock()
	// Deregister exactly once; Invalidate may have done it already.
	if c.inflight[address] == f {
		delete(c.inflight, address)
	}
	cancelled := f.cancelled
	c.mu.Unlock()

	switch {
	case cancelled:
		// Discarded result; the cache must stay clean.
	case err != nil:
		c.log.Debug("resource fetch failed",
			zap.String("address", address),
			zap.Error(err))
	default:
		f.data = data
		f.ok = true
		cost := int64(len(data))
		if cost < c.costFloor {
			cost = c.costFloor
		}
		c.store.Set(address, data, cost)
	}
	f.cancel()
	close(f.done)
}
