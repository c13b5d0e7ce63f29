package cacheinfra

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc-backed read-through cache.
type Config struct {
	// Capacity defines the maximum number of entries the cache can store.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	NumShards int

	// TTL is the time-to-live for cached entries.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict when
	// the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EarlyRefresh configures background refresh of frequently read entries
	// before they expire. Nil disables early refresh.
	EarlyRefresh *EarlyRefreshConfig

	// MissingRecordStorage remembers keys that returned no results so
	// repeated lookups of absent records skip the remote call.
	MissingRecordStorage bool

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero uses sturdyc's default interval.
	EvictionInterval time.Duration
}

// EarlyRefreshConfig configures early refresh behavior.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns a Config sized for the product catalog: a few
// thousand products, five minute freshness, early refresh so hot products
// never block a render on a remote round trip.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
		EarlyRefresh: &EarlyRefreshConfig{
			MinAsyncRefreshTime: 10 * time.Second,
			MaxAsyncRefreshTime: 20 * time.Second,
			SyncRefreshTime:     30 * time.Second,
			RetryBaseDelay:      100 * time.Millisecond,
		},
		MissingRecordStorage: true,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

// toOptions maps the optional settings onto sturdyc options. Capacity,
// NumShards, TTL and EvictionPercentage go to the sturdyc.New constructor.
func (c Config) toOptions() []sturdyc.Option {
	var options []sturdyc.Option
	if c.EarlyRefresh != nil {
		options = append(options, sturdyc.WithEarlyRefreshes(
			c.EarlyRefresh.MinAsyncRefreshTime,
			c.EarlyRefresh.MaxAsyncRefreshTime,
			c.EarlyRefresh.SyncRefreshTime,
			c.EarlyRefresh.RetryBaseDelay,
		))
	}
	if c.MissingRecordStorage {
		options = append(options, sturdyc.WithMissingRecordStorage())
	}
	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return options
}

// SturdycService implements cache.CacheService on a sturdyc client. Sturdyc
// owns stampede protection: concurrent GetOrFetch calls for one key share a
// single in-flight fetch.
type SturdycService struct {
	client *sturdyc.Client[any]
}

// NewSturdycService validates the configuration and initializes the client.
func NewSturdycService(cfg Config) (*SturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.toOptions()...,
	)
	return &SturdycService{client: client}, nil
}

// GetOrFetch returns the cached value for key, calling fetchFn and storing
// its result on a miss or expiry.
func (s *SturdycService) GetOrFetch(ctx context.Context, key string, fetchFn func(ctx context.Context) (any, error)) (any, error) {
	// A typed-nil failure result trips sturdyc's response assertion and
	// replaces the fetch error with its own. Substitute a placeholder value
	// on the way in and hand the original error back on the way out.
	var fetchErr error
	v, err := s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		v, err := fetchFn(ctx)
		if err != nil {
			fetchErr = err
			if v == nil {
				v = struct{}{}
			}
		}
		return v, err
	})
	if err != nil && fetchErr != nil {
		return nil, fetchErr
	}
	return v, err
}

// Delete removes a single entry so the next GetOrFetch refetches.
func (s *SturdycService) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes every entry whose key starts with prefix. Useful
// for invalidating all cached reads of one entity after a back-office write.
func (s *SturdycService) DeleteByPrefix(_ context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}
