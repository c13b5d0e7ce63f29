package cache

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnexpectedType reports a cached value whose dynamic type does not
// match the caller's, the symptom of two callers sharing one key.
var ErrUnexpectedType = errors.New("cache: cached value has unexpected type")

// FetchFn is the function signature CacheService expects when fetching from
// the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the read-through caching operations used for
// read-mostly data such as the product catalog. Implementations own fetch
// deduplication: concurrent GetOrFetch calls for the same key result in a
// single underlying fetch.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn func(ctx context.Context) (any, error)) (any, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// GetOrFetch is a type-safe wrapper over CacheService for callers that know
// their value type. Since Go methods cannot have type parameters this is a
// package-level function.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	result, err := service.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: key %q holds %T", ErrUnexpectedType, key, result)
	}
	return typed, nil
}
