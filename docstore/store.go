package docstore

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iraklijanashvili/Ecommerce-sub000/cache"
	"github.com/iraklijanashvili/Ecommerce-sub000/retry"
)

// DefaultDocumentTTL is how long fetched documents stay served from cache.
// A tunable default, not a contract: construct the store with a different
// Config.DocumentTTL to change it.
const DefaultDocumentTTL = 300 * time.Second

// Config tunes one Store instance.
type Config struct {
	// DocumentTTL is the cache lifetime for fetched documents and query
	// results. Zero means DefaultDocumentTTL.
	DocumentTTL time.Duration

	// Retry wraps remote reads. The zero value means retry.Default().
	Retry retry.Policy

	// Logger is used for cache maintenance diagnostics. Nil disables.
	Logger *zap.Logger
}

// Store composes a Remote with the TTL object cache and the retry policy.
// One Store serves many collections and many concurrent callers; construct
// it once in the composition root and inject it.
type Store struct {
	remote Remote
	cache  cache.Store
	ttl    time.Duration
	retry  retry.Policy
	log    *zap.Logger
}

// New creates a Store over the given remote and cache.
func New(remote Remote, cacheStore cache.Store, cfg Config) *Store {
	ttl := cfg.DocumentTTL
	if ttl <= 0 {
		ttl = DefaultDocumentTTL
	}
	policy := cfg.Retry
	if policy.MaxAttempts == 0 && policy.InitialDelay == 0 {
		policy = retry.Default()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		remote: remote,
		cache:  cacheStore,
		ttl:    ttl,
		retry:  policy,
		log:    log,
	}
}

// classify marks errors no retry can repair as permanent so the retry loop
// fails fast instead of hammering the remote with doomed attempts.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotAuthenticated) {
		return retry.Permanent(err)
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return retry.Permanent(err)
	}
	return err
}

// FetchDocument returns the document collection/id as T. A valid cached
// value is returned without a remote call; on a miss the remote read runs
// under the retry policy and the decoded result is cached for the store's
// TTL. Exhausted retries propagate the failure; an expired cache entry is
// never served as a fallback.
func FetchDocument[T any](ctx context.Context, s *Store, codec Codec[T], collection, id string) (T, error) {
	key := cache.DocumentKey(collection, id)
	if v, ok := cache.GetTyped[T](s.cache, key); ok {
		return v, nil
	}

	doc, err := retry.DoValue(ctx, s.retry, func(ctx context.Context) (Document, error) {
		d, err := s.remote.Get(ctx, collection, id)
		return d, classify(err)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	v, err := codec.Decode(doc)
	if err != nil {
		var zero T
		return zero, &DecodeError{Collection: collection, ID: doc.ID, Err: err}
	}
	s.cache.Set(key, v, s.ttl)
	return v, nil
}

// FetchDocuments returns the documents whose filterField equals filterValue,
// under the same cache and retry discipline as FetchDocument. The result is
// cached per (collection, field, value).
func FetchDocuments[T any](ctx context.Context, s *Store, codec Codec[T], collection, filterField string, filterValue any) ([]T, error) {
	key := cache.QueryKey(collection, filterField, filterValue)
	if vs, ok := cache.GetTyped[[]T](s.cache, key); ok {
		return vs, nil
	}

	docs, err := retry.DoValue(ctx, s.retry, func(ctx context.Context) ([]Document, error) {
		ds, err := s.remote.Query(ctx, collection, filterField, filterValue)
		return ds, classify(err)
	})
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := codec.Decode(doc)
		if err != nil {
			return nil, &DecodeError{Collection: collection, ID: doc.ID, Err: err}
		}
		out = append(out, v)
	}
	s.cache.Set(key, out, s.ttl)
	return out, nil
}

// SaveDocument writes value through to the remote. An empty id asks the
// store to assign one; the id actually written is returned. On success the
// document's cache entry is populated with the value a fresh fetch would
// decode, and the collection's cached query results are cleared. Saves are
// not wrapped in retry; callers needing retried writes wrap SaveDocument in
// a retry.Policy themselves.
func SaveDocument[T any](ctx context.Context, s *Store, codec Codec[T], collection, id string, value T) (string, error) {
	data, err := codec.Encode(value)
	if err != nil {
		return "", &DecodeError{Collection: collection, ID: id, Err: err}
	}

	savedID, err := s.remote.Set(ctx, collection, id, data)
	if err != nil {
		return "", err
	}

	// Write-through: cache what a subsequent fetch would decode, id included.
	if cached, err := codec.Decode(Document{ID: savedID, Data: data}); err == nil {
		s.cache.Set(cache.DocumentKey(collection, savedID), cached, s.ttl)
	} else {
		s.log.Warn("write-through decode failed, leaving cache cold",
			zap.String("collection", collection),
			zap.String("id", savedID),
			zap.Error(err))
		s.cache.Remove(cache.DocumentKey(collection, savedID))
	}
	s.cache.RemoveByPrefix(cache.QueryPrefix(collection))
	return savedID, nil
}

// DeleteDocument removes the document remotely, then invalidates its cache
// entry and the collection's cached query results. Invalidation happens
// only after confirmed remote success, never before.
func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	if err := s.remote.Delete(ctx, collection, id); err != nil {
		return err
	}
	s.cache.Remove(cache.DocumentKey(collection, id))
	s.cache.RemoveByPrefix(cache.QueryPrefix(collection))
	return nil
}

// UpdateDocument merges fieldChanges into an existing document. The target
// must exist: the check reads the remote, not the cache, and a missing
// document fails with ErrNotFound. On success the cache entry is invalidated
// rather than repopulated, forcing the next read to fetch the merged state.
func (s *Store) UpdateDocument(ctx context.Context, collection, id string, fieldChanges map[string]any) error {
	_, err := retry.DoValue(ctx, s.retry, func(ctx context.Context) (Document, error) {
		d, err := s.remote.Get(ctx, collection, id)
		return d, classify(err)
	})
	if err != nil {
		return err
	}

	if err := s.remote.UpdateFields(ctx, collection, id, fieldChanges); err != nil {
		return err
	}
	s.cache.Remove(cache.DocumentKey(collection, id))
	s.cache.RemoveByPrefix(cache.QueryPrefix(collection))
	return nil
}

// DeleteCollection enumerates the collection and deletes every document as
// one atomic batch. An already empty collection is a no-op, not an error.
func (s *Store) DeleteCollection(ctx context.Context, collection string) error {
	docs, err := retry.DoValue(ctx, s.retry, func(ctx context.Context) ([]Document, error) {
		ds, err := s.remote.All(ctx, collection)
		return ds, classify(err)
	})
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	mutations := make([]Mutation, 0, len(docs))
	for _, doc := range docs {
		mutations = append(mutations, Mutation{
			Kind:       MutationDelete,
			Collection: collection,
			ID:         doc.ID,
		})
	}
	err = s.remote.ApplyBatch(ctx, mutations)
	s.invalidateBatched(mutations, err)
	return err
}

// PerformBatch exposes a batch handle to body; every mutation issued against
// it is committed in one atomic remote batch when body returns nil. A body
// error abandons the batch without touching the remote. If the transport
// cannot commit atomically, a PartialBatchError reports exactly what
// committed.
func (s *Store) PerformBatch(ctx context.Context, body func(b *Batch) error) error {
	b := &Batch{}
	if err := body(b); err != nil {
		return err
	}
	if len(b.mutations) == 0 {
		return nil
	}
	err := s.remote.ApplyBatch(ctx, b.mutations)
	s.invalidateBatched(b.mutations, err)
	return err
}

// invalidateBatched clears cache entries touched by a batch. On full
// failure nothing committed and the cache is left alone; on success or
// partial failure every touched key is cleared, since we cannot tell which
// cached values are now stale.
func (s *Store) invalidateBatched(mutations []Mutation, err error) {
	var partial *PartialBatchError
	if err != nil && !errors.As(err, &partial) {
		return
	}
	collections := make(map[string]struct{})
	for _, m := range mutations {
		if m.ID != "" {
			s.cache.Remove(cache.DocumentKey(m.Collection, m.ID))
		}
		collections[m.Collection] = struct{}{}
	}
	for c := range collections {
		s.cache.RemoveByPrefix(cache.QueryPrefix(c))
	}
}
