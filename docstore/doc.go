// Package docstore is the typed entry point for remote document CRUD, batch
// mutation and change subscription, with caching and retry composed in.
//
// # Overview
//
// The Store wraps a Remote (the raw document database transport) behind
// typed operations. Reads consult the TTL object cache first and only go
// remote on a miss, under the retry policy; writes always go through to the
// remote and keep the cache consistent afterwards:
//
//   - SaveDocument populates the cache for the saved document (write-through)
//     so an immediately following read needs no round trip.
//   - UpdateDocument and DeleteDocument invalidate the cached entry after the
//     remote confirms, forcing the next read to refetch.
//   - Every write clears the cached query results for its collection, since
//     any filtered read may now be stale.
//
// Read failures after retry exhaustion propagate as typed errors; the cache
// is never consulted as a stale fallback. Writes are not retried: callers
// that need retried writes wrap them in a retry.Policy themselves.
//
// # Typed Operations
//
// Document payloads are opaque to the store. A Codec[T] supplied per call
// translates between the caller's type and raw document fields. Since Go
// methods cannot have type parameters, the typed operations are package-level
// generic functions over a *Store:
//
//	product, err := docstore.FetchDocument(ctx, store, codec, "products", "p1")
//	items, err := docstore.FetchDocuments(ctx, store, codec, "items", "ownerId", uid)
//	id, err := docstore.SaveDocument(ctx, store, codec, "items", "", item)
//
// # Subscriptions
//
// ObserveCollection opens exactly one live registration against a collection
// and re-decodes the full document set on every remote change, emitting it
// as one consolidated snapshot. A document that fails to decode terminates
// the stream with a DecodeError rather than being dropped: consumers derive
// aggregates from snapshots, and a silently missing document would corrupt
// them invisibly. A Watch delivers to a single consumer; repositories that
// serve multiple observers fan snapshots out themselves (see the cart
// package).
//
// Owners must Stop a Watch on teardown; an abandoned Watch leaks a live
// remote registration.
//
// # Consistency
//
// Cache invalidation happens only after a confirmed remote success, never
// before. This ordering narrows, but does not eliminate, the window in which
// a concurrent cache-repopulating read can resurrect a value the remote has
// already discarded; true exactly-once consistency would need transactional
// read-your-writes from the remote store.
package docstore
