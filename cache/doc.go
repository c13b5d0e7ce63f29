// Package cache provides the caching contracts shared by the storefront data core.
//
// # Overview
//
// Two caching disciplines live behind the interfaces exported here:
//
//   - Store: a TTL object cache with explicit control over population and
//     invalidation. The document store façade uses it for write-through
//     population after saves and targeted invalidation after mutations.
//   - CacheService: a read-through cache for read-mostly data (the product
//     catalog), where the cache itself owns fetching and stampede protection.
//
// The package also exports the key building strategy. Keys are built from a
// method or entity name plus its arguments, joined by KeySeparator, so that
// distinct logical queries never collide and related keys share a prefix.
// Prefix sharing is what makes RemoveByPrefix-based invalidation possible:
// a write to a collection can clear every query result cached for it without
// knowing the individual filter values.
//
// # Key Structure
//
//	doc::<collection>::<id>                  single document reads
//	query::<collection>::<field>::<value>    filtered collection reads
//
// # Choosing Between Store and CacheService
//
// Use Store when the caller needs to decide what gets cached and when it is
// invalidated (documents that are also written through this process). Use
// CacheService when reads dominate and the source of truth changes rarely
// (catalog data maintained by a separate back office).
//
// Implementations of both interfaces live in internal/cacheinfra and are
// constructed by the pkg/di container; nothing in this package holds state.
package cache
