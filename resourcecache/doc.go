// Package resourcecache fetches and caches binary resources (product photos
// and other assets addressed by a URL-like string) with cost-bounded
// eviction and de-duplication of concurrent identical fetches.
//
// # Coalescing
//
// Several on-screen cells routinely request the same image at once. Load
// keeps an in-flight registration per address: the first caller starts the
// fetch, every concurrent caller for the same address awaits the same
// shared result, and exactly one outbound request is issued. The
// registration is removed exactly once, immediately after completion,
// whether the fetch succeeded, failed or was cancelled.
//
// # Eviction
//
// Cached payloads live in a ristretto cache whose admission and eviction
// approximate recency. Two independent caps bound it: a maximum aggregate
// cost (bytes) enforced by ristretto directly, and a maximum entry count
// enforced by charging every entry at least MaxTotalCost/MaxEntries.
//
// # Failure and Cancellation
//
// A failed fetch resolves as "no resource" to every waiter; callers render
// a placeholder. It is never propagated as an error from Load. Invalidate
// cancels any in-flight fetch for an address and evicts its cached entry;
// a cancelled fetch's eventual result is discarded and never populates the
// cache.
//
// The cache is internally synchronized and independent of the document
// cache; no lock spans both.
package resourcecache
