package cache

import "time"

// Store is a TTL object cache. Entries expire individually: a value stored
// with ttl d is visible to Get for strictly less than d after the Set and
// absent from then on. Implementations must be safe for concurrent use and
// must never block on I/O; a Set that has returned is visible to every Get
// that starts after it returns.
type Store interface {
	// Get returns the value for key if an entry exists and has not expired.
	// An expired entry counts as a miss. A miss is not an error.
	Get(key string) (any, bool)

	// Set unconditionally replaces any existing entry for key. The entry is
	// owned by the cache from this point; callers must not mutate value.
	Set(key string, value any, ttl time.Duration)

	// Remove drops the entry for key, expired or not.
	Remove(key string)

	// RemoveByPrefix drops every entry whose key starts with prefix. Used to
	// invalidate all cached query results for a collection after a write.
	RemoveByPrefix(prefix string)

	// Clear drops every entry.
	Clear()
}

// GetTyped returns the cached value for key as T. A stored value of a
// different dynamic type counts as a miss; the entry is left in place for
// callers of the matching type.
func GetTyped[T any](s Store, key string) (T, bool) {
	v, ok := s.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, false
	}
	return typed, true
}
