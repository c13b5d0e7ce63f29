// Package cacheinfra provides the cache implementations behind the cache
// package contracts: an in-process TTL object cache for the document store
// façade and a sturdyc-backed read-through service for catalog data.
package cacheinfra

import (
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// entry is a stored value plus its expiry bookkeeping. Entries are replaced
// wholesale on Set, never mutated in place.
type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

func (e entry) valid(now time.Time) bool {
	return now.Sub(e.storedAt) < e.ttl
}

// MemoryStore implements cache.Store on a sharded concurrent map. Expired
// entries are purged on read; there is no background sweeper, so an entry
// that is never read again is reclaimed only when overwritten or when the
// whole store is cleared.
type MemoryStore struct {
	entries *xsync.MapOf[string, entry]
	now     func() time.Time
}

// NewMemoryStore creates an empty TTL object cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: xsync.NewMapOf[string, entry](),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(key string) (any, bool) {
	e, ok := s.entries.Load(key)
	if !ok {
		return nil, false
	}
	if e.valid(s.now()) {
		return e.value, true
	}
	// Purge only the exact entry observed expired; a Set racing in between
	// may have replaced it with a fresh one that must survive.
	s.entries.Compute(key, func(cur entry, loaded bool) (entry, bool) {
		if loaded && cur.storedAt.Equal(e.storedAt) && cur.ttl == e.ttl {
			return cur, true
		}
		return cur, !loaded
	})
	return nil, false
}

func (s *MemoryStore) Set(key string, value any, ttl time.Duration) {
	s.entries.Store(key, entry{value: value, storedAt: s.now(), ttl: ttl})
}

func (s *MemoryStore) Remove(key string) {
	s.entries.Delete(key)
}

func (s *MemoryStore) RemoveByPrefix(prefix string) {
	s.entries.Range(func(key string, _ entry) bool {
		if strings.HasPrefix(key, prefix) {
			s.entries.Delete(key)
		}
		return true
	})
}

func (s *MemoryStore) Clear() {
	s.entries.Clear()
}

// Len reports the number of entries currently held, expired ones included.
func (s *MemoryStore) Len() int {
	return s.entries.Size()
}
