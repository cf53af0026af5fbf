package replication

import "sync"

// Cache is a concurrent key to value map used to memoize per-object
// replication metadata. It is a thin typed layer over sync.Map: operations
// on independent keys never contend and PutIfAbsent is atomic per key.
// ContainsValue, Size and Clear scan the map and may observe a snapshot
// that trails concurrent writers.
//
// Values are treated as immutable once inserted; replace an entry with Put
// rather than mutating a retrieved value.
type Cache[K comparable, V comparable] struct {
	m sync.Map
}

// NewCache returns an empty cache.
func NewCache[K, V comparable]() *Cache[K, V] {
	return &Cache[K, V]{}
}

// Put unconditionally maps k to v.
func (c *Cache[K, V]) Put(k K, v V) {
	c.m.Store(k, v)
}

// PutIfAbsent maps k to v only when k has no value yet. It returns the
// value that ended up mapped and whether it was already present; exactly
// one of any set of racing first writers stores its value.
func (c *Cache[K, V]) PutIfAbsent(k K, v V) (actual V, loaded bool) {
	got, loaded := c.m.LoadOrStore(k, v)
	return got.(V), loaded
}

// Get returns the value mapped to k.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	got, ok := c.m.Load(k)
	if !ok {
		var zero V
		return zero, false
	}
	return got.(V), true
}

// ContainsKey reports whether k has a value.
func (c *Cache[K, V]) ContainsKey(k K) bool {
	_, ok := c.m.Load(k)
	return ok
}

// ContainsValue reports whether any key maps to v. This is a linear scan,
// not an indexed lookup; keep it off hot paths.
func (c *Cache[K, V]) ContainsValue(v V) bool {
	found := false
	c.m.Range(func(_, got any) bool {
		if got.(V) == v {
			found = true
			return false
		}
		return true
	})
	return found
}

// Remove deletes the value mapped to k, if any.
func (c *Cache[K, V]) Remove(k K) {
	c.m.Delete(k)
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.m.Range(func(k, _ any) bool {
		c.m.Delete(k)
		return true
	})
}

// Size counts the current entries.
func (c *Cache[K, V]) Size() int {
	n := 0
	c.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
