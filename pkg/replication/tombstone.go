// Package replication holds the in-memory coordination primitives that make
// repeated and concurrent application of replicated object writes safe: a
// bounded idempotency window over recently seen object ids, a concurrent
// memoization cache, the per-repository replication identity, and the node
// replicator configuration.
package replication

import (
	"container/list"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/WANdisco/replistore/pkg/object"
)

// DefaultTombstoneCapacity bounds the recent-write window when no explicit
// capacity is configured.
const DefaultTombstoneCapacity = 20000

// TombstoneCapacityEnv names the environment variable that overrides
// DefaultTombstoneCapacity.
const TombstoneCapacityEnv = "REPLISTORE_TOMBSTONES"

// Tombstone is a bounded, recency-ordered set of object ids used to
// recognize writes that were already applied on this node. Adding an id
// that is present refreshes its recency without growing the window; adding
// a new id to a full window evicts the least recently touched entry.
// Membership answers reflect the current window only, never full history.
// All methods are safe for concurrent use.
type Tombstone struct {
	capacity int

	mu    sync.Mutex
	order *list.List // front is most recent
	index map[object.ID]*list.Element
}

// NewTombstone returns an empty window holding at most capacity ids.
// Panics if capacity < 1.
func NewTombstone(capacity int) *Tombstone {
	if capacity < 1 {
		panic(fmt.Sprintf("replication: tombstone capacity %d, need at least 1", capacity))
	}
	return &Tombstone{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[object.ID]*list.Element),
	}
}

// NewTombstoneFromList returns a window seeded from a comma-separated list
// of hex ids, replayed oldest-first through the same insertion logic used
// at runtime, so the last listed id becomes the head. A list with any
// unparseable token is treated as unusable: the whole list is discarded
// and the window starts empty. Construction never fails.
func NewTombstoneFromList(capacity int, persisted string) *Tombstone {
	t := NewTombstone(capacity)
	if strings.TrimSpace(persisted) == "" {
		return t
	}
	tokens := strings.Split(persisted, ",")
	ids := make([]object.ID, 0, len(tokens))
	for _, tok := range tokens {
		id, err := object.Parse(strings.TrimSpace(tok))
		if err != nil {
			glog.Warningf("discarding persisted tombstone list: %v", err)
			return t
		}
		ids = append(ids, id)
	}
	t.AddAll(ids)
	return t
}

// Add records id as the most recently seen entry.
func (t *Tombstone) Add(id object.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if el, ok := t.index[id]; ok {
		t.order.MoveToFront(el)
		return
	}
	t.index[id] = t.order.PushFront(id)
	if t.order.Len() > t.capacity {
		oldest := t.order.Back()
		t.order.Remove(oldest)
		delete(t.index, oldest.Value.(object.ID))
	}
}

// AddAll records each id in order. It is equivalent to calling Add once
// per element: every intermediate state is observable by concurrent
// readers and evictions happen incrementally.
func (t *Tombstone) AddAll(ids []object.ID) {
	for _, id := range ids {
		t.Add(id)
	}
}

// PeekHead returns the most recently added id; ok is false when the
// window is empty.
func (t *Tombstone) PeekHead() (id object.ID, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	front := t.order.Front()
	if front == nil {
		return "", false
	}
	return front.Value.(object.ID), true
}

// Contains reports whether id is in the current window.
func (t *Tombstone) Contains(id object.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.index[id]
	return ok
}

// Touch reports whether id is in the window and, when it is, refreshes its
// recency as if it had just been added. A miss leaves the window unchanged.
func (t *Tombstone) Touch(id object.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	el, ok := t.index[id]
	if ok {
		t.order.MoveToFront(el)
	}
	return ok
}

// Len returns the number of ids currently in the window.
func (t *Tombstone) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len()
}

// PersistedList renders the window in the comma-separated form
// NewTombstoneFromList accepts, oldest id first, so seeding a fresh
// window from it reproduces the current recency order. An empty
// window renders as "".
func (t *Tombstone) PersistedList() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, t.order.Len())
	for el := t.order.Back(); el != nil; el = el.Prev() {
		ids = append(ids, string(el.Value.(object.ID)))
	}
	return strings.Join(ids, ",")
}

// Capacity returns the maximum window size.
func (t *Tombstone) Capacity() int { return t.capacity }

// CapacityFromEnv returns the window capacity named by TombstoneCapacityEnv,
// falling back to DefaultTombstoneCapacity when the variable is unset or
// not a positive integer.
func CapacityFromEnv() int {
	raw := os.Getenv(TombstoneCapacityEnv)
	if raw == "" {
		return DefaultTombstoneCapacity
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		glog.Warningf("ignoring %s=%q: not a positive integer", TombstoneCapacityEnv, raw)
		return DefaultTombstoneCapacity
	}
	return n
}
