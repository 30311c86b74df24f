package provider

import (
	"sync/atomic"
	"time"

	"system-mirror/core/syncutil"
)

// Item is a tracked entity. It is always reached through an
// *object.Ref[Item[K, V]] and stays readable while a reference is held, even
// after it was removed from the registry.
type Item[K comparable, V any] struct {
	key   K
	value V

	lock       *syncutil.QueuedLock
	addedCycle uint64
	addedAt    time.Time
	removedAt  time.Time

	removed       atomic.Bool
	justProcessed atomic.Bool
	stage1        *syncutil.Event
}

// Key returns the item's identity key.
func (i *Item[K, V]) Key() K {
	return i.key
}

// Value returns the live value. Callers must be inside Enumerate or an
// observer callback; elsewhere use Load.
func (i *Item[K, V]) Value() *V {
	return &i.value
}

// Load returns a copy of the value taken under the shared lock.
func (i *Item[K, V]) Load() V {
	i.lock.RLock()
	defer i.lock.RUnlock()
	return i.value
}

// AddedCycle returns the number of the cycle that added the item.
func (i *Item[K, V]) AddedCycle() uint64 {
	return i.addedCycle
}

// AddedAt returns when the item was first seen.
func (i *Item[K, V]) AddedAt() time.Time {
	return i.addedAt
}

// Removed reports whether the item has left the registry.
func (i *Item[K, V]) Removed() bool {
	return i.removed.Load()
}

// RemovedAt returns when the item left the registry, or the zero time.
func (i *Item[K, V]) RemovedAt() time.Time {
	i.lock.RLock()
	defer i.lock.RUnlock()
	return i.removedAt
}

// Stage1 is set once the first enrichment stage has been merged.
func (i *Item[K, V]) Stage1() *syncutil.Event {
	return i.stage1
}
