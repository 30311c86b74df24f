package provider

import "system-mirror/core/object"

// Lookup returns a referenced handle to the item with key. The caller must
// Dereference it.
func (p *Provider[K, R, V]) Lookup(key K) (*object.Ref[Item[K, V]], bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	e := p.table.Find(&entry[K, V]{key: key})
	if e == nil {
		return nil, false
	}
	return e.ref.Reference(), true
}

// Enumerate calls fn for every item under the shared lock until fn returns
// false. fn may read item values directly but must not call back into the
// provider.
func (p *Provider[K, R, V]) Enumerate(fn func(item *Item[K, V]) bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	p.table.Range(func(e *entry[K, V]) bool {
		return fn(e.ref.Value())
	})
}

// Snapshot returns referenced handles to every item. The caller must
// Dereference each of them; Release does that for the whole slice.
func (p *Provider[K, R, V]) Snapshot() []*object.Ref[Item[K, V]] {
	p.lock.RLock()
	defer p.lock.RUnlock()

	refs := make([]*object.Ref[Item[K, V]], 0, p.table.Count())
	p.table.Range(func(e *entry[K, V]) bool {
		refs = append(refs, e.ref.Reference())
		return true
	})
	return refs
}

// Count returns the number of registered items.
func (p *Provider[K, R, V]) Count() int {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.table.Count()
}

// Release dereferences every handle in refs.
func Release[T any](refs []*object.Ref[T]) {
	for _, ref := range refs {
		ref.Dereference()
	}
}
