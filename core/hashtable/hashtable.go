package hashtable

const (
	unused  = -1
	noEntry = -1

	hashMask = 0x7fffffff
)

type slot[E any] struct {
	next     int
	hashCode int
	value    E
}

// Hashtable stores entries of type E keyed by the equality and hash functions
// given to New.
type Hashtable[E any] struct {
	equal func(a, b *E) bool
	hash  func(e *E) uint32

	buckets []int
	entries []slot[E]

	count     int
	freeEntry int
	nextEntry int
}

// New creates a table sized for at least initialCapacity entries. A capacity
// of zero is treated as one.
func New[E any](equal func(a, b *E) bool, hash func(e *E) uint32, initialCapacity int) *Hashtable[E] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}

	t := &Hashtable[E]{equal: equal, hash: hash}
	t.init(NextPrime(initialCapacity))
	return t
}

func (t *Hashtable[E]) init(size int) {
	t.buckets = make([]int, size)
	for i := range t.buckets {
		t.buckets[i] = noEntry
	}
	t.entries = make([]slot[E], size)
	t.count = 0
	t.freeEntry = noEntry
	t.nextEntry = 0
}

// Count returns the number of stored entries.
func (t *Hashtable[E]) Count() int {
	return t.count
}

// Capacity returns the current bucket count.
func (t *Hashtable[E]) Capacity() int {
	return len(t.buckets)
}

func (t *Hashtable[E]) hashOf(e *E) int {
	return int(t.hash(e) & hashMask)
}

func (t *Hashtable[E]) bucketOf(hashCode int) int {
	return hashCode % len(t.buckets)
}

func (t *Hashtable[E]) lookup(e *E, hashCode int) int {
	for i := t.buckets[t.bucketOf(hashCode)]; i != noEntry; i = t.entries[i].next {
		if t.entries[i].hashCode == hashCode && t.equal(&t.entries[i].value, e) {
			return i
		}
	}
	return noEntry
}

// Find returns the stored entry equal to partial, or nil. Only the fields
// used by the equality and hash functions need to be set on partial.
func (t *Hashtable[E]) Find(partial *E) *E {
	if i := t.lookup(partial, t.hashOf(partial)); i != noEntry {
		return &t.entries[i].value
	}
	return nil
}

// Add inserts entry. If an equal entry exists it returns nil and false and
// leaves the table unchanged.
func (t *Hashtable[E]) Add(entry E) (*E, bool) {
	hashCode := t.hashOf(&entry)
	if t.lookup(&entry, hashCode) != noEntry {
		return nil, false
	}
	return t.insert(entry, hashCode), true
}

// AddOrGet inserts entry unless an equal one exists. It returns the stored
// entry and whether it was added by this call.
func (t *Hashtable[E]) AddOrGet(entry E) (*E, bool) {
	hashCode := t.hashOf(&entry)
	if i := t.lookup(&entry, hashCode); i != noEntry {
		return &t.entries[i].value, false
	}
	return t.insert(entry, hashCode), true
}

func (t *Hashtable[E]) insert(entry E, hashCode int) *E {
	var index int
	if t.freeEntry != noEntry {
		index = t.freeEntry
		t.freeEntry = t.entries[index].next
	} else {
		if t.nextEntry == len(t.entries) {
			t.resize(NextPrime(len(t.buckets) * 2))
		}
		index = t.nextEntry
		t.nextEntry++
	}

	bucket := t.bucketOf(hashCode)
	t.entries[index] = slot[E]{
		next:     t.buckets[bucket],
		hashCode: hashCode,
		value:    entry,
	}
	t.buckets[bucket] = index
	t.count++

	return &t.entries[index].value
}

func (t *Hashtable[E]) resize(size int) {
	entries := make([]slot[E], size)
	copy(entries, t.entries[:t.nextEntry])
	t.entries = entries

	t.buckets = make([]int, size)
	for i := range t.buckets {
		t.buckets[i] = noEntry
	}

	// Free-list slots keep their links; only live slots are rechained.
	for i := 0; i < t.nextEntry; i++ {
		if t.entries[i].hashCode == unused {
			continue
		}
		bucket := t.bucketOf(t.entries[i].hashCode)
		t.entries[i].next = t.buckets[bucket]
		t.buckets[bucket] = i
	}
}

// Remove deletes the entry equal to partial and reports whether one existed.
func (t *Hashtable[E]) Remove(partial *E) bool {
	hashCode := t.hashOf(partial)
	bucket := t.bucketOf(hashCode)

	prev := noEntry
	for i := t.buckets[bucket]; i != noEntry; i = t.entries[i].next {
		if t.entries[i].hashCode != hashCode || !t.equal(&t.entries[i].value, partial) {
			prev = i
			continue
		}

		if prev == noEntry {
			t.buckets[bucket] = t.entries[i].next
		} else {
			t.entries[prev].next = t.entries[i].next
		}

		var zero E
		t.entries[i].value = zero
		t.entries[i].hashCode = unused
		t.entries[i].next = t.freeEntry
		t.freeEntry = i
		t.count--
		return true
	}

	return false
}

// Clear removes every entry. The bucket count is kept.
func (t *Hashtable[E]) Clear() {
	t.init(len(t.buckets))
}

// Enumerate returns the entry at or after *cursor and advances the cursor.
// Start with a cursor of zero. The table must not be mutated while a cursor
// is in use.
func (t *Hashtable[E]) Enumerate(cursor *int) (*E, bool) {
	for *cursor < t.nextEntry {
		i := *cursor
		*cursor++
		if t.entries[i].hashCode != unused {
			return &t.entries[i].value, true
		}
	}
	return nil, false
}

// Range calls fn for every entry until fn returns false.
func (t *Hashtable[E]) Range(fn func(e *E) bool) {
	cursor := 0
	for e, ok := t.Enumerate(&cursor); ok; e, ok = t.Enumerate(&cursor) {
		if !fn(e) {
			return
		}
	}
}
