// Package hashtable implements an open-addressing hashtable with index-linked
// chains and prime bucket counts.
//
// Entries live in one contiguous slice. Each bucket holds the index of the
// first entry in its chain, and each entry holds the index of the next one,
// so the table never allocates per entry. Removed slots go on a free list and
// are reused before the slice is extended. When every slot is in use the
// table grows to the next prime at least twice the current bucket count and
// the chains are rebuilt.
//
// The table is not safe for concurrent use. Callers that share it wrap it in
// their own lock (see core/provider).
//
// # Pointer Stability
//
// Pointers returned by Add, AddOrGet, Find and Enumerate point into the entry
// slice and are invalidated by the next Add that triggers a resize. Store
// pointer-typed entries when references must outlive a mutation.
//
// # Usage
//
//	type entry struct {
//	    Key   string
//	    Value int
//	}
//
//	table := hashtable.New(
//	    func(a, b *entry) bool { return a.Key == b.Key },
//	    func(e *entry) uint32 { return hashtable.HashString(e.Key) },
//	    16,
//	)
//	table.Add(entry{Key: "a", Value: 1})
//	if e := table.Find(&entry{Key: "a"}); e != nil {
//	    fmt.Println(e.Value)
//	}
//
//	cursor := 0
//	for e, ok := table.Enumerate(&cursor); ok; e, ok = table.Enumerate(&cursor) {
//	    fmt.Println(e.Key)
//	}
package hashtable
