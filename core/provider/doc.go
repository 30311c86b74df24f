// Package provider implements the update engine that mirrors a live,
// enumerable set of OS entities into a queryable cache.
//
// A Provider is built from an Adapter that knows how to enumerate one kind of
// entity (processes, threads, connections) and how to turn a raw record into
// a tracked value. Every call to Update runs one cycle; a caller-driven
// cadence (see Run) turns that into a continuously converging mirror.
//
// # Cycle
//
// Each cycle moves through five phases, always on the caller's goroutine:
//
//  1. Enumerate: ask the adapter for the current records. On error the cycle
//     is aborted before anything is mutated or notified.
//  2. Diff-Remove: under the shared lock, collect items whose key vanished or
//     whose SameEntity check fails (identifier reuse). Raise Removed for each
//     while it is still valid, then unlink them all under the exclusive lock.
//  3. Drain-Enrichment: flush the completed-task stack filled by workers and
//     merge each result into its item. Stage N+1 is only queued after stage N
//     has been merged.
//  4. Diff-Add/Update: create items for new keys and queue their first stage
//     (on the very first cycle stage 1 runs inline so the initial snapshot is
//     already enriched). Existing items get their raw fields and delta
//     counters refreshed; Modified is raised when the adapter reports a change
//     or a merge touched the item since the last cycle.
//  5. Notify: raise Updated once with the cycle number.
//
// Removed notifications always precede Added notifications of the same cycle,
// so an identifier that was reused is seen as remove-then-add.
//
// # Ownership
//
// Items are reference counted through core/object. The registry owns one
// reference, every queued enrichment task owns one, and Lookup/Snapshot hand
// out one to the caller. Releasing the last reference runs the adapter's
// Release hook if it implements Releaser.
//
// # Concurrency
//
// Only the update goroutine mutates items and the registry, and it does so
// under the exclusive side of a FIFO-fair QueuedLock. Readers use Enumerate,
// Lookup or Item.Load, which take the shared side. Workers never touch items:
// they receive a copy of the value and return their result through a
// lock-free stack.
//
// # Usage
//
//	p := provider.New[int32, process.Record, process.Process](adapter, queue, cfg, logger)
//	sub := p.Subscribe(view)
//	defer sub.Close()
//
//	go p.Run(ctx)
//
//	if ref, ok := p.Lookup(4); ok {
//	    fmt.Println(ref.Value().Load().Name)
//	    ref.Dereference()
//	}
package provider
