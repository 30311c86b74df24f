// Package object provides reference-counted handles for items shared between
// the update loop, worker goroutines and readers.
//
// Every object belongs to a Type. The type carries the destructor that runs
// when the last reference is released, and keeps live/total counters that are
// exported for diagnostics.
//
// # Lifecycle
//
// New returns a handle holding one reference. Every holder that keeps the
// handle beyond the current call takes its own reference with Reference and
// gives it back with Dereference. When the count drops to zero the destructor
// runs exactly once and the value is cleared. Referencing a destroyed object
// panics: it always means a holder released a reference it did not own.
//
// # Usage
//
//	typ := object.NewType("process", func(v any) { v.(*Process).Close() })
//	ref, err := object.New(typ, Process{PID: 4})
//	if err != nil {
//	    return err
//	}
//	ref.Reference()   // handed to a worker
//	ref.Dereference() // worker done
//	ref.Dereference() // owner done, destructor runs
package object
