// Package callback implements an ordered multicast bus whose registrations
// can be removed at any time, including from inside a running callback.
//
// Invoke walks the registrations in registration order. The bus lock is only
// held while stepping from one registration to the next and is released while
// a callback runs, so callbacks are free to Register and Unregister. A
// registration flagged as unregistering is skipped by every walk that reaches
// it after the flag is set.
//
// # Usage
//
//	var bus callback.Bus[Event]
//	reg := bus.Register(func(ev Event, ctx any) {
//	    ctx.(*View).Apply(ev)
//	}, view)
//	bus.Invoke(Event{Kind: "added"})
//	bus.Unregister(reg)
package callback
