// Package syncutil contains the synchronization primitives shared by the
// provider engine and its consumers.
//
// # QueuedLock
//
// A reader/writer lock that grants access in arrival order. Readers that
// arrive while a writer is queued wait behind it, so a steady stream of
// readers cannot starve the update loop. Consecutive readers at the head of
// the queue are admitted together.
//
// # Stack
//
// A lock-free LIFO used to hand completed work from worker goroutines back to
// the update loop. Push never blocks; Flush detaches every entry in one swap.
//
// # Event
//
// A one-shot waitable flag. Testing it is a single atomic load, and the wait
// channel is only allocated when somebody actually blocks on it, so events
// can be embedded in every tracked item for free.
//
// # Usage
//
//	var lock syncutil.QueuedLock
//	lock.RLock()
//	defer lock.RUnlock()
//
//	var done syncutil.Stack[Result]
//	done.Push(Result{})
//	for _, r := range done.Flush() {
//	    merge(r)
//	}
//
//	ev := syncutil.NewEvent()
//	go func() { ev.Set() }()
//	_ = ev.Wait(ctx)
package syncutil
