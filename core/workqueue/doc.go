// Package workqueue implements the bounded worker pool that runs enrichment
// work off the update loop.
//
// A Queue starts with MinimumWorkers goroutines and spawns more on demand up
// to MaximumWorkers. A worker that sees no work for IdleTimeout exits, unless
// that would take the pool below the minimum. Items are plain functions; the
// pool gives no ordering guarantee between them.
//
// # Failure Handling
//
// Enqueue never fails while the queue is open. If no worker can be spawned
// the item waits in the queue for a running worker. A panic inside an item is
// recovered, logged and counted; the worker keeps running.
//
// # Configuration
//
// Defaults come from struct tags and can be overridden through the
// environment (e.g. WORKQUEUE_MAX_WORKERS=8).
//
// # Usage
//
//	q := workqueue.New(cfg.WorkQueue, logger)
//	defer q.Close(context.Background())
//
//	q.Enqueue(func(ctx context.Context) {
//	    enrich(ctx, item)
//	})
package workqueue
