// Package monitor runs a set of providers against one shared worker pool.
//
// Each provider gets its own update goroutine (through errgroup) while all
// enrichment work lands on the monitor's workqueue. Stop terminates the
// providers first and closes the queue last, aggregating failures with
// go-multierror.
package monitor
