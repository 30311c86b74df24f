package provider

import (
	"context"
	"time"
)

// Adapter binds the engine to one kind of entity. K is the identity key, R the
// raw enumeration record and V the tracked value.
type Adapter[K comparable, R any, V any] interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Enumerate returns the current set of records.
	Enumerate(ctx context.Context) ([]R, error)

	// Key extracts the identity key of a record.
	Key(rec *R) K

	// Hash hashes a key for the registry.
	Hash(key K) uint32

	// SameEntity reports whether rec still describes the entity tracked by
	// value. Returning false makes the engine treat the key as reused: the
	// old item is removed and a new one added in the same cycle.
	SameEntity(value *V, rec *R) bool

	// NewValue builds the value of a newly seen entity. Delta counters start
	// with a zero delta.
	NewValue(key K, rec *R, cycle *Cycle) V

	// Update refreshes raw fields and delta counters from rec and reports
	// whether anything a consumer would notice changed.
	Update(value *V, rec *R, cycle *Cycle) bool

	// Stages returns the number of enrichment stages. Zero disables
	// enrichment.
	Stages() int

	// Enrich runs one enrichment stage on a worker. It must not retain req.
	Enrich(ctx context.Context, req EnrichRequest[K, V]) (any, error)

	// Merge applies a stage result to value on the update goroutine. err is
	// the error returned by Enrich; the adapter falls back to defaults.
	Merge(value *V, stage int, result any, err error)
}

// CycleBeginner is implemented by adapters that need cycle-wide state (such as
// system CPU totals) or want to inject synthetic records before diffing.
type CycleBeginner[R any] interface {
	BeginCycle(ctx context.Context, cycle *Cycle, records []R) ([]R, error)
}

// CycleEnder is implemented by adapters that post-process a finished cycle.
type CycleEnder interface {
	EndCycle(cycle *Cycle)
}

// Releaser is implemented by adapters that free resources held by a value
// when the last reference to its item is released.
type Releaser[V any] interface {
	Release(value *V)
}

// Cycle describes the update cycle in progress.
type Cycle struct {
	// Number starts at 1 and increments for every completed cycle.
	Number uint64
	// Time is when the cycle started.
	Time time.Time
	// First is set on the provider's first cycle.
	First bool
	// Data carries adapter state set in BeginCycle.
	Data any
}

// EnrichRequest is what a worker sees of an item.
type EnrichRequest[K comparable, V any] struct {
	// Stage is the 1-based stage number.
	Stage int
	// Key identifies the item.
	Key K
	// Value is a copy of the item's value taken when the stage was queued.
	Value V
	// Terminating reports whether the provider is shutting down; long
	// enrichments should poll it and give up early.
	Terminating func() bool
}
