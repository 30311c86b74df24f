package provider

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"system-mirror/core/callback"
	"system-mirror/core/hashtable"
	"system-mirror/core/metrics"
	"system-mirror/core/object"
	"system-mirror/core/syncutil"
	"system-mirror/core/workqueue"

	"go.uber.org/zap"
)

// Scheduler runs enrichment work. *workqueue.Queue satisfies it.
type Scheduler interface {
	Enqueue(item workqueue.Item) error
}

type entry[K comparable, V any] struct {
	key K
	ref *object.Ref[Item[K, V]]
}

type task[K comparable, V any] struct {
	ref    *object.Ref[Item[K, V]]
	stage  int
	result any
	err    error
}

// inflight counts running enrichment tasks.
type inflight struct {
	mu    sync.Mutex
	count int
	idle  chan struct{}
}

func (f *inflight) start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.count == 0 {
		f.idle = make(chan struct{})
	}
	f.count++
}

func (f *inflight) done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count--
	if f.count == 0 {
		close(f.idle)
	}
}

// drained returns a channel closed once no task is running.
func (f *inflight) drained() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.count == 0 {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return f.idle
}

// Provider mirrors the entities enumerated by its adapter.
type Provider[K comparable, R any, V any] struct {
	adapter   Adapter[K, R, V]
	scheduler Scheduler
	cfg       Config
	logger    *zap.Logger
	typ       *object.Type

	lock  syncutil.QueuedLock
	table *hashtable.Hashtable[entry[K, V]]

	completed syncutil.Stack[*task[K, V]]
	running   inflight
	bus       callback.Bus[Event[K, V]]

	cycleMu     sync.Mutex
	terminating atomic.Bool
	cycles      atomic.Uint64
	lastErr     atomic.Pointer[string]
	lastRun     atomic.Int64
}

// New creates a provider. Enrichment stages are queued on scheduler.
func New[K comparable, R any, V any](adapter Adapter[K, R, V], scheduler Scheduler, cfg Config, logger *zap.Logger) *Provider[K, R, V] {
	p := &Provider[K, R, V]{
		adapter:   adapter,
		scheduler: scheduler,
		cfg:       cfg,
		logger:    logger.Named("provider").With(zap.String("provider", adapter.Name())),
	}

	p.typ = object.NewType(adapter.Name(), func(v any) {
		item := v.(*Item[K, V])
		if r, ok := adapter.(Releaser[V]); ok {
			r.Release(&item.value)
		}
		item.stage1.Dereference()
	})
	p.typ.SetLimit(cfg.MaxItems)

	p.table = hashtable.New(
		func(a, b *entry[K, V]) bool { return a.key == b.key },
		func(e *entry[K, V]) uint32 { return adapter.Hash(e.key) },
		cfg.InitialCapacity,
	)

	return p
}

// Name returns the adapter name.
func (p *Provider[K, R, V]) Name() string {
	return p.adapter.Name()
}

// Type returns the object type of the provider's items.
func (p *Provider[K, R, V]) Type() *object.Type {
	return p.typ
}

// Update runs one cycle. See the package documentation for the phases.
func (p *Provider[K, R, V]) Update(ctx context.Context) error {
	if !p.cycleMu.TryLock() {
		return ErrCycleInProgress
	}
	defer p.cycleMu.Unlock()

	if p.terminating.Load() {
		return ErrTerminated
	}

	name := p.adapter.Name()
	start := time.Now()
	done := p.cycles.Load()
	cycle := &Cycle{Number: done + 1, Time: start, First: done == 0}

	records, err := p.enumerate(ctx, cycle)
	if err != nil {
		metrics.ProviderCycleErrors.WithLabelValues(name).Inc()
		msg := err.Error()
		p.lastErr.Store(&msg)
		return err
	}

	index := make(map[K]*R, len(records))
	for i := range records {
		key := p.adapter.Key(&records[i])
		if _, seen := index[key]; !seen {
			index[key] = &records[i]
		}
	}

	removed := p.removeStale(cycle, index)
	p.drainCompleted()
	added, modified := p.addOrUpdate(ctx, cycle, records, index)

	if e, ok := p.adapter.(CycleEnder); ok {
		e.EndCycle(cycle)
	}

	p.cycles.Store(cycle.Number)
	p.lastErr.Store(nil)
	p.lastRun.Store(start.UnixNano())
	p.publish(Event[K, V]{Kind: Updated, Cycle: cycle.Number})

	elapsed := time.Since(start)
	metrics.ProviderCycles.WithLabelValues(name).Inc()
	metrics.ProviderCycleSeconds.WithLabelValues(name).Observe(elapsed.Seconds())
	metrics.ProviderItems.WithLabelValues(name).Set(float64(p.Count()))

	p.logger.Debug("Update cycle finished",
		zap.Uint64("cycle", cycle.Number),
		zap.Int("records", len(records)),
		zap.Int("added", added),
		zap.Int("modified", modified),
		zap.Int("removed", removed),
		zap.Duration("elapsed", elapsed),
	)

	return nil
}

func (p *Provider[K, R, V]) enumerate(ctx context.Context, cycle *Cycle) ([]R, error) {
	records, err := p.adapter.Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: enumerate: %w", p.adapter.Name(), err)
	}

	if b, ok := p.adapter.(CycleBeginner[R]); ok {
		records, err = b.BeginCycle(ctx, cycle, records)
		if err != nil {
			return nil, fmt.Errorf("%s: begin cycle: %w", p.adapter.Name(), err)
		}
	}

	return records, nil
}

// removeStale runs the Diff-Remove phase and returns the number of removed
// items.
func (p *Provider[K, R, V]) removeStale(cycle *Cycle, index map[K]*R) int {
	var stale []*object.Ref[Item[K, V]]

	p.lock.RLock()
	p.table.Range(func(e *entry[K, V]) bool {
		rec, ok := index[e.key]
		if !ok || !p.adapter.SameEntity(&e.ref.Value().value, rec) {
			stale = append(stale, e.ref)
		}
		return true
	})
	p.lock.RUnlock()

	if len(stale) == 0 {
		return 0
	}

	p.lock.Lock()
	for _, ref := range stale {
		ref.Value().removedAt = cycle.Time
	}
	p.lock.Unlock()

	for _, ref := range stale {
		p.publish(Event[K, V]{Kind: Removed, Ref: ref, Cycle: cycle.Number})
	}

	p.lock.Lock()
	for _, ref := range stale {
		item := ref.Value()
		item.removed.Store(true)
		p.table.Remove(&entry[K, V]{key: item.key})
	}
	p.lock.Unlock()

	for _, ref := range stale {
		ref.Dereference()
	}

	return len(stale)
}

// drainCompleted runs the Drain-Enrichment phase.
func (p *Provider[K, R, V]) drainCompleted() {
	tasks := p.completed.Flush()
	if len(tasks) == 0 {
		return
	}

	name := p.adapter.Name()
	stages := p.adapter.Stages()
	chain := make([]bool, len(tasks))

	p.lock.Lock()
	for i, t := range tasks {
		item := t.ref.Value()
		if item.removed.Load() {
			continue
		}

		p.adapter.Merge(&item.value, t.stage, t.result, t.err)
		item.justProcessed.Store(true)
		if t.stage == 1 {
			item.stage1.Set()
		}
		chain[i] = t.stage < stages
	}
	p.lock.Unlock()

	for i, t := range tasks {
		outcome := "ok"
		if t.err != nil {
			outcome = "error"
			p.logger.Debug("Enrichment stage failed",
				zap.Int("stage", t.stage),
				zap.Any("key", t.ref.Value().key),
				zap.Error(t.err),
			)
		}
		metrics.ProviderEnrichments.WithLabelValues(name, strconv.Itoa(t.stage), outcome).Inc()

		if chain[i] {
			p.schedule(t.ref, t.stage+1)
		}
		t.ref.Dereference()
	}
}

// addOrUpdate runs the Diff-Add/Update phase and returns the number of added
// and modified items.
func (p *Provider[K, R, V]) addOrUpdate(ctx context.Context, cycle *Cycle, records []R, index map[K]*R) (int, int) {
	type change struct {
		kind EventKind
		ref  *object.Ref[Item[K, V]]
		rec  *R
	}

	stages := p.adapter.Stages()
	changes := make([]change, 0, len(records))

	// The update goroutine is the only writer, so it can read the table
	// without the lock.
	for i := range records {
		rec := &records[i]
		key := p.adapter.Key(rec)
		// Duplicate keys: the first record wins.
		if index[key] != rec {
			continue
		}

		if e := p.table.Find(&entry[K, V]{key: key}); e != nil {
			changes = append(changes, change{kind: Modified, ref: e.ref, rec: rec})
			continue
		}

		ref, err := p.newItem(ctx, cycle, key, rec)
		if err != nil {
			p.logger.Warn("Failed to create item", zap.Any("key", key), zap.Error(err))
			continue
		}
		changes = append(changes, change{kind: Added, ref: ref})
	}

	added, modified := 0, 0

	p.lock.Lock()
	for i := range changes {
		c := &changes[i]
		if c.kind == Added {
			p.table.Add(entry[K, V]{key: c.ref.Value().key, ref: c.ref})
			added++
			continue
		}

		item := c.ref.Value()
		changed := p.adapter.Update(&item.value, c.rec, cycle)
		if item.justProcessed.Swap(false) || changed {
			modified++
		} else {
			c.kind = 0
		}
	}
	p.lock.Unlock()

	for _, c := range changes {
		if c.kind == Added && stages > 0 {
			if cycle.First {
				if stages > 1 {
					p.schedule(c.ref, 2)
				}
			} else {
				p.schedule(c.ref, 1)
			}
		}
	}

	for _, c := range changes {
		if c.kind != 0 {
			p.publish(Event[K, V]{Kind: c.kind, Ref: c.ref, Cycle: cycle.Number})
		}
	}

	return added, modified
}

func (p *Provider[K, R, V]) newItem(ctx context.Context, cycle *Cycle, key K, rec *R) (*object.Ref[Item[K, V]], error) {
	ref, err := object.New(p.typ, Item[K, V]{})
	if err != nil {
		return nil, err
	}

	item := ref.Value()
	item.key = key
	item.lock = &p.lock
	item.addedCycle = cycle.Number
	item.addedAt = cycle.Time
	item.stage1 = syncutil.NewEvent()
	item.value = p.adapter.NewValue(key, rec, cycle)

	// The first snapshot is enriched inline so consumers start complete.
	if cycle.First && p.adapter.Stages() > 0 {
		result, err := p.runStage(ctx, EnrichRequest[K, V]{
			Stage:       1,
			Key:         key,
			Value:       item.value,
			Terminating: p.terminating.Load,
		})
		p.adapter.Merge(&item.value, 1, result, err)
		item.stage1.Set()
	}

	return ref, nil
}

// schedule queues stage for the item. The task holds its own reference.
func (p *Provider[K, R, V]) schedule(ref *object.Ref[Item[K, V]], stage int) {
	ref.Reference()
	item := ref.Value()
	req := EnrichRequest[K, V]{
		Stage:       stage,
		Key:         item.key,
		Value:       item.value,
		Terminating: p.terminating.Load,
	}

	err := p.scheduler.Enqueue(func(ctx context.Context) {
		p.running.start()
		defer p.running.done()

		if p.terminating.Load() {
			ref.Dereference()
			return
		}

		result, err := p.runStage(ctx, req)
		if p.terminating.Load() {
			ref.Dereference()
			return
		}
		p.completed.Push(&task[K, V]{ref: ref, stage: stage, result: result, err: err})

		// Terminate may have flushed between the check and the push.
		if p.terminating.Load() {
			p.discardCompleted()
		}
	})
	if err != nil {
		ref.Dereference()
		p.logger.Warn("Failed to queue enrichment", zap.Int("stage", stage), zap.Error(err))
	}
}

func (p *Provider[K, R, V]) discardCompleted() {
	for _, t := range p.completed.Flush() {
		t.ref.Dereference()
	}
}

func (p *Provider[K, R, V]) runStage(ctx context.Context, req EnrichRequest[K, V]) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: stage %d: %v", ErrEnrichmentPanic, req.Stage, r)
		}
	}()

	return p.adapter.Enrich(ctx, req)
}

// Terminate stops the provider. Running enrichment is told to give up and
// waited for until ctx is done, queued enrichment drops its reference when it
// is eventually picked up, and the registry releases its own. Handles held by
// consumers stay valid until released.
func (p *Provider[K, R, V]) Terminate(ctx context.Context) error {
	if !p.terminating.CompareAndSwap(false, true) {
		return nil
	}

	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	var waitErr error
	select {
	case <-p.running.drained():
	case <-ctx.Done():
		waitErr = fmt.Errorf("%s: terminate: %w", p.adapter.Name(), ctx.Err())
	}

	p.discardCompleted()

	var refs []*object.Ref[Item[K, V]]
	p.lock.Lock()
	p.table.Range(func(e *entry[K, V]) bool {
		refs = append(refs, e.ref)
		return true
	})
	for _, ref := range refs {
		ref.Value().removed.Store(true)
	}
	p.table.Clear()
	p.lock.Unlock()

	for _, ref := range refs {
		ref.Dereference()
	}

	metrics.ProviderItems.WithLabelValues(p.adapter.Name()).Set(0)
	p.logger.Info("Provider terminated", zap.Int("released", len(refs)))

	return waitErr
}

// Terminating reports whether Terminate has been called.
func (p *Provider[K, R, V]) Terminating() bool {
	return p.terminating.Load()
}

// Run calls Update immediately and then every cfg.Interval until ctx is done.
// Cycle errors are logged and do not stop the loop.
func (p *Provider[K, R, V]) Run(ctx context.Context) error {
	interval := p.cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := p.Update(ctx); err != nil {
			if errors.Is(err, ErrTerminated) {
				return nil
			}
			p.logger.Warn("Update cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Stats summarises the provider state.
type Stats struct {
	Name      string    `json:"name"`
	Cycles    uint64    `json:"cycles"`
	Items     int       `json:"items"`
	LiveItems int64     `json:"live_items"`
	LastRun   time.Time `json:"last_run"`
	LastError string    `json:"last_error,omitempty"`
}

// Stats returns the current provider counters.
func (p *Provider[K, R, V]) Stats() Stats {
	s := Stats{
		Name:      p.adapter.Name(),
		Cycles:    p.cycles.Load(),
		Items:     p.Count(),
		LiveItems: p.typ.Live(),
	}
	if ns := p.lastRun.Load(); ns != 0 {
		s.LastRun = time.Unix(0, ns)
	}
	if msg := p.lastErr.Load(); msg != nil {
		s.LastError = *msg
	}
	return s
}
