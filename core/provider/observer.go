package provider

import (
	"context"
	"time"

	"system-mirror/core/metrics"
	"system-mirror/core/object"

	"github.com/gammazero/channelqueue"
)

// EventKind is the kind of a provider notification.
type EventKind int

const (
	Added EventKind = iota + 1
	Modified
	Removed
	Updated
)

func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// Event is a notification raised on the update goroutine. Ref is nil for
// Updated. The registry keeps Ref alive for the duration of the callback;
// take a reference to keep it longer.
type Event[K comparable, V any] struct {
	Kind  EventKind
	Ref   *object.Ref[Item[K, V]]
	Cycle uint64
}

// Observer receives provider notifications in cycle order.
type Observer[K comparable, V any] interface {
	OnAdded(ref *object.Ref[Item[K, V]])
	OnModified(ref *object.Ref[Item[K, V]])
	OnRemoved(ref *object.Ref[Item[K, V]])
	OnUpdated(cycle uint64)
}

// Subscription detaches an observer when closed.
type Subscription struct {
	close func()
}

// Close stops delivery. It may be called from inside a callback.
func (s *Subscription) Close() {
	s.close()
}

func (p *Provider[K, R, V]) publish(ev Event[K, V]) {
	metrics.ProviderEvents.WithLabelValues(p.adapter.Name(), ev.Kind.String()).Inc()
	p.bus.Invoke(ev)
}

// Subscribe attaches obs.
func (p *Provider[K, R, V]) Subscribe(obs Observer[K, V]) *Subscription {
	reg := p.bus.Register(dispatch[K, V], obs)
	return &Subscription{close: func() { p.bus.Unregister(reg) }}
}

// Listen attaches a plain callback receiving every event.
func (p *Provider[K, R, V]) Listen(fn func(ev Event[K, V])) *Subscription {
	reg := p.bus.Register(func(ev Event[K, V], _ any) { fn(ev) }, nil)
	return &Subscription{close: func() { p.bus.Unregister(reg) }}
}

func dispatch[K comparable, V any](ev Event[K, V], ctx any) {
	obs := ctx.(Observer[K, V])
	switch ev.Kind {
	case Added:
		obs.OnAdded(ev.Ref)
	case Modified:
		obs.OnModified(ev.Ref)
	case Removed:
		obs.OnRemoved(ev.Ref)
	case Updated:
		obs.OnUpdated(ev.Cycle)
	}
}

// Change is a detached copy of an event, safe to hand to other goroutines.
// RemovedAt is set for Removed changes only.
type Change[K comparable, V any] struct {
	Kind      EventKind
	Key       K
	Value     V
	Cycle     uint64
	AddedAt   time.Time
	RemovedAt time.Time
}

// Changes streams every notification as a Change on an unbounded channel so
// a slow reader never stalls the update loop. The channel is closed after ctx
// is done and the remaining changes have been read.
func (p *Provider[K, R, V]) Changes(ctx context.Context) <-chan Change[K, V] {
	cq := channelqueue.New[Change[K, V]](-1)
	in := cq.In()

	reg := p.bus.Register(func(ev Event[K, V], _ any) {
		c := Change[K, V]{Kind: ev.Kind, Cycle: ev.Cycle}
		if ev.Ref != nil {
			item := ev.Ref.Value()
			c.Key = item.key
			c.Value = item.value
			c.AddedAt = item.addedAt
			c.RemovedAt = item.removedAt
		}
		in <- c
	}, nil)

	go func() {
		<-ctx.Done()
		p.bus.UnregisterAndWait(reg)
		close(in)
	}()

	return cq.Out()
}
