package object

import (
	"errors"
	"sync/atomic"
)

// ErrOutOfMemory is returned when a type has reached its object limit.
var ErrOutOfMemory = errors.New("object: allocation limit reached")

// Type describes a family of objects sharing a destructor.
type Type struct {
	name       string
	destructor func(value any)
	limit      atomic.Int64
	live       atomic.Int64
	total      atomic.Uint64
}

// NewType creates a type. The destructor receives a pointer to the object's
// value and may be nil.
func NewType(name string, destructor func(value any)) *Type {
	return &Type{name: name, destructor: destructor}
}

// Name returns the type name.
func (t *Type) Name() string {
	return t.name
}

// SetLimit caps the number of live objects. Zero or less disables the cap.
func (t *Type) SetLimit(limit int64) {
	t.limit.Store(limit)
}

// Live returns the number of objects that have not been destroyed yet.
func (t *Type) Live() int64 {
	return t.live.Load()
}

// Total returns the number of objects ever created with this type.
func (t *Type) Total() uint64 {
	return t.total.Load()
}

func (t *Type) reserve() bool {
	limit := t.limit.Load()
	if limit <= 0 {
		t.live.Add(1)
		return true
	}
	for {
		cur := t.live.Load()
		if cur >= limit {
			return false
		}
		if t.live.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// Ref is a reference-counted handle to a value of type T.
type Ref[T any] struct {
	typ   *Type
	refs  atomic.Int32
	value T
}

// New creates an object holding value with a reference count of one.
func New[T any](typ *Type, value T) (*Ref[T], error) {
	if !typ.reserve() {
		return nil, ErrOutOfMemory
	}
	typ.total.Add(1)

	r := &Ref[T]{typ: typ, value: value}
	r.refs.Store(1)
	return r, nil
}

// Type returns the object's type.
func (r *Ref[T]) Type() *Type {
	return r.typ
}

// Value returns a pointer to the object's value. It is valid as long as the
// caller holds a reference.
func (r *Ref[T]) Value() *T {
	return &r.value
}

// Count returns the current reference count.
func (r *Ref[T]) Count() int32 {
	return r.refs.Load()
}

// Reference takes an additional reference and returns the handle for chaining.
func (r *Ref[T]) Reference() *Ref[T] {
	if r.refs.Add(1) <= 1 {
		panic("object: reference to destroyed " + r.typ.name)
	}
	return r
}

// Dereference releases one reference. It reports whether the object was
// destroyed by this call.
func (r *Ref[T]) Dereference() bool {
	n := r.refs.Add(-1)
	switch {
	case n > 0:
		return false
	case n < 0:
		panic("object: too many dereferences of " + r.typ.name)
	}

	if r.typ.destructor != nil {
		r.typ.destructor(&r.value)
	}
	var zero T
	r.value = zero
	r.typ.live.Add(-1)
	return true
}
