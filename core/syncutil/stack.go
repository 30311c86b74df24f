package syncutil

import "sync/atomic"

type node[T any] struct {
	value T
	next  *node[T]
}

// Stack is a lock-free LIFO. The zero value is empty and ready to use.
type Stack[T any] struct {
	head atomic.Pointer[node[T]]
}

// Push adds value to the top of the stack.
func (s *Stack[T]) Push(value T) {
	n := &node[T]{value: value}
	for {
		old := s.head.Load()
		n.next = old
		if s.head.CompareAndSwap(old, n) {
			return
		}
	}
}

// Pop removes and returns the top entry.
func (s *Stack[T]) Pop() (T, bool) {
	for {
		old := s.head.Load()
		if old == nil {
			var zero T
			return zero, false
		}
		if s.head.CompareAndSwap(old, old.next) {
			return old.value, true
		}
	}
}

// Flush detaches every entry at once and returns them in push order.
func (s *Stack[T]) Flush() []T {
	n := s.head.Swap(nil)
	if n == nil {
		return nil
	}

	var values []T
	for ; n != nil; n = n.next {
		values = append(values, n.value)
	}
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
	return values
}

// Empty reports whether the stack has no entries.
func (s *Stack[T]) Empty() bool {
	return s.head.Load() == nil
}
