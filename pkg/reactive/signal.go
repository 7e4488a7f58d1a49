package reactive

import "reflect"

// Signal is a reactive value container. Reading it while a memo or effect
// is computing subscribes that memo or effect to later changes.
type Signal[T any] struct {
	src   source
	value T
	equal func(a, b T) bool
}

// NewSignal creates a signal owned by o.
func NewSignal[T any](o *Owner, initial T) *Signal[T] {
	return &Signal[T]{src: newSource(o), value: initial}
}

// Get returns the value and records a dependency for the current listener.
func (s *Signal[T]) Get() T {
	s.src.read()
	return s.value
}

// Peek returns the value without recording a dependency.
func (s *Signal[T]) Peek() T {
	return s.value
}

// Set stores value and notifies subscribers when it differs from the
// current value.
func (s *Signal[T]) Set(value T) {
	if s.equals(s.value, value) {
		return
	}
	s.value = value
	s.src.notify()
}

// Update replaces the value with fn(current).
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.value))
}

// WithEquals configures the equality used by Set. The default is
// reflect.DeepEqual.
func (s *Signal[T]) WithEquals(fn func(a, b T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the signal's identifier within its owner.
func (s *Signal[T]) ID() uint64 {
	return s.src.id
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return reflect.DeepEqual(a, b)
}
